package main

import (
	"fmt"
	"os"

	"github.com/kevinwang15/nodeedit"
	"github.com/scott-cotton/cli"
)

func patch(cfg *PatchConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Patch.Parse(cc, args)
	if err != nil {
		cfg.Patch.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	path, file, rest, err := pathAndFile(args)
	if err != nil {
		return err
	}
	if len(rest) != 1 {
		return fmt.Errorf("%w: patch requires one patch file", cli.ErrUsage)
	}
	patchJSON, err := os.ReadFile(rest[0])
	if err != nil {
		return fmt.Errorf("error reading patch %s: %w", rest[0], err)
	}
	repo := openRepository(file)
	text, err := repo.Read()
	if err != nil {
		return fmt.Errorf("error reading %s: %w", file, err)
	}
	out, err := nodeedit.ApplyJSONPatchAtPathBytes([]byte(text), patchJSON, path)
	if err != nil {
		return fmt.Errorf("error patching %s at %s: %w", file, path, err)
	}
	if err := repo.Write(string(out)); err != nil {
		return err
	}
	return nil
}

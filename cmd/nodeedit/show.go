package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kevinwang15/nodeedit"
	"github.com/scott-cotton/cli"
)

func show(cfg *ShowConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Show.Parse(cc, args)
	if err != nil {
		cfg.Show.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	path, file, _, err := pathAndFile(args)
	if err != nil {
		return err
	}
	node, _, err := loadNode(openRepository(file), path)
	if err != nil {
		return fmt.Errorf("error reading %s: %w", file, err)
	}
	if cfg.Rows {
		d, err := json.MarshalIndent(node, "", nodeedit.DefaultIndent)
		if err != nil {
			return err
		}
		fmt.Fprintln(cc.Out, string(d))
		return nil
	}
	p := cfg.painter(cc.Out)
	fmt.Fprintln(cc.Out, p.label.Sprint("Content"))
	fmt.Fprintln(cc.Out, p.value.Sprint(nodeedit.DeriveDisplay(node.Text)))
	fmt.Fprintln(cc.Out, p.label.Sprint("JSON Path"))
	fmt.Fprintln(cc.Out, p.path.Sprint(node.Path.String()))
	return nil
}

func get(cfg *GetConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Get.Parse(cc, args)
	if err != nil {
		cfg.Get.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	path, file, _, err := pathAndFile(args)
	if err != nil {
		return err
	}
	settings, err := cfg.settings()
	if err != nil {
		return fmt.Errorf("%w: %w", cli.ErrUsage, err)
	}
	_, v, err := loadNode(openRepository(file), path)
	if err != nil {
		return fmt.Errorf("error reading %s: %w", file, err)
	}
	out, err := nodeedit.Encode(v, strings.Repeat(" ", settings.Indent))
	if err != nil {
		return err
	}
	fmt.Fprintln(cc.Out, out)
	return nil
}

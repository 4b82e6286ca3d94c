package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kevinwang15/nodeedit"
	"github.com/scott-cotton/cli"
)

func set(cfg *SetConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Set.Parse(cc, args)
	if err != nil {
		cfg.Set.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	path, file, assignments, err := pathAndFile(args)
	if err != nil {
		return err
	}
	if len(assignments) == 0 {
		return fmt.Errorf("%w: set requires at least one key=value", cli.ErrUsage)
	}
	settings, err := cfg.settings()
	if err != nil {
		return fmt.Errorf("%w: %w", cli.ErrUsage, err)
	}

	repo := openRepository(file)
	var node nodeedit.Node
	if cfg.NodeFile != "" {
		node, err = readNodeFile(cfg.NodeFile)
		if err != nil {
			return err
		}
		// the path argument wins over any path in the node file
		node.Path = path
	} else {
		node, _, err = loadNode(repo, path)
		if err != nil {
			return fmt.Errorf("error reading %s: %w", file, err)
		}
	}

	opts := []nodeedit.Option{
		nodeedit.WithConfig(settings),
		nodeedit.WithLogger(cfg.logger(settings)),
	}
	if cfg.Print {
		opts = append(opts, nodeedit.WithMirror(nodeedit.WriterMirror{W: cc.Out}))
	}
	sess := nodeedit.NewSession(repo, opts...)
	sess.Select(node)
	if err := sess.Edit(); err != nil {
		return err
	}

	p := cfg.painter(os.Stderr)
	for _, a := range assignments {
		key, raw, ok := strings.Cut(a, "=")
		if !ok {
			return fmt.Errorf("%w: %q is not key=value", cli.ErrUsage, a)
		}
		if err := sess.SetFieldText(key, raw); err != nil {
			return rejected(p, os.Stderr, err)
		}
	}
	res, err := sess.Save()
	if err != nil {
		return rejected(p, os.Stderr, err)
	}
	if cfg.Diff && res.MergePatch != nil {
		fmt.Fprintln(cc.Out, string(res.MergePatch))
	}
	return nil
}

// rejected shows the blocking notice for a failed save.
func rejected(p *painter, w io.Writer, err error) error {
	fmt.Fprintln(w, p.notice.Sprint(nodeedit.Notice(err)))
	fmt.Fprintln(w, err)
	return cli.ExitCodeErr(1)
}

func readNodeFile(file string) (nodeedit.Node, error) {
	var node nodeedit.Node
	d, err := os.ReadFile(file)
	if err != nil {
		return node, fmt.Errorf("error reading node %s: %w", file, err)
	}
	if err := json.Unmarshal(d, &node); err != nil {
		return node, fmt.Errorf("error decoding node %s: %w", file, err)
	}
	return node, nil
}

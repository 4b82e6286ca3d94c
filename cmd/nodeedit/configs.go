package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/kevinwang15/nodeedit"
	"github.com/mattn/go-isatty"
	"github.com/scott-cotton/cli"
)

type MainConfig struct {
	Color   bool   `cli:"name=color desc='color output even when not a terminal'"`
	NoColor bool   `cli:"name=nocolor desc='never color output'"`
	Indent  int    `cli:"name=indent desc='spaces of indentation when writing documents'"`
	Numbers string `cli:"name=numbers desc='unparsable number input: strict or null'"`
	Verbose bool   `cli:"name=v desc='log debug messages'"`

	Main *cli.Command
}

// settings merges NODEEDIT_* environment settings with command line options.
func (cfg *MainConfig) settings() (nodeedit.Config, error) {
	c, err := nodeedit.ConfigFromEnv()
	if err != nil {
		return c, err
	}
	if cfg.Indent > 0 {
		c.Indent = cfg.Indent
	}
	if cfg.Numbers != "" {
		c.NumberPolicy = nodeedit.NumberPolicy(strings.ToLower(cfg.Numbers))
	}
	if cfg.Verbose {
		c.LogLevel = slog.LevelDebug
	}
	return c, c.Validate()
}

func (cfg *MainConfig) logger(c nodeedit.Config) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: c.LogLevel}))
}

func (cfg *MainConfig) painter(w io.Writer) *painter {
	on := cfg.Color
	if !on && !cfg.NoColor {
		if f, ok := w.(*os.File); ok {
			on = isatty.IsTerminal(f.Fd())
		}
	}
	return newPainter(on)
}

type painter struct {
	label, path, value, notice *color.Color
}

func newPainter(on bool) *painter {
	p := &painter{
		label:  color.New(color.Bold),
		path:   color.New(color.FgCyan),
		value:  color.New(color.FgGreen),
		notice: color.New(color.FgRed, color.Bold),
	}
	for _, c := range []*color.Color{p.label, p.path, p.value, p.notice} {
		if on {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

type ShowConfig struct {
	*MainConfig
	Rows bool `cli:"name=rows desc='print the node as JSON rows'"`

	Show *cli.Command
}

type GetConfig struct {
	*MainConfig

	Get *cli.Command
}

type SetConfig struct {
	*MainConfig
	NodeFile string `cli:"name=node desc='read the node rows from this JSON file'"`
	Print    bool   `cli:"name=print desc='print the saved document'"`
	Diff     bool   `cli:"name=diff desc='print the merge patch of the change'"`

	Set *cli.Command
}

type PatchConfig struct {
	*MainConfig

	Patch *cli.Command
}

type EditConfig struct {
	*MainConfig

	Edit *cli.Command
}

// openRepository picks the YAML repository for .yaml and .yml files.
func openRepository(file string) nodeedit.DocumentRepository {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".yaml", ".yml":
		return nodeedit.NewYAMLFileRepository(file)
	}
	return nodeedit.NewFileRepository(file)
}

// pathAndFile reads the leading <path> <file> arguments.
func pathAndFile(args []string) (nodeedit.Path, string, []string, error) {
	if len(args) < 2 {
		return nil, "", nil, fmt.Errorf("%w: expected <path> <file>", cli.ErrUsage)
	}
	p, err := nodeedit.ParsePath(args[0])
	if err != nil {
		return nil, "", nil, fmt.Errorf("%w: %w", cli.ErrUsage, err)
	}
	return p, args[1], args[2:], nil
}

// loadNode derives the node at path from the document in repo.
func loadNode(repo nodeedit.DocumentRepository, path nodeedit.Path) (nodeedit.Node, any, error) {
	text, err := repo.Read()
	if err != nil {
		return nodeedit.Node{}, nil, err
	}
	var root any
	if text != "" {
		root, err = nodeedit.Decode([]byte(text))
		if err != nil {
			return nodeedit.Node{}, nil, &nodeedit.ParseError{Err: err}
		}
	}
	v, ok := nodeedit.GetAtPath(root, path)
	if !ok {
		return nodeedit.Node{}, nil, fmt.Errorf("no value at %s", path)
	}
	return nodeedit.Node{Path: path, Text: nodeedit.RowsFromValue(v)}, v, nil
}

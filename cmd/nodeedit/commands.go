package main

import (
	"github.com/scott-cotton/cli"
)

func MainCommand() *cli.Command {
	cfg := &MainConfig{}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Main, "nodeedit").
		WithSynopsis("nodeedit [opts] command [opts]").
		WithDescription("nodeedit inspects and edits one node of a JSON or YAML document by path.").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return nodeeditMain(cfg, cc, args)
		}).
		WithSubs(
			ShowCommand(cfg),
			GetCommand(cfg),
			SetCommand(cfg),
			PatchCommand(cfg),
			EditCommand(cfg))
}

func ShowCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &ShowConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	cmd := cli.NewCommand("show").
		WithAliases("s").
		WithOpts(opts...).
		WithSynopsis("show <path> <file>").
		WithDescription("show the content and path of the node at path").
		WithRun(func(cc *cli.Context, args []string) error {
			return show(cfg, cc, args)
		})
	cfg.Show = cmd
	return cmd
}

func GetCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &GetConfig{MainConfig: mainCfg}
	cmd := cli.NewCommand("get").
		WithAliases("g").
		WithSynopsis("get <path> <file>").
		WithDescription("print the JSON value at path").
		WithRun(func(cc *cli.Context, args []string) error {
			return get(cfg, cc, args)
		})
	cfg.Get = cmd
	return cmd
}

func SetCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &SetConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	cmd := cli.NewCommand("set").
		WithOpts(opts...).
		WithSynopsis("set [-node nodefile] [-print] [-diff] <path> <file> key=value...").
		WithDescription("edit fields of the node at path and save them into file (use __root for a scalar node)").
		WithRun(func(cc *cli.Context, args []string) error {
			return set(cfg, cc, args)
		})
	cfg.Set = cmd
	return cmd
}

func PatchCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &PatchConfig{MainConfig: mainCfg}
	cmd := cli.NewCommand("patch").
		WithAliases("p").
		WithSynopsis("patch <path> <file> <patchfile>").
		WithDescription("apply an RFC 6902 patch, relative to the node at path, to file").
		WithRun(func(cc *cli.Context, args []string) error {
			return patch(cfg, cc, args)
		})
	cfg.Patch = cmd
	return cmd
}

func EditCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &EditConfig{MainConfig: mainCfg}
	cmd := cli.NewCommand("edit").
		WithAliases("e").
		WithSynopsis("edit <path> <file>").
		WithDescription("edit the node at path interactively").
		WithRun(func(cc *cli.Context, args []string) error {
			return edit(cfg, cc, args)
		})
	cfg.Edit = cmd
	return cmd
}

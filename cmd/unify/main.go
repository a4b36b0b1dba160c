package main

import (
	"github.com/alecthomas/kong"

	"github.com/fwdslsh/unify-sub011/cmd/unify/commands"
)

var version = "dev"

func main() {
	var cli commands.CLI
	ctx := kong.Parse(&cli,
		kong.Name("unify"),
		kong.Description("Compose static sites from plain HTML pages, layouts and fragments."),
		kong.UsageOnError(),
		kong.Vars{"version": version},
	)
	err := ctx.Run(&commands.Global{}, &cli)
	ctx.FatalIfErrorf(err)
}

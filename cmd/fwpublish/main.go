package main

import (
	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/fwpublish/cmd/fwpublish/commands"
	ferrors "git.home.luguber.info/inful/fwpublish/internal/foundation/errors"
	"git.home.luguber.info/inful/fwpublish/internal/version"
)

func main() {
	var cli commands.CLI
	global := &commands.Global{}
	ctx := kong.Parse(&cli,
		kong.Name("fwpublish"),
		kong.Description("Publish the latest firmware image to a fixed location after each build."),
		kong.Vars{"version": version.String()},
		kong.Bind(global),
		kong.UsageOnError(),
	)
	if err := ctx.Run(&cli); err != nil {
		ferrors.NewCLIErrorAdapter(cli.Verbose, global.Logger).HandleError(err)
	}
}

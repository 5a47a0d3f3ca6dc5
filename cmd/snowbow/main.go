package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/snowbow/cmd/snowbow/commands"
	"git.home.luguber.info/inful/snowbow/internal/foundation/errors"
)

func main() {
	if _, err := commands.PreloadEnv(os.Args[1:]); err != nil {
		errors.NewCLIErrorAdapter(false, nil).HandleError(err)
	}

	cli := &commands.CLI{}
	parser := kong.Must(cli,
		kong.Name("snowbow"),
		kong.Description("Build and serve multi-language static sites from Markdown."),
		kong.UsageOnError(),
	)
	kctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	if err := kctx.Run(&commands.Global{Logger: slog.Default()}, cli); err != nil {
		errors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
	}
}

package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"
	"github.com/gartstein/companies/cmd/companyctl/internal/commands"
	"go.uber.org/zap"
)

var (
	version = "dev"
	cli     struct {
		Server  string           `help:"Company API base URL." default:"http://localhost:8080" env:"COMPANIES_SERVER"`
		Output  string           `short:"o" help:"Output format (table, json, yaml)." enum:"table,json,yaml" default:"table"`
		Debug   bool             `help:"Enable debug mode."`
		Version kong.VersionFlag `help:"Print the version and exit."`

		List    commands.ListCmd    `cmd:"" help:"List companies"`
		Get     commands.GetCmd     `cmd:"" help:"Show a company"`
		Create  commands.CreateCmd  `cmd:"" help:"Create a company"`
		Update  commands.UpdateCmd  `cmd:"" help:"Update a company"`
		Delete  commands.DeleteCmd  `cmd:"" help:"Delete a company"`
		Options commands.OptionsCmd `cmd:"" help:"Show suggested industries, locations, sizes and sorts"`
	}
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := kong.Parse(&cli,
		kong.Name("companyctl"),
		kong.Description("Command line client for the company directory."),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))

	logger := newLogger(cli.Debug)
	defer func() { _ = logger.Sync() }()

	err := cmd.Run(&commands.Globals{
		Server:  cli.Server,
		Output:  cli.Output,
		Debug:   cli.Debug,
		Version: version,
		Logger:  logger,
		Out:     os.Stdout,
	})
	cmd.FatalIfErrorf(err)
}

// newLogger returns a development logger on stderr in debug mode and a
// no-op logger otherwise, so command output stays clean.
func newLogger(debug bool) *zap.Logger {
	if !debug {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

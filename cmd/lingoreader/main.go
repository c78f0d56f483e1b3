package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/japaniel/lingoreader/internal/app"
	"github.com/japaniel/lingoreader/internal/config"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newCLI(os.Stdin, os.Stdout, os.Stderr).RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// env carries the application into command actions once Before has run.
type env struct {
	app *app.App
}

func newCLI(stdin io.Reader, stdout, stderr io.Writer) *cli.App {
	e := &env{}
	return &cli.App{
		Name:      "lingoreader",
		Usage:     "read foreign-language texts and track the words you learn",
		Reader:    stdin,
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to the YAML configuration file",
			},
			&cli.StringFlag{
				Name:  "db",
				Usage: "path to the SQLite database, overriding the configuration",
			},
		},
		Before: e.setup,
		After:  e.teardown,
		Commands: []*cli.Command{
			e.languageCommand(),
			e.textCommand(),
			e.pageCommand(),
			e.wordCommand(),
			e.phraseCommand(),
			e.termsCommand(),
			e.pluginsCommand(),
		},
	}
}

func (e *env) setup(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	if p := c.String("db"); p != "" {
		cfg.Database.Path = p
	}
	logger := app.NewLogger(c.App.ErrWriter, cfg.Log)

	a, err := app.New(c.Context, cfg, logger)
	if err != nil {
		return err
	}
	e.app = a
	return nil
}

func (e *env) teardown(c *cli.Context) error {
	if e.app == nil {
		return nil
	}
	err := e.app.Close()
	e.app = nil
	return err
}

package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/japaniel/lingoreader/pkg/termlist"
	"github.com/japaniel/lingoreader/pkg/vocab"
)

func (e *env) termsCommand() *cli.Command {
	return &cli.Command{
		Name:  "terms",
		Usage: "bulk vocabulary",
		Subcommands: []*cli.Command{
			{
				Name:      "import",
				Usage:     "load a JSON term list",
				ArgsUsage: "FILE",
				Flags: []cli.Flag{
					languageFlag,
					&cli.StringFlag{Name: "status", Aliases: []string{"s"}, Value: "1", Usage: "status for terms that carry none"},
				},
				Action: e.importTerms,
			},
		},
	}
}

func (e *env) importTerms(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("usage: terms import --language NAME FILE")
	}
	lang, err := e.lookupLanguage(c)
	if err != nil {
		return err
	}
	def, err := vocab.ParseStatus(c.String("status"))
	if err != nil {
		return err
	}
	terms, err := termlist.Load(c.Args().First())
	if err != nil {
		return err
	}
	profile, err := e.app.Reader.Profile(c.Context, lang.ID)
	if err != nil {
		return err
	}
	res, err := e.app.Terms.Import(c.Context, lang.ID, profile, terms, def)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Imported %d terms (%d blank, %d repeated)\n", res.Imported, res.Skipped, res.Duplicate)
	return nil
}

func (e *env) pluginsCommand() *cli.Command {
	return &cli.Command{
		Name:  "plugins",
		Usage: "inspect text processors",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list loaded processors in pipeline order",
				Action: func(c *cli.Context) error {
					for i, p := range e.app.Plugins.Processors() {
						fmt.Fprintf(c.App.Writer, "%d. %-22s %s\n", i+1, p.ID(), strings.Join(p.SupportedLanguages(), ", "))
					}
					return nil
				},
			},
		},
	}
}

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/japaniel/lingoreader/pkg/db"
	"github.com/japaniel/lingoreader/pkg/language"
)

var definitionFlags = []cli.Flag{
	&cli.StringFlag{Name: "preset", Usage: "start from a built-in definition (see 'language presets')"},
	&cli.StringFlag{Name: "file", Usage: "read the definition from a YAML file"},
	&cli.StringFlag{Name: "name", Usage: "language name"},
	&cli.StringFlag{Name: "alphabet", Usage: "character class of word characters"},
	&cli.StringFlag{Name: "delimiters", Usage: "character class of sentence delimiters"},
	&cli.StringFlag{Name: "whitespace", Usage: "character class of whitespace"},
	&cli.StringFlag{Name: "intraword", Usage: "character class of punctuation allowed inside words"},
	&cli.BoolFlag{Name: "show-spaces", Value: true, Usage: "render whitespace between words"},
}

func (e *env) languageCommand() *cli.Command {
	return &cli.Command{
		Name:  "language",
		Usage: "manage reading languages",
		Subcommands: []*cli.Command{
			{
				Name:   "add",
				Usage:  "add a language",
				Flags:  definitionFlags,
				Action: e.addLanguage,
			},
			{
				Name:      "update",
				Usage:     "change a language definition; later page loads use it",
				ArgsUsage: "NAME",
				Flags:     definitionFlags,
				Action:    e.updateLanguage,
			},
			{
				Name:   "list",
				Usage:  "list languages",
				Action: e.listLanguages,
			},
			{
				Name:  "presets",
				Usage: "list built-in definitions",
				Action: func(c *cli.Context) error {
					for _, name := range language.Presets() {
						fmt.Fprintln(c.App.Writer, name)
					}
					return nil
				},
			},
		},
	}
}

// definition builds a Definition from base, then a preset or file, then
// individual flags, each layer overriding the last.
func definition(c *cli.Context, base language.Definition) (language.Definition, error) {
	def := base
	if name := c.String("preset"); name != "" {
		p, ok := language.Preset(name)
		if !ok {
			return def, fmt.Errorf("unknown preset %q (known: %s)", name, strings.Join(language.Presets(), ", "))
		}
		def = p
	}
	if path := c.String("file"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return def, err
		}
		if err := yaml.Unmarshal(data, &def); err != nil {
			return def, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	set := func(flag string, dst *string) {
		if c.IsSet(flag) {
			*dst = c.String(flag)
		}
	}
	set("name", &def.Name)
	set("alphabet", &def.Alphabet)
	set("delimiters", &def.SentenceDelimiters)
	set("whitespace", &def.Whitespace)
	set("intraword", &def.IntrawordPunctuation)
	if c.IsSet("show-spaces") {
		def.ShowSpaces = language.Bool(c.Bool("show-spaces"))
	}
	return def, nil
}

func (e *env) addLanguage(c *cli.Context) error {
	def, err := definition(c, language.Definition{})
	if err != nil {
		return err
	}
	l, err := e.app.Reader.AddLanguage(c.Context, def)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Added language %q with id %d\n", l.Definition.Name, l.ID)
	return nil
}

func (e *env) updateLanguage(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("usage: language update NAME [flags]")
	}
	l, err := e.app.Reader.LanguageByName(c.Context, c.Args().First())
	if err != nil {
		return err
	}
	def, err := definition(c, l.Definition)
	if err != nil {
		return err
	}
	if err := e.app.Reader.UpdateLanguage(c.Context, l.ID, def); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Updated language %q\n", def.Name)
	return nil
}

func (e *env) listLanguages(c *cli.Context) error {
	langs, err := e.app.Store.ListLanguages(c.Context)
	if err != nil {
		return err
	}
	if len(langs) == 0 {
		fmt.Fprintln(c.App.Writer, "No languages yet. Add one with 'language add --preset English'.")
		return nil
	}
	fmt.Fprintf(c.App.Writer, "%-4s %-16s %-6s\n", "ID", "NAME", "SPACES")
	for _, l := range langs {
		fmt.Fprintf(c.App.Writer, "%-4d %-16s %-6t\n", l.ID, l.Definition.Name, showsSpaces(l))
	}
	return nil
}

func showsSpaces(l db.Language) bool {
	return l.Definition.ShowSpaces == nil || *l.Definition.ShowSpaces
}

// lookupLanguage resolves the --language flag.
func (e *env) lookupLanguage(c *cli.Context) (db.Language, error) {
	name := c.String("language")
	if name == "" {
		return db.Language{}, fmt.Errorf("--language is required")
	}
	return e.app.Reader.LanguageByName(c.Context, name)
}

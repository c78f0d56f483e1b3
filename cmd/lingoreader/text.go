package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/japaniel/lingoreader/pkg/db"
	"github.com/japaniel/lingoreader/pkg/reader"
)

var languageFlag = &cli.StringFlag{Name: "language", Aliases: []string{"l"}, Usage: "language name"}

func (e *env) textCommand() *cli.Command {
	return &cli.Command{
		Name:  "text",
		Usage: "import and manage texts",
		Subcommands: []*cli.Command{
			{
				Name:      "import",
				Usage:     "import a text from a file, stdin (-) or --url",
				ArgsUsage: "[FILE|-]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "language", Aliases: []string{"l"}, Usage: "language name; detected from the text when omitted"},
					&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "title; defaults to the file name or article title"},
					&cli.StringFlag{Name: "url", Usage: "fetch the readable part of a web page"},
					&cli.IntFlag{Name: "pages", Usage: "number of pages; 0 picks one from the sentence count"},
				},
				Action: e.importText,
			},
			{
				Name:      "import-many",
				Usage:     "import several files in parallel, titled by file name",
				ArgsUsage: "FILE...",
				Flags:     []cli.Flag{languageFlag},
				Action:    e.importMany,
			},
			{
				Name:      "edit",
				Usage:     "replace a text's content and repaginate it",
				ArgsUsage: "ID FILE|-",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "new title"},
					&cli.IntFlag{Name: "pages", Usage: "number of pages; 0 picks one from the sentence count"},
				},
				Action: e.editText,
			},
			{
				Name:      "delete",
				Usage:     "delete a text and its pages",
				ArgsUsage: "ID",
				Action:    e.deleteText,
			},
			{
				Name:   "list",
				Usage:  "list texts, newest first",
				Flags:  []cli.Flag{languageFlag},
				Action: e.listTexts,
			},
		},
	}
}

func readSource(c *cli.Context, arg string) (string, error) {
	var (
		data []byte
		err  error
	)
	if arg == "-" {
		data, err = io.ReadAll(c.App.Reader)
	} else {
		data, err = os.ReadFile(arg)
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func titleFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func (e *env) importText(c *cli.Context) error {
	in := reader.ImportInput{Title: c.String("title"), Pages: c.Int("pages")}

	switch {
	case c.String("url") != "":
		article, err := e.app.FetchArticle(c.Context, c.String("url"))
		if err != nil {
			return err
		}
		in.Text, in.SourceURL = article.Text, article.URL
		if in.Title == "" {
			in.Title = article.Title
		}
	case c.NArg() == 1:
		text, err := readSource(c, c.Args().First())
		if err != nil {
			return err
		}
		in.Text = text
		if in.Title == "" && c.Args().First() != "-" {
			in.Title = titleFromPath(c.Args().First())
		}
	default:
		return errors.New("usage: text import [--url URL | FILE | -]")
	}

	var (
		lang db.Language
		err  error
	)
	if c.String("language") != "" {
		lang, err = e.lookupLanguage(c)
	} else {
		lang, err = e.app.DetectLanguage(c.Context, in.Text)
	}
	if err != nil {
		return err
	}
	in.LanguageID = lang.ID

	id, err := e.app.Reader.ImportText(c.Context, in)
	if err != nil {
		return err
	}
	t, err := e.app.Store.GetText(c.Context, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Imported text %d %q (%s, %d pages)\n", t.ID, t.Title, lang.Definition.Name, t.PageCount)
	return nil
}

func (e *env) importMany(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.New("usage: text import-many --language NAME FILE...")
	}
	lang, err := e.lookupLanguage(c)
	if err != nil {
		return err
	}
	docs := make([]reader.ImportInput, 0, c.NArg())
	for _, path := range c.Args().Slice() {
		text, err := readSource(c, path)
		if err != nil {
			return err
		}
		docs = append(docs, reader.ImportInput{LanguageID: lang.ID, Title: titleFromPath(path), Text: text})
	}

	ids, err := e.app.Bulk.ImportAll(c.Context, docs)
	for i, id := range ids {
		fmt.Fprintf(c.App.Writer, "Imported text %d %q\n", id, docs[i].Title)
	}
	return err
}

func (e *env) editText(c *cli.Context) error {
	if c.NArg() != 2 {
		return errors.New("usage: text edit ID FILE|-")
	}
	id, err := parseID(c.Args().Get(0))
	if err != nil {
		return err
	}
	text, err := readSource(c, c.Args().Get(1))
	if err != nil {
		return err
	}
	in := reader.EditInput{Title: c.String("title"), Text: text, Pages: c.Int("pages")}
	if err := e.app.Reader.EditText(c.Context, id, in); err != nil {
		return err
	}
	t, err := e.app.Store.GetText(c.Context, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Updated text %d %q (%d pages)\n", t.ID, t.Title, t.PageCount)
	return nil
}

func (e *env) deleteText(c *cli.Context) error {
	id, err := parseID(c.Args().First())
	if err != nil {
		return err
	}
	if err := e.app.Reader.DeleteText(c.Context, id); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Deleted text %d\n", id)
	return nil
}

func (e *env) listTexts(c *cli.Context) error {
	var languageID int64
	if c.String("language") != "" {
		lang, err := e.lookupLanguage(c)
		if err != nil {
			return err
		}
		languageID = lang.ID
	}
	texts, err := e.app.Store.ListTexts(c.Context, languageID)
	if err != nil {
		return err
	}
	if len(texts) == 0 {
		fmt.Fprintln(c.App.Writer, "No texts found")
		return nil
	}
	fmt.Fprintf(c.App.Writer, "%-6s %-6s %-20s %s\n", "ID", "PAGES", "IMPORTED", "TITLE")
	for _, t := range texts {
		fmt.Fprintf(c.App.Writer, "%-6d %-6d %-20s %s\n", t.ID, t.PageCount, t.CreatedAt.Local().Format("2006-01-02 15:04:05"), t.Title)
	}
	return nil
}

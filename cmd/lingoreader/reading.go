package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/japaniel/lingoreader/pkg/reader"
	"github.com/japaniel/lingoreader/pkg/segment"
	"github.com/japaniel/lingoreader/pkg/vocab"
)

var statusFlag = &cli.StringFlag{
	Name:     "status",
	Aliases:  []string{"s"},
	Usage:    "0-5, new, ignored or known",
	Required: true,
}

func (e *env) pageCommand() *cli.Command {
	return &cli.Command{
		Name:  "page",
		Usage: "read pages",
		Subcommands: []*cli.Command{
			{
				Name:      "show",
				Usage:     "print a page with the status of every word",
				ArgsUsage: "TEXT_ID PAGE",
				Flags:     []cli.Flag{&cli.BoolFlag{Name: "json", Usage: "print the token stream as JSON"}},
				Action:    e.showPage,
			},
			{
				Name:      "known",
				Usage:     "mark every new word on a page as known",
				ArgsUsage: "TEXT_ID PAGE",
				Action:    e.markKnown,
			},
		},
	}
}

func (e *env) wordCommand() *cli.Command {
	return &cli.Command{
		Name:  "word",
		Usage: "record vocabulary",
		Subcommands: []*cli.Command{
			{
				Name:      "set",
				Usage:     "set the status of words or phrases",
				ArgsUsage: "WORD...",
				Flags:     []cli.Flag{languageFlag, statusFlag},
				Action:    e.setWords,
			},
			{
				Name:      "describe",
				Usage:     "store definitions and notes for a word",
				ArgsUsage: "WORD",
				Flags: []cli.Flag{
					languageFlag,
					&cli.StringSliceFlag{Name: "entry", Aliases: []string{"e"}, Usage: "a definition; repeat for several"},
					&cli.StringFlag{Name: "note", Aliases: []string{"n"}, Usage: "free-form note"},
				},
				Action: e.describeWord,
			},
		},
	}
}

func (e *env) phraseCommand() *cli.Command {
	return &cli.Command{
		Name:  "phrase",
		Usage: "group words into phrases",
		Subcommands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "select text starting in token ANCHOR of a page and store it as a phrase",
				ArgsUsage: "TEXT_ID PAGE ANCHOR SELECTION",
				Flags:     []cli.Flag{statusFlag},
				Action:    e.addPhrase,
			},
		},
	}
}

func pageArgs(c *cli.Context) (int64, int, error) {
	if c.NArg() < 2 {
		return 0, 0, errors.New("TEXT_ID and PAGE are required")
	}
	id, err := parseID(c.Args().Get(0))
	if err != nil {
		return 0, 0, err
	}
	n, err := strconv.Atoi(c.Args().Get(1))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid page %q", c.Args().Get(1))
	}
	return id, n, nil
}

func (e *env) showPage(c *cli.Context) error {
	id, n, err := pageArgs(c)
	if err != nil {
		return err
	}
	view, err := e.app.Reader.LoadPage(c.Context, id, n)
	if err != nil {
		return err
	}
	if c.Bool("json") {
		enc := json.NewEncoder(c.App.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	}
	renderPage(c.App.Writer, view)
	return nil
}

// renderPage prints words still being learned as [word:status] and new
// words as [word]. Known and ignored words print plainly.
func renderPage(w io.Writer, view reader.PageView) {
	fmt.Fprintf(w, "%s (page %d of %d)\n\n", view.Title, view.Number, view.PageCount)
	var b strings.Builder
	for _, t := range view.Tokens {
		switch {
		case t.Type == segment.Whitespace && !view.ShowSpaces:
		case t.IsWord() && t.Status != nil:
			switch st := vocab.Status(*t.Status); st {
			case vocab.Known, vocab.Ignored:
				b.WriteString(t.Content)
			case vocab.New:
				fmt.Fprintf(&b, "[%s]", t.Content)
			default:
				fmt.Fprintf(&b, "[%s:%d]", t.Content, int(st))
			}
		default:
			b.WriteString(t.Content)
		}
	}
	fmt.Fprintln(w, strings.TrimRight(b.String(), "\n"))
}

func (e *env) markKnown(c *cli.Context) error {
	id, n, err := pageArgs(c)
	if err != nil {
		return err
	}
	count, err := e.app.Reader.MarkPageKnown(c.Context, id, n)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Marked %d words as known\n", count)
	return nil
}

func (e *env) setWords(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.New("usage: word set --language NAME --status S WORD...")
	}
	lang, err := e.lookupLanguage(c)
	if err != nil {
		return err
	}
	st, err := vocab.ParseStatus(c.String("status"))
	if err != nil {
		return err
	}
	if err := e.app.Reader.SetStatus(c.Context, lang.ID, st, c.Args().Slice()...); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Set %d entries to %s\n", c.NArg(), st)
	return nil
}

func (e *env) describeWord(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("usage: word describe --language NAME [--entry E]... [--note N] WORD")
	}
	lang, err := e.lookupLanguage(c)
	if err != nil {
		return err
	}
	word := c.Args().First()
	if err := e.app.Reader.DescribeWord(c.Context, lang.ID, word, c.StringSlice("entry"), c.String("note")); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Saved details for %q\n", word)
	return nil
}

func (e *env) addPhrase(c *cli.Context) error {
	if c.NArg() != 4 {
		return errors.New("usage: phrase add --status S TEXT_ID PAGE ANCHOR SELECTION")
	}
	id, n, err := pageArgs(c)
	if err != nil {
		return err
	}
	anchor, err := strconv.Atoi(c.Args().Get(2))
	if err != nil {
		return fmt.Errorf("invalid anchor %q", c.Args().Get(2))
	}
	st, err := vocab.ParseStatus(c.String("status"))
	if err != nil {
		return err
	}
	view, err := e.app.Reader.ComposeMultiword(c.Context, id, n, anchor, c.Args().Get(3), st)
	if err != nil {
		return err
	}
	renderPage(c.App.Writer, view)
	return nil
}

package reader

import (
	"context"
	"fmt"
	"strings"

	"github.com/japaniel/lingoreader/pkg/db"
	"github.com/japaniel/lingoreader/pkg/language"
	"github.com/japaniel/lingoreader/pkg/plugin"
	"github.com/japaniel/lingoreader/pkg/segment"
)

// Prepared is a processed and paginated text that has not been stored yet.
type Prepared struct {
	Text  db.Text
	Pages []string
	RunID string
}

// Prepare runs the processors over the input and paginates the result. It
// does not write anything, so several documents can be prepared in parallel
// on the same run.
func (s *Service) Prepare(ctx context.Context, run *plugin.Run, in ImportInput) (Prepared, error) {
	if err := in.Validate(); err != nil {
		return Prepared{}, err
	}
	lang, profile, err := s.languageProfile(ctx, in.LanguageID)
	if err != nil {
		return Prepared{}, err
	}
	pages, err := s.paginate(ctx, run, lang, profile, in.Text, in.Pages)
	if err != nil {
		return Prepared{}, err
	}
	return Prepared{
		Text: db.Text{
			LanguageID: lang.ID,
			Title:      strings.TrimSpace(in.Title),
			SourceURL:  in.SourceURL,
		},
		Pages: pages,
		RunID: run.ID,
	}, nil
}

func (s *Service) paginate(ctx context.Context, run *plugin.Run, lang db.Language, profile *language.Profile, text string, n int) ([]string, error) {
	processed, err := run.Process(ctx, lang.Definition.Name, text)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		n = segment.PageCount(len(segment.SplitUnits(profile, processed)), s.cfg.SentencesPerPage)
	}
	return segment.Paginate(profile, processed, n)
}

// Commit stores a prepared text and its pages in one transaction.
func (s *Service) Commit(ctx context.Context, p Prepared) (int64, error) {
	id, err := s.store.CreateText(ctx, p.Text, p.Pages)
	if err != nil {
		return 0, fmt.Errorf("store text %q: %w", p.Text.Title, err)
	}
	s.log.Info("text imported", "text_id", id, "title", p.Text.Title, "pages", len(p.Pages), "run_id", p.RunID)
	return id, nil
}

// ImportText processes, paginates and stores one text. If any processor
// fails nothing is stored.
func (s *Service) ImportText(ctx context.Context, in ImportInput) (int64, error) {
	p, err := s.Prepare(ctx, s.plugins.NewRun(), in)
	if err != nil {
		return 0, err
	}
	return s.Commit(ctx, p)
}

// EditText replaces a text's content and repaginates it from scratch. The
// page rows and a non-blank new title are written in one transaction; on any
// failure the old pages and title stay as they were.
func (s *Service) EditText(ctx context.Context, textID int64, in EditInput) error {
	if err := in.Validate(); err != nil {
		return err
	}
	text, err := s.store.GetText(ctx, textID)
	if err != nil {
		return err
	}
	lang, profile, err := s.languageProfile(ctx, text.LanguageID)
	if err != nil {
		return err
	}
	run := s.plugins.NewRun()
	pages, err := s.paginate(ctx, run, lang, profile, in.Text, in.Pages)
	if err != nil {
		return err
	}
	if err := s.store.ReviseText(ctx, textID, in.Title, pages); err != nil {
		return fmt.Errorf("repaginate text %d: %w", textID, err)
	}
	s.log.Info("text repaginated", "text_id", textID, "pages", len(pages), "previous_pages", text.PageCount, "run_id", run.ID)
	return nil
}

func (s *Service) DeleteText(ctx context.Context, textID int64) error {
	if err := s.store.DeleteText(ctx, textID); err != nil {
		return err
	}
	s.log.Info("text deleted", "text_id", textID)
	return nil
}

package reader

import (
	"context"
	"fmt"
	"strings"

	"github.com/japaniel/lingoreader/pkg/db"
	"github.com/japaniel/lingoreader/pkg/multiword"
	"github.com/japaniel/lingoreader/pkg/segment"
	"github.com/japaniel/lingoreader/pkg/vocab"
)

// ComposeMultiword turns the reader's selection on a page into a phrase with
// the given status. anchor is the index of the token the selection starts in.
// The phrase is stored and every occurrence on the page is grouped in the
// returned view. A selection that does not cover at least two tokens on one
// line leaves everything unchanged and returns the current view.
func (s *Service) ComposeMultiword(ctx context.Context, textID int64, n, anchor int, selection string, status vocab.Status) (PageView, error) {
	if !status.Valid() {
		return PageView{}, fmt.Errorf("%w: %d", vocab.ErrInvalidStatus, int(status))
	}
	lp, err := s.loadPage(ctx, textID, n)
	if err != nil {
		return PageView{}, err
	}

	run := multiword.Select(lp.profile, lp.view.Tokens, anchor, selection, s.cfg.ComposeWindow)
	if run == nil {
		return lp.view, nil
	}
	ph, ok := multiword.NewPhrase(lp.profile, segment.Join(run), status)
	if !ok {
		return lp.view, nil
	}

	term := db.Term{Content: ph.Content, TokenCount: ph.Tokens}
	if err := s.store.UpsertWordsBatch(ctx, lp.lang.ID, []db.Term{term}, status, s.now()); err != nil {
		return PageView{}, fmt.Errorf("save phrase %q: %w", ph.Content, err)
	}

	phrases := []multiword.Phrase{ph}
	key := vocab.Key(ph.Content)
	for _, other := range lp.phrases {
		if vocab.Key(other.Content) != key {
			phrases = append(phrases, other)
		}
	}
	lp.view.Tokens = multiword.Apply(lp.view.Tokens, phrases)
	s.log.Info("phrase composed", "text_id", textID, "page", n, "phrase", ph.Content, "status", int(status))
	return lp.view, nil
}

// SetStatus records status for each of contents in a language. Punctuation
// and spaces around a content are dropped; contents that still span several
// tokens are stored as phrases.
func (s *Service) SetStatus(ctx context.Context, languageID int64, status vocab.Status, contents ...string) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %d", vocab.ErrInvalidStatus, int(status))
	}
	_, profile, err := s.languageProfile(ctx, languageID)
	if err != nil {
		return err
	}
	seen := make(map[string]bool, len(contents))
	terms := make([]db.Term, 0, len(contents))
	for _, raw := range contents {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		c, n := segment.TrimTerm(profile, raw)
		if n == 0 {
			return fmt.Errorf("%w: %q contains no word", ErrInvalidInput, raw)
		}
		if seen[vocab.Key(c)] {
			continue
		}
		seen[vocab.Key(c)] = true
		terms = append(terms, db.Term{Content: c, TokenCount: n})
	}
	if len(terms) == 0 {
		return nil
	}
	return s.store.UpsertWordsBatch(ctx, languageID, terms, status, s.now())
}

// MarkPageKnown marks every word on the page that is still new as known and
// returns how many distinct words changed.
func (s *Service) MarkPageKnown(ctx context.Context, textID int64, n int) (int, error) {
	lp, err := s.loadPage(ctx, textID, n)
	if err != nil {
		return 0, err
	}
	seen := make(map[string]bool)
	var terms []db.Term
	for _, t := range multiword.Flatten(lp.view.Tokens) {
		if t.Type != segment.Word || t.Status == nil || vocab.Status(*t.Status) != vocab.New {
			continue
		}
		k := vocab.Key(t.Content)
		if seen[k] {
			continue
		}
		seen[k] = true
		terms = append(terms, db.Term{Content: t.Content, TokenCount: 1})
	}
	if len(terms) == 0 {
		return 0, nil
	}
	if err := s.store.UpsertWordsBatch(ctx, lp.lang.ID, terms, vocab.Known, s.now()); err != nil {
		return 0, fmt.Errorf("mark page known: %w", err)
	}
	s.log.Info("page marked known", "text_id", textID, "page", n, "words", len(terms))
	return len(terms), nil
}

// DescribeWord stores definitions and notes for a word or phrase without
// touching its status.
func (s *Service) DescribeWord(ctx context.Context, languageID int64, content string, entries []string, notes string) error {
	_, profile, err := s.languageProfile(ctx, languageID)
	if err != nil {
		return err
	}
	term, n := segment.TrimTerm(profile, content)
	if n == 0 {
		return fmt.Errorf("%w: %q contains no word", ErrInvalidInput, content)
	}
	t := db.Term{
		Content:    term,
		TokenCount: n,
		Entries:    entries,
		Notes:      notes,
	}
	return s.store.SaveWordDetails(ctx, languageID, t, s.now())
}

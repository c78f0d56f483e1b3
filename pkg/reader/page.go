package reader

import (
	"context"
	"fmt"

	"github.com/japaniel/lingoreader/pkg/db"
	"github.com/japaniel/lingoreader/pkg/language"
	"github.com/japaniel/lingoreader/pkg/multiword"
	"github.com/japaniel/lingoreader/pkg/segment"
)

// PageView is one page ready for display: its tokens carry learning status
// and stored phrases are already grouped into multiword tokens.
type PageView struct {
	TextID     int64           `json:"text_id"`
	Title      string          `json:"title"`
	Number     int             `json:"number"`
	PageCount  int             `json:"page_count"`
	ShowSpaces bool            `json:"show_spaces"`
	Tokens     []segment.Token `json:"tokens"`
}

type loadedPage struct {
	view    PageView
	lang    db.Language
	profile *language.Profile
	phrases []multiword.Phrase
}

// LoadPage tokenizes page n of a text with the language's current profile,
// resolves every word's status and applies the stored phrases. Nothing is
// written, so an abandoned load needs no cleanup.
func (s *Service) LoadPage(ctx context.Context, textID int64, n int) (PageView, error) {
	lp, err := s.loadPage(ctx, textID, n)
	if err != nil {
		return PageView{}, err
	}
	return lp.view, nil
}

func (s *Service) loadPage(ctx context.Context, textID int64, n int) (loadedPage, error) {
	text, err := s.store.GetText(ctx, textID)
	if err != nil {
		return loadedPage{}, err
	}
	page, err := s.store.GetPage(ctx, textID, n)
	if err != nil {
		return loadedPage{}, err
	}
	lang, profile, err := s.languageProfile(ctx, text.LanguageID)
	if err != nil {
		return loadedPage{}, err
	}

	tokens, err := s.resolver.Resolve(ctx, lang.ID, segment.Tokenize(profile, page.Content))
	if err != nil {
		return loadedPage{}, err
	}
	phrases, err := s.phrases(ctx, lang.ID, profile)
	if err != nil {
		return loadedPage{}, err
	}

	return loadedPage{
		view: PageView{
			TextID:     textID,
			Title:      text.Title,
			Number:     n,
			PageCount:  text.PageCount,
			ShowSpaces: profile.ShowSpaces(),
			Tokens:     multiword.Apply(tokens, phrases),
		},
		lang:    lang,
		profile: profile,
		phrases: phrases,
	}, nil
}

func (s *Service) phrases(ctx context.Context, languageID int64, profile *language.Profile) ([]multiword.Phrase, error) {
	entries, err := s.store.ListPhrases(ctx, languageID)
	if err != nil {
		return nil, fmt.Errorf("load phrases: %w", err)
	}
	out := make([]multiword.Phrase, 0, len(entries))
	for _, e := range entries {
		// A profile change can leave a stored phrase as a single token.
		if ph, ok := multiword.NewPhrase(profile, e.Content, e.Status); ok {
			out = append(out, ph)
		}
	}
	return out, nil
}

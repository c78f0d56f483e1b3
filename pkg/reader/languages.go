package reader

import (
	"context"

	"github.com/japaniel/lingoreader/pkg/db"
	"github.com/japaniel/lingoreader/pkg/language"
)

// AddLanguage validates def and stores it. Malformed patterns are reported,
// never replaced by defaults.
func (s *Service) AddLanguage(ctx context.Context, def language.Definition) (db.Language, error) {
	if err := def.Validate(); err != nil {
		return db.Language{}, err
	}
	l, err := s.store.CreateLanguage(ctx, def)
	if err != nil {
		return db.Language{}, err
	}
	s.log.Info("language added", "language_id", l.ID, "name", l.Definition.Name)
	return l, nil
}

// UpdateLanguage replaces a language definition. Pages already stored keep
// their content; the new profile is used from the next page load on.
func (s *Service) UpdateLanguage(ctx context.Context, id int64, def language.Definition) error {
	if err := def.Validate(); err != nil {
		return err
	}
	if err := s.store.UpdateLanguage(ctx, id, def); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.profiles, id)
	s.mu.Unlock()
	s.log.Info("language updated", "language_id", id, "name", def.Name)
	return nil
}

// LanguageByName looks a language up ignoring case.
func (s *Service) LanguageByName(ctx context.Context, name string) (db.Language, error) {
	return s.store.GetLanguageByName(ctx, name)
}

// Profile returns the compiled profile of a stored language.
func (s *Service) Profile(ctx context.Context, languageID int64) (*language.Profile, error) {
	_, p, err := s.languageProfile(ctx, languageID)
	return p, err
}

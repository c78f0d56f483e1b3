// Package reader ties the segmentation engine to storage: it imports and
// repaginates texts, renders pages as annotated token streams and records the
// learner's vocabulary decisions.
package reader

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/japaniel/lingoreader/pkg/db"
	"github.com/japaniel/lingoreader/pkg/language"
	"github.com/japaniel/lingoreader/pkg/plugin"
	"github.com/japaniel/lingoreader/pkg/vocab"
)

type store interface {
	CreateLanguage(ctx context.Context, def language.Definition) (db.Language, error)
	UpdateLanguage(ctx context.Context, id int64, def language.Definition) error
	GetLanguage(ctx context.Context, id int64) (db.Language, error)
	GetLanguageByName(ctx context.Context, name string) (db.Language, error)

	CreateText(ctx context.Context, t db.Text, pages []string) (int64, error)
	GetText(ctx context.Context, id int64) (db.Text, error)
	DeleteText(ctx context.Context, id int64) error
	GetPage(ctx context.Context, textID int64, n int) (db.Page, error)
	ReviseText(ctx context.Context, textID int64, title string, pages []string) error

	FindWords(ctx context.Context, languageID int64, keys []string) (map[string]vocab.Entry, error)
	ListPhrases(ctx context.Context, languageID int64) ([]vocab.Entry, error)
	UpsertWordsBatch(ctx context.Context, languageID int64, terms []db.Term, status vocab.Status, at time.Time) error
	SaveWordDetails(ctx context.Context, languageID int64, t db.Term, at time.Time) error
}

// Config tunes pagination and multiword selection.
type Config struct {
	// SentencesPerPage picks the page count of a text when the caller does
	// not ask for one.
	SentencesPerPage int
	// ComposeWindow bounds how many tokens past the anchor a selection may
	// reach.
	ComposeWindow int
}

// Service is the reading workflow over a store and a plugin registry.
type Service struct {
	log      *slog.Logger
	store    store
	plugins  *plugin.Registry
	resolver *vocab.Resolver
	cfg      Config
	now      func() time.Time

	mu       sync.Mutex
	profiles map[int64]cachedProfile
}

type cachedProfile struct {
	updatedAt time.Time
	profile   *language.Profile
}

func NewService(logger *slog.Logger, st store, plugins *plugin.Registry, cfg Config) *Service {
	return &Service{
		log:      logger.With("service", "reader"),
		store:    st,
		plugins:  plugins,
		resolver: vocab.NewResolver(st),
		cfg:      cfg,
		now:      time.Now,
		profiles: make(map[int64]cachedProfile),
	}
}

// profile compiles the language's profile, reusing the last compilation until
// the language row changes.
func (s *Service) profile(l db.Language) (*language.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.profiles[l.ID]; ok && c.updatedAt.Equal(l.UpdatedAt) {
		return c.profile, nil
	}
	p, err := language.Compile(l.Definition)
	if err != nil {
		return nil, fmt.Errorf("language %q: %w", l.Definition.Name, err)
	}
	s.profiles[l.ID] = cachedProfile{updatedAt: l.UpdatedAt, profile: p}
	return p, nil
}

func (s *Service) languageProfile(ctx context.Context, languageID int64) (db.Language, *language.Profile, error) {
	l, err := s.store.GetLanguage(ctx, languageID)
	if err != nil {
		return db.Language{}, nil, err
	}
	p, err := s.profile(l)
	if err != nil {
		return db.Language{}, nil, err
	}
	return l, p, nil
}

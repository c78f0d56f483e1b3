// Package app wires configuration, storage, processors and services into
// one application object shared by the commands.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/japaniel/lingoreader/internal/config"
	"github.com/japaniel/lingoreader/pkg/db"
	"github.com/japaniel/lingoreader/pkg/ingest"
	"github.com/japaniel/lingoreader/pkg/plugin"
	"github.com/japaniel/lingoreader/pkg/plugin/builtin"
	"github.com/japaniel/lingoreader/pkg/reader"
	"github.com/japaniel/lingoreader/pkg/termlist"
)

// App holds the long-lived components.
type App struct {
	Config  *config.Config
	Log     *slog.Logger
	Store   *db.Store
	Plugins *plugin.Registry
	Reader  *reader.Service
	Bulk    *ingest.Importer
	Terms   *termlist.Importer
	HTTP    *http.Client
}

// New opens the database, loads the processors named by the plugin manifest
// (or the built-in set) and builds the services.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	st, err := db.Open(ctx, cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", cfg.Database.Path, err)
	}

	reg := plugin.NewRegistry(logger)
	if err := loadPlugins(reg, cfg.Plugins); err != nil {
		_ = st.Close()
		return nil, err
	}

	svc := reader.NewService(logger, st, reg, reader.Config{
		SentencesPerPage: cfg.Reader.SentencesPerPage,
		ComposeWindow:    cfg.Reader.ComposeWindow,
	})

	bulk := ingest.NewImporter(logger, svc, reg)
	bulk.Workers = cfg.Import.Workers

	terms := termlist.NewImporter(logger, st.DB())
	terms.BatchSize = cfg.Import.BatchSize

	logger.Debug("application ready",
		slog.String("database", cfg.Database.Path),
		slog.Int("processors", len(reg.Processors())),
	)

	return &App{
		Config:  cfg,
		Log:     logger,
		Store:   st,
		Plugins: reg,
		Reader:  svc,
		Bulk:    bulk,
		Terms:   terms,
		HTTP:    &http.Client{Timeout: cfg.Import.FetchTimeout},
	}, nil
}

func loadPlugins(reg *plugin.Registry, cfg config.PluginsConfig) error {
	m := builtin.DefaultManifest()
	if cfg.Manifest != "" {
		var err error
		if m, err = plugin.ReadManifest(cfg.Manifest); err != nil {
			return fmt.Errorf("plugins: %w", err)
		}
	}
	if err := reg.LoadManifest(m, builtin.Catalog()); err != nil {
		return fmt.Errorf("plugins: %w", err)
	}
	return nil
}

// FetchArticle downloads a web page with the configured limits.
func (a *App) FetchArticle(ctx context.Context, rawURL string) (ingest.Article, error) {
	return ingest.FetchArticle(ctx, a.HTTP, rawURL, ingest.FetchOptions{
		UserAgent:    a.Config.Import.UserAgent,
		MaxBodyBytes: a.Config.Import.MaxBodyBytes,
	})
}

// DetectLanguage picks the stored language text is written in.
func (a *App) DetectLanguage(ctx context.Context, text string) (db.Language, error) {
	langs, err := a.Store.ListLanguages(ctx)
	if err != nil {
		return db.Language{}, err
	}
	names := make([]string, len(langs))
	for i, l := range langs {
		names[i] = l.Definition.Name
	}
	d, err := ingest.NewDetector(names)
	if err != nil {
		return db.Language{}, err
	}
	name, err := d.Detect(text)
	if err != nil {
		return db.Language{}, err
	}
	for _, l := range langs {
		if l.Definition.Name == name {
			return l, nil
		}
	}
	return db.Language{}, ingest.ErrLanguageUndetected
}

// Close shuts down the processors and the database.
func (a *App) Close() error {
	return errors.Join(a.Plugins.Shutdown(), a.Store.Close())
}

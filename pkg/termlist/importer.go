package termlist

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/japaniel/lingoreader/pkg/db"
	"github.com/japaniel/lingoreader/pkg/ingest"
	"github.com/japaniel/lingoreader/pkg/language"
	"github.com/japaniel/lingoreader/pkg/segment"
	"github.com/japaniel/lingoreader/pkg/vocab"
)

// Result summarizes an import.
type Result struct {
	Imported  int
	Skipped   int
	Duplicate int
}

// Importer writes term lists through a BatchWriter.
type Importer struct {
	conn *sql.DB
	log  *slog.Logger
	now  func() time.Time

	// BatchSize is the number of terms per write; each batch of writes is
	// one transaction.
	BatchSize     int
	FlushInterval time.Duration
}

// NewImporter returns an importer writing to conn.
func NewImporter(logger *slog.Logger, conn *sql.DB) *Importer {
	return &Importer{
		conn:      conn,
		log:       logger.With("service", "termlist"),
		now:       time.Now,
		BatchSize: 50,
	}
}

// Import stores terms for a language. Terms without a status get def. Blank
// terms are skipped; when a list repeats a term the last occurrence wins.
// Token counts come from profile, so multi-word terms become phrases.
func (im *Importer) Import(ctx context.Context, languageID int64, profile *language.Profile, terms []Term, def vocab.Status) (Result, error) {
	if !def.Valid() {
		return Result{}, fmt.Errorf("%w: %d", vocab.ErrInvalidStatus, int(def))
	}

	var res Result
	byKey := make(map[string]int)
	type item struct {
		term   db.Term
		status vocab.Status
	}
	var items []item
	for _, t := range terms {
		content, n := segment.TrimTerm(profile, t.Content)
		if n == 0 {
			res.Skipped++
			continue
		}
		st := def
		if t.Status != nil {
			st = *t.Status
		}
		it := item{
			term: db.Term{
				Content:    content,
				TokenCount: n,
				Entries:    t.Entries,
				Notes:      t.Notes,
			},
			status: st,
		}
		if i, ok := byKey[vocab.Key(content)]; ok {
			items[i] = it
			res.Duplicate++
			continue
		}
		byKey[vocab.Key(content)] = len(items)
		items = append(items, it)
	}

	groups := make(map[vocab.Status][]db.Term)
	for _, it := range items {
		groups[it.status] = append(groups[it.status], it.term)
	}
	statuses := make([]vocab.Status, 0, len(groups))
	for st := range groups {
		statuses = append(statuses, st)
	}
	slices.Sort(statuses)

	size := im.BatchSize
	if size <= 0 {
		size = 50
	}
	bw := ingest.NewBatchWriter(im.conn, 4, im.FlushInterval)
	at := im.now()
	for _, st := range statuses {
		for chunk := range slices.Chunk(groups[st], size) {
			if err := ctx.Err(); err != nil {
				_ = bw.Close()
				return Result{}, err
			}
			err := bw.Submit(func(ctx context.Context, tx *sql.Tx) error {
				return db.UpsertWordsTx(ctx, tx, languageID, chunk, st, at)
			})
			if err != nil {
				_ = bw.Close()
				return Result{}, err
			}
		}
	}
	if err := bw.Close(); err != nil {
		return Result{}, fmt.Errorf("import terms: %w", err)
	}

	res.Imported = len(items)
	im.log.Info("term list imported", "language_id", languageID, "imported", res.Imported, "skipped", res.Skipped, "duplicates", res.Duplicate)
	return res, nil
}

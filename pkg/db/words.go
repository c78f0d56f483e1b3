package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/japaniel/lingoreader/pkg/vocab"
)

const (
	// findChunk keeps IN lists well below SQLite's bound-parameter limit.
	findChunk = 500
	// upsertChunk rows per multi-row INSERT.
	upsertChunk = 100
)

var wordColumns = []string{
	"id", "language_id", "content", "content_key", "status", "token_count",
	"entries", "notes", "created_at", "updated_at",
}

func scanWord(row rowScanner) (vocab.Entry, error) {
	var e vocab.Entry
	var entries string
	err := row.Scan(&e.ID, &e.LanguageID, &e.Content, &e.Key, &e.Status, &e.TokenCount,
		&entries, &e.Notes, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return vocab.Entry{}, err
	}
	if err := json.Unmarshal([]byte(entries), &e.Entries); err != nil {
		return vocab.Entry{}, fmt.Errorf("decode entries of %q: %w", e.Content, err)
	}
	return e, nil
}

func encodeEntries(entries []string) (string, error) {
	if len(entries) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(entries)
	return string(b), err
}

// FindWord returns the entry stored under key, which must already be
// normalized with vocab.Key.
func (s *Store) FindWord(ctx context.Context, languageID int64, key string) (vocab.Entry, error) {
	query, args, err := builder.Select(wordColumns...).From("words").
		Where(squirrel.Eq{"language_id": languageID, "content_key": key}).ToSql()
	if err != nil {
		return vocab.Entry{}, fmt.Errorf("build query: %w", err)
	}
	e, err := scanWord(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return vocab.Entry{}, fmt.Errorf("word %q: %w", key, ErrNotFound)
	}
	if err != nil {
		return vocab.Entry{}, fmt.Errorf("find word: %w", err)
	}
	return e, nil
}

// FindWords returns the entries stored under any of keys, indexed by key.
func (s *Store) FindWords(ctx context.Context, languageID int64, keys []string) (map[string]vocab.Entry, error) {
	out := make(map[string]vocab.Entry, len(keys))
	for start := 0; start < len(keys); start += findChunk {
		chunk := keys[start:min(start+findChunk, len(keys))]
		rows, err := queryBuilt(ctx, s.db, builder.Select(wordColumns...).From("words").
			Where(squirrel.Eq{"language_id": languageID, "content_key": chunk}))
		if err != nil {
			return nil, fmt.Errorf("find words: %w", err)
		}
		for rows.Next() {
			e, err := scanWord(rows)
			if err != nil {
				rows.Close()
				return nil, err
			}
			out[e.Key] = e
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, fmt.Errorf("find words: %w", err)
		}
	}
	return out, nil
}

// ListPhrases returns the multi-token entries of a language.
func (s *Store) ListPhrases(ctx context.Context, languageID int64) ([]vocab.Entry, error) {
	rows, err := queryBuilt(ctx, s.db, builder.Select(wordColumns...).From("words").
		Where(squirrel.Eq{"language_id": languageID}).
		Where(squirrel.Gt{"token_count": 1}).
		OrderBy("token_count DESC", "content_key"))
	if err != nil {
		return nil, fmt.Errorf("list phrases: %w", err)
	}
	defer rows.Close()
	var out []vocab.Entry
	for rows.Next() {
		e, err := scanWord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// UpsertWordsBatch sets status on every term in one transaction, creating
// entries that do not exist yet.
func (s *Store) UpsertWordsBatch(ctx context.Context, languageID int64, terms []Term, status vocab.Status, at time.Time) error {
	return s.WithTx(ctx, func(tx *sql.Tx) error {
		return UpsertWordsTx(ctx, tx, languageID, terms, status, at)
	})
}

// UpsertWordsTx is UpsertWordsBatch against a caller-owned executor. Entries
// and notes only overwrite stored values when the term carries some.
func UpsertWordsTx(ctx context.Context, exec DBExecutor, languageID int64, terms []Term, status vocab.Status, at time.Time) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %d", vocab.ErrInvalidStatus, int(status))
	}
	at = at.UTC()
	for start := 0; start < len(terms); start += upsertChunk {
		q := builder.Insert("words").Columns(
			"language_id", "content", "content_key", "status", "token_count",
			"entries", "notes", "created_at", "updated_at")
		for _, t := range terms[start:min(start+upsertChunk, len(terms))] {
			content := strings.TrimSpace(t.Content)
			if content == "" {
				return fmt.Errorf("word must be non-empty")
			}
			entries, err := encodeEntries(t.Entries)
			if err != nil {
				return fmt.Errorf("encode entries of %q: %w", content, err)
			}
			q = q.Values(languageID, content, vocab.Key(content), int(status), max(t.TokenCount, 1), entries, t.Notes, at, at)
		}
		q = q.Suffix(`ON CONFLICT(language_id, content_key) DO UPDATE SET
			status = excluded.status,
			token_count = excluded.token_count,
			entries = COALESCE(NULLIF(excluded.entries, '[]'), words.entries),
			notes = COALESCE(NULLIF(excluded.notes, ''), words.notes),
			updated_at = excluded.updated_at`)
		if _, err := execBuilt(ctx, exec, q); err != nil {
			return fmt.Errorf("upsert words: %w", err)
		}
	}
	return nil
}

// SaveWordDetails stores the definitions and notes of a word without
// changing its status. A word seen for the first time is created as new.
func (s *Store) SaveWordDetails(ctx context.Context, languageID int64, t Term, at time.Time) error {
	content := strings.TrimSpace(t.Content)
	if content == "" {
		return fmt.Errorf("word must be non-empty")
	}
	entries, err := encodeEntries(t.Entries)
	if err != nil {
		return fmt.Errorf("encode entries of %q: %w", content, err)
	}
	at = at.UTC()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO words (language_id, content, content_key, status, token_count, entries, notes, created_at, updated_at)
		 VALUES (?, ?, ?, 0, ?, ?, ?, ?, ?)
		 ON CONFLICT(language_id, content_key) DO UPDATE SET
		   entries = excluded.entries,
		   notes = excluded.notes,
		   updated_at = excluded.updated_at`,
		languageID, content, vocab.Key(content), max(t.TokenCount, 1), entries, t.Notes, at, at)
	if err != nil {
		return fmt.Errorf("save word details: %w", err)
	}
	return nil
}

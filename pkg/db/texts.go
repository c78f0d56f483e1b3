package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
)

var textColumns = []string{"id", "language_id", "title", "source_url", "page_count", "created_at", "updated_at"}

func scanText(row rowScanner) (Text, error) {
	var t Text
	err := row.Scan(&t.ID, &t.LanguageID, &t.Title, &t.SourceURL, &t.PageCount, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

// CreateText inserts a text and all of its pages in one transaction.
func (s *Store) CreateText(ctx context.Context, t Text, pages []string) (int64, error) {
	if strings.TrimSpace(t.Title) == "" {
		return 0, fmt.Errorf("text title must be non-empty")
	}
	if len(pages) == 0 {
		return 0, fmt.Errorf("text needs at least one page")
	}
	now := time.Now().UTC()
	var id int64
	err := s.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO texts (language_id, title, source_url, page_count, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
			t.LanguageID, strings.TrimSpace(t.Title), t.SourceURL, len(pages), now, now)
		if err != nil {
			return fmt.Errorf("insert text: %w", err)
		}
		if id, err = res.LastInsertId(); err != nil {
			return err
		}
		return writePages(ctx, tx, id, pages)
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// writePages overwrites pages 1..len(pages) of a text in place and deletes
// any page numbered beyond them.
func writePages(ctx context.Context, exec DBExecutor, textID int64, pages []string) error {
	for i, content := range pages {
		_, err := exec.ExecContext(ctx,
			`INSERT INTO pages (text_id, number, content) VALUES (?, ?, ?)
			 ON CONFLICT(text_id, number) DO UPDATE SET content = excluded.content`,
			textID, i+1, content)
		if err != nil {
			return fmt.Errorf("write page %d: %w", i+1, err)
		}
	}
	_, err := execBuilt(ctx, exec, builder.Delete("pages").Where(squirrel.And{
		squirrel.Eq{"text_id": textID},
		squirrel.Gt{"number": len(pages)},
	}))
	if err != nil {
		return fmt.Errorf("delete surplus pages: %w", err)
	}
	return nil
}

// PutPages replaces the pages of a text: existing numbers are overwritten,
// new ones appended and surplus trailing pages deleted, all in one
// transaction.
func (s *Store) PutPages(ctx context.Context, textID int64, pages []string) error {
	return s.ReviseText(ctx, textID, "", pages)
}

// ReviseText is PutPages that also renames the text when title is not
// blank. Pages and title are written in the same transaction.
func (s *Store) ReviseText(ctx context.Context, textID int64, title string, pages []string) error {
	if len(pages) == 0 {
		return fmt.Errorf("text needs at least one page")
	}
	title = strings.TrimSpace(title)
	return s.WithTx(ctx, func(tx *sql.Tx) error {
		now := time.Now().UTC()
		res, err := tx.ExecContext(ctx, `UPDATE texts SET page_count = ?, updated_at = ? WHERE id = ?`,
			len(pages), now, textID)
		if err != nil {
			return fmt.Errorf("update text: %w", err)
		}
		if err := requireAffected(res, fmt.Sprintf("text %d", textID)); err != nil {
			return err
		}
		if err := writePages(ctx, tx, textID, pages); err != nil {
			return err
		}
		if title == "" {
			return nil
		}
		if _, err := tx.ExecContext(ctx, `UPDATE texts SET title = ? WHERE id = ?`, title, textID); err != nil {
			return fmt.Errorf("rename text: %w", err)
		}
		return nil
	})
}

func (s *Store) GetText(ctx context.Context, id int64) (Text, error) {
	query, args, err := builder.Select(textColumns...).From("texts").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return Text{}, fmt.Errorf("build query: %w", err)
	}
	t, err := scanText(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return Text{}, fmt.Errorf("text %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return Text{}, fmt.Errorf("get text: %w", err)
	}
	return t, nil
}

// ListTexts returns the texts of a language, or of every language when
// languageID is 0, newest first.
func (s *Store) ListTexts(ctx context.Context, languageID int64) ([]Text, error) {
	q := builder.Select(textColumns...).From("texts").OrderBy("created_at DESC", "id DESC")
	if languageID != 0 {
		q = q.Where(squirrel.Eq{"language_id": languageID})
	}
	rows, err := queryBuilt(ctx, s.db, q)
	if err != nil {
		return nil, fmt.Errorf("list texts: %w", err)
	}
	defer rows.Close()
	var out []Text
	for rows.Next() {
		t, err := scanText(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// DeleteText removes a text; its pages go with it.
func (s *Store) DeleteText(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM texts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete text: %w", err)
	}
	return requireAffected(res, fmt.Sprintf("text %d", id))
}

// GetPage returns page n (1-based) of a text.
func (s *Store) GetPage(ctx context.Context, textID int64, n int) (Page, error) {
	p := Page{TextID: textID, Number: n}
	err := s.db.QueryRowContext(ctx, `SELECT content FROM pages WHERE text_id = ? AND number = ?`, textID, n).Scan(&p.Content)
	if errors.Is(err, sql.ErrNoRows) {
		return Page{}, fmt.Errorf("text %d page %d: %w", textID, n, ErrNotFound)
	}
	if err != nil {
		return Page{}, fmt.Errorf("get page: %w", err)
	}
	return p, nil
}

// ListPages returns every page of a text in order.
func (s *Store) ListPages(ctx context.Context, textID int64) ([]Page, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT number, content FROM pages WHERE text_id = ? ORDER BY number`, textID)
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	defer rows.Close()
	var out []Page
	for rows.Next() {
		p := Page{TextID: textID}
		if err := rows.Scan(&p.Number, &p.Content); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

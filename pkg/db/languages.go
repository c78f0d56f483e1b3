package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/japaniel/lingoreader/pkg/language"
)

var languageColumns = []string{
	"id", "name", "alphabet", "sentence_delimiters", "whitespace",
	"intraword_punctuation", "show_spaces", "created_at", "updated_at",
}

func scanLanguage(row rowScanner) (Language, error) {
	var l Language
	var showSpaces bool
	err := row.Scan(&l.ID, &l.Definition.Name, &l.Definition.Alphabet, &l.Definition.SentenceDelimiters,
		&l.Definition.Whitespace, &l.Definition.IntrawordPunctuation, &showSpaces, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return Language{}, err
	}
	l.Definition.ShowSpaces = language.Bool(showSpaces)
	return l, nil
}

func showSpaces(def language.Definition) bool {
	return def.ShowSpaces == nil || *def.ShowSpaces
}

// CreateLanguage stores a new language. Names are unique regardless of case.
func (s *Store) CreateLanguage(ctx context.Context, def language.Definition) (Language, error) {
	name := strings.TrimSpace(def.Name)
	if name == "" {
		return Language{}, fmt.Errorf("language name must be non-empty")
	}
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO languages (name, alphabet, sentence_delimiters, whitespace, intraword_punctuation, show_spaces, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		name, def.Alphabet, def.SentenceDelimiters, def.Whitespace, def.IntrawordPunctuation, showSpaces(def), now, now)
	if err != nil {
		if isUniqueConstraintErr(err) {
			return Language{}, fmt.Errorf("language %q: %w", name, ErrAlreadyExists)
		}
		return Language{}, fmt.Errorf("insert language: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Language{}, err
	}
	def.Name = name
	def.ShowSpaces = language.Bool(showSpaces(def))
	return Language{ID: id, Definition: def, CreatedAt: now, UpdatedAt: now}, nil
}

// UpdateLanguage replaces a language's definition. Stored pages are not
// touched; the new profile applies from the next tokenization on.
func (s *Store) UpdateLanguage(ctx context.Context, id int64, def language.Definition) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE languages SET name = ?, alphabet = ?, sentence_delimiters = ?, whitespace = ?,
		 intraword_punctuation = ?, show_spaces = ?, updated_at = ? WHERE id = ?`,
		strings.TrimSpace(def.Name), def.Alphabet, def.SentenceDelimiters, def.Whitespace,
		def.IntrawordPunctuation, showSpaces(def), time.Now().UTC(), id)
	if err != nil {
		if isUniqueConstraintErr(err) {
			return fmt.Errorf("language %q: %w", def.Name, ErrAlreadyExists)
		}
		return fmt.Errorf("update language: %w", err)
	}
	return requireAffected(res, fmt.Sprintf("language %d", id))
}

func (s *Store) GetLanguage(ctx context.Context, id int64) (Language, error) {
	return s.getLanguage(ctx, squirrel.Eq{"id": id}, fmt.Sprint(id))
}

// GetLanguageByName looks a language up by name, ignoring case.
func (s *Store) GetLanguageByName(ctx context.Context, name string) (Language, error) {
	return s.getLanguage(ctx, squirrel.Expr("name = ? COLLATE NOCASE", strings.TrimSpace(name)), name)
}

func (s *Store) getLanguage(ctx context.Context, where squirrel.Sqlizer, label string) (Language, error) {
	query, args, err := builder.Select(languageColumns...).From("languages").Where(where).ToSql()
	if err != nil {
		return Language{}, fmt.Errorf("build query: %w", err)
	}
	l, err := scanLanguage(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return Language{}, fmt.Errorf("language %s: %w", label, ErrNotFound)
	}
	if err != nil {
		return Language{}, fmt.Errorf("get language: %w", err)
	}
	return l, nil
}

func (s *Store) ListLanguages(ctx context.Context) ([]Language, error) {
	rows, err := queryBuilt(ctx, s.db, builder.Select(languageColumns...).From("languages").OrderBy("name"))
	if err != nil {
		return nil, fmt.Errorf("list languages: %w", err)
	}
	defer rows.Close()
	var out []Language
	for rows.Next() {
		l, err := scanLanguage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

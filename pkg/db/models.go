package db

import (
	"time"

	"github.com/japaniel/lingoreader/pkg/language"
)

// Language is a stored language definition.
type Language struct {
	ID         int64
	Definition language.Definition
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Text is an imported text. Its content lives in PageCount pages.
type Text struct {
	ID         int64
	LanguageID int64
	Title      string
	SourceURL  string
	PageCount  int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Page is one page of a text; Number starts at 1.
type Page struct {
	TextID  int64
	Number  int
	Content string
}

// Term is one vocabulary item to upsert.
type Term struct {
	Content    string
	TokenCount int
	Entries    []string
	Notes      string
}

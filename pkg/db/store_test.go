package db

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/japaniel/lingoreader/pkg/language"
	"github.com/japaniel/lingoreader/pkg/vocab"
)

func setupTestDB(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func createLanguage(t *testing.T, s *Store, name string) Language {
	t.Helper()
	l, err := s.CreateLanguage(context.Background(), language.Definition{Name: name})
	require.NoError(t, err)
	return l
}

func TestLanguages(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	en, err := s.CreateLanguage(ctx, language.Definition{Name: "English", IntrawordPunctuation: "'"})
	require.NoError(t, err)
	assert.NotZero(t, en.ID)

	_, err = s.CreateLanguage(ctx, language.Definition{Name: "english"})
	assert.ErrorIs(t, err, ErrAlreadyExists)

	got, err := s.GetLanguageByName(ctx, "ENGLISH")
	require.NoError(t, err)
	assert.Equal(t, en.ID, got.ID)
	assert.Equal(t, "'", got.Definition.IntrawordPunctuation)
	require.NotNil(t, got.Definition.ShowSpaces)
	assert.True(t, *got.Definition.ShowSpaces)

	def := got.Definition
	def.ShowSpaces = language.Bool(false)
	def.SentenceDelimiters = "[.;]"
	require.NoError(t, s.UpdateLanguage(ctx, en.ID, def))

	got, err = s.GetLanguage(ctx, en.ID)
	require.NoError(t, err)
	assert.Equal(t, "[.;]", got.Definition.SentenceDelimiters)
	assert.False(t, *got.Definition.ShowSpaces)

	_, err = s.GetLanguage(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.UpdateLanguage(ctx, 999, def), ErrNotFound)

	createLanguage(t, s, "Deutsch")
	all, err := s.ListLanguages(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Deutsch", all[0].Definition.Name)
}

func TestCreateTextAndPages(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()
	lang := createLanguage(t, s, "English")

	id, err := s.CreateText(ctx, Text{LanguageID: lang.ID, Title: "Story", SourceURL: "https://example.com/a"},
		[]string{"One. ", "Two. ", "Three."})
	require.NoError(t, err)

	text, err := s.GetText(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Story", text.Title)
	assert.Equal(t, 3, text.PageCount)

	p, err := s.GetPage(ctx, id, 2)
	require.NoError(t, err)
	assert.Equal(t, "Two. ", p.Content)

	_, err = s.GetPage(ctx, id, 4)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.CreateText(ctx, Text{LanguageID: 999, Title: "Orphan"}, []string{"x"})
	assert.Error(t, err, "foreign key enforced")
	_, err = s.CreateText(ctx, Text{LanguageID: lang.ID, Title: "Empty"}, nil)
	assert.Error(t, err)

	texts, err := s.ListTexts(ctx, lang.ID)
	require.NoError(t, err)
	assert.Len(t, texts, 1)
}

func pageContents(t *testing.T, s *Store, textID int64) []string {
	t.Helper()
	pages, err := s.ListPages(context.Background(), textID)
	require.NoError(t, err)
	out := make([]string, len(pages))
	for i, p := range pages {
		assert.Equal(t, i+1, p.Number)
		out[i] = p.Content
	}
	return out
}

func TestPutPagesRepaginates(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()
	lang := createLanguage(t, s, "English")
	id, err := s.CreateText(ctx, Text{LanguageID: lang.ID, Title: "T"}, []string{"a", "b", "c"})
	require.NoError(t, err)

	require.NoError(t, s.PutPages(ctx, id, []string{"A", "B", "C", "D", "E"}))
	assert.Equal(t, []string{"A", "B", "C", "D", "E"}, pageContents(t, s, id))

	require.NoError(t, s.PutPages(ctx, id, []string{"only", ""}))
	assert.Equal(t, []string{"only", ""}, pageContents(t, s, id))

	text, err := s.GetText(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, text.PageCount)

	assert.ErrorIs(t, s.PutPages(ctx, 999, []string{"x"}), ErrNotFound)
	assert.Error(t, s.PutPages(ctx, id, nil))
}

func TestDeleteTextCascades(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()
	lang := createLanguage(t, s, "English")
	id, err := s.CreateText(ctx, Text{LanguageID: lang.ID, Title: "T"}, []string{"a", "b"})
	require.NoError(t, err)

	require.NoError(t, s.DeleteText(ctx, id))
	assert.Empty(t, pageContents(t, s, id))
	_, err = s.GetText(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.DeleteText(ctx, id), ErrNotFound)
}

func TestReviseText(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()
	lang := createLanguage(t, s, "English")
	id, err := s.CreateText(ctx, Text{LanguageID: lang.ID, Title: "Old"}, []string{"a", "b"})
	require.NoError(t, err)

	require.NoError(t, s.ReviseText(ctx, id, " New ", []string{"x"}))
	text, err := s.GetText(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "New", text.Title)
	assert.Equal(t, 1, text.PageCount)
	assert.Equal(t, []string{"x"}, pageContents(t, s, id))

	require.NoError(t, s.ReviseText(ctx, id, "  ", []string{"y", "z"}))
	text, err = s.GetText(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "New", text.Title, "blank title keeps the old one")
	assert.Equal(t, []string{"y", "z"}, pageContents(t, s, id))
}

func TestReviseTextRollsBackOnRenameFailure(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()
	lang := createLanguage(t, s, "English")
	id, err := s.CreateText(ctx, Text{LanguageID: lang.ID, Title: "Old"}, []string{"a", "b"})
	require.NoError(t, err)

	_, err = s.db.ExecContext(ctx, `CREATE TRIGGER reject_title BEFORE UPDATE OF title ON texts
		WHEN NEW.title = 'Forbidden' BEGIN SELECT RAISE(ABORT, 'title rejected'); END`)
	require.NoError(t, err)

	err = s.ReviseText(ctx, id, "Forbidden", []string{"x", "y", "z"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "title rejected")

	text, err := s.GetText(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Old", text.Title)
	assert.Equal(t, 2, text.PageCount)
	assert.Equal(t, []string{"a", "b"}, pageContents(t, s, id))
}

func TestUpsertAndFindWords(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()
	lang := createLanguage(t, s, "English")
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	err := s.UpsertWordsBatch(ctx, lang.ID, []Term{
		{Content: "Dog", Entries: []string{"Hund"}},
		{Content: "cat", Notes: "pet"},
		{Content: "New York", TokenCount: 3},
	}, vocab.Level1, at)
	require.NoError(t, err)

	found, err := s.FindWords(ctx, lang.ID, []string{"dog", "cat", "new york", "absent"})
	require.NoError(t, err)
	require.Len(t, found, 3)
	assert.Equal(t, "Dog", found["dog"].Content)
	assert.Equal(t, vocab.Level1, found["dog"].Status)
	assert.Equal(t, []string{"Hund"}, found["dog"].Entries)
	assert.Equal(t, "pet", found["cat"].Notes)
	assert.True(t, found["new york"].IsPhrase())
	assert.True(t, at.Equal(found["cat"].CreatedAt))

	// a status change keeps stored details and original spelling
	require.NoError(t, s.UpsertWordsBatch(ctx, lang.ID, []Term{{Content: "DOG"}}, vocab.Known, at.Add(time.Hour)))
	dog, err := s.FindWord(ctx, lang.ID, "dog")
	require.NoError(t, err)
	assert.Equal(t, vocab.Known, dog.Status)
	assert.Equal(t, "Dog", dog.Content)
	assert.Equal(t, []string{"Hund"}, dog.Entries)
	assert.True(t, at.Add(time.Hour).Equal(dog.UpdatedAt))

	_, err = s.FindWord(ctx, lang.ID, "absent")
	assert.ErrorIs(t, err, ErrNotFound)

	other := createLanguage(t, s, "German")
	found, err = s.FindWords(ctx, other.ID, []string{"dog"})
	require.NoError(t, err)
	assert.Empty(t, found, "vocabulary is per language")

	assert.ErrorIs(t, s.UpsertWordsBatch(ctx, lang.ID, []Term{{Content: "x"}}, vocab.Status(42), at), vocab.ErrInvalidStatus)
	assert.Error(t, s.UpsertWordsBatch(ctx, lang.ID, []Term{{Content: "  "}}, vocab.Level1, at))
}

func TestUpsertWordsLargeBatch(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()
	lang := createLanguage(t, s, "English")

	terms := make([]Term, 1234)
	keys := make([]string, len(terms))
	for i := range terms {
		terms[i] = Term{Content: fmt.Sprintf("Word%04d", i)}
		keys[i] = strings.ToLower(terms[i].Content)
	}
	require.NoError(t, s.UpsertWordsBatch(ctx, lang.ID, terms, vocab.Level3, time.Now()))

	found, err := s.FindWords(ctx, lang.ID, keys)
	require.NoError(t, err)
	assert.Len(t, found, len(terms))
}

func TestListPhrases(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()
	lang := createLanguage(t, s, "English")
	require.NoError(t, s.UpsertWordsBatch(ctx, lang.ID, []Term{
		{Content: "word"},
		{Content: "ice cream", TokenCount: 3},
		{Content: "in spite of", TokenCount: 5},
	}, vocab.Level2, time.Now()))

	phrases, err := s.ListPhrases(ctx, lang.ID)
	require.NoError(t, err)
	require.Len(t, phrases, 2)
	assert.Equal(t, "in spite of", phrases[0].Content)
	assert.Equal(t, "ice cream", phrases[1].Content)
}

func TestSaveWordDetails(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()
	lang := createLanguage(t, s, "English")

	require.NoError(t, s.SaveWordDetails(ctx, lang.ID, Term{Content: "Bank", Entries: []string{"river side", "money"}}, time.Now()))
	w, err := s.FindWord(ctx, lang.ID, "bank")
	require.NoError(t, err)
	assert.Equal(t, vocab.New, w.Status)
	assert.Equal(t, []string{"river side", "money"}, w.Entries)

	require.NoError(t, s.UpsertWordsBatch(ctx, lang.ID, []Term{{Content: "bank"}}, vocab.Level4, time.Now()))
	require.NoError(t, s.SaveWordDetails(ctx, lang.ID, Term{Content: "bank", Notes: "homonym"}, time.Now()))
	w, err = s.FindWord(ctx, lang.ID, "bank")
	require.NoError(t, err)
	assert.Equal(t, vocab.Level4, w.Status, "details do not touch status")
	assert.Equal(t, "homonym", w.Notes)
	assert.Empty(t, w.Entries)
}

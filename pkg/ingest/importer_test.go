package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/japaniel/lingoreader/pkg/db"
	"github.com/japaniel/lingoreader/pkg/language"
	"github.com/japaniel/lingoreader/pkg/plugin"
	"github.com/japaniel/lingoreader/pkg/reader"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var rejectX = plugin.Func{
	Name:      "reject-x",
	Languages: []string{plugin.AnyLanguage},
	Fn: func(s string) (string, error) {
		if strings.Contains(s, "X") {
			return "", errors.New("rejected")
		}
		return s, nil
	},
}

type fixture struct {
	store    *db.Store
	importer *Importer
	langID   int64
}

func newFixture(t testing.TB) fixture {
	t.Helper()
	ctx := context.Background()
	st, err := db.Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	reg := plugin.NewRegistry(testLogger())
	require.NoError(t, reg.Load(plugin.Static{PluginName: "test", Procs: []plugin.Processor{rejectX}}))
	t.Cleanup(func() { _ = reg.Shutdown() })

	svc := reader.NewService(testLogger(), st, reg, reader.Config{SentencesPerPage: 2})
	def, _ := language.Preset("English")
	lang, err := svc.AddLanguage(ctx, def)
	require.NoError(t, err)

	im := NewImporter(testLogger(), svc, reg)
	im.Workers = 4
	return fixture{store: st, importer: im, langID: lang.ID}
}

func (f fixture) docs(n int) []reader.ImportInput {
	docs := make([]reader.ImportInput, n)
	for i := range docs {
		docs[i] = reader.ImportInput{
			LanguageID: f.langID,
			Title:      fmt.Sprintf("Doc %02d", i),
			Text:       strings.Repeat(fmt.Sprintf("Sentence %d. ", i), i%5+1),
		}
	}
	return docs
}

func TestImportAllCommitsInOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	docs := f.docs(20)

	var last [2]int
	f.importer.OnProgress = func(done, total int) { last = [2]int{done, total} }

	ids, err := f.importer.ImportAll(ctx, docs)
	require.NoError(t, err)
	require.Len(t, ids, len(docs))
	assert.Equal(t, [2]int{20, 20}, last)

	for i, id := range ids {
		if i > 0 {
			assert.Greater(t, id, ids[i-1])
		}
		text, err := f.store.GetText(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, docs[i].Title, text.Title)

		pages, err := f.store.ListPages(ctx, id)
		require.NoError(t, err)
		var joined strings.Builder
		for _, p := range pages {
			joined.WriteString(p.Content)
		}
		assert.Equal(t, docs[i].Text, joined.String())
	}
}

func TestImportAllStopsAtFirstFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	docs := f.docs(6)
	docs[2].Text = "This one has an X in it."

	ids, err := f.importer.ImportAll(ctx, docs)
	require.Error(t, err)
	var perr *plugin.ProcessorError
	assert.ErrorAs(t, err, &perr)
	assert.Contains(t, err.Error(), "Doc 02")
	assert.Len(t, ids, 2)

	texts, err := f.store.ListTexts(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, texts, 2)
}

func TestImportAllRejectsInvalidDocument(t *testing.T) {
	f := newFixture(t)
	docs := f.docs(3)
	docs[0].Title = ""

	ids, err := f.importer.ImportAll(context.Background(), docs)
	assert.ErrorIs(t, err, reader.ErrInvalidInput)
	assert.Empty(t, ids)
}

type failingPool struct{}

func (failingPool) Start(ctx context.Context) {}
func (failingPool) Submit(job Job) error      { return errors.New("submit failed") }
func (failingPool) SubmitCtx(ctx context.Context, job Job) error {
	return errors.New("submit failed")
}
func (failingPool) Close() {}

func TestImportAllHandlesSubmitError(t *testing.T) {
	f := newFixture(t)
	f.importer.PoolFactory = func(workers, queue int) WorkerPoolInterface { return failingPool{} }

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	ids, err := f.importer.ImportAll(ctx, f.docs(10))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "submit failed")
	assert.Empty(t, ids)

	texts, err := f.store.ListTexts(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, texts)
}

func TestImportAllCanceled(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.importer.ImportAll(ctx, f.docs(5))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestImportAllEmpty(t *testing.T) {
	f := newFixture(t)
	ids, err := f.importer.ImportAll(context.Background(), nil)
	assert.NoError(t, err)
	assert.Nil(t, ids)
}

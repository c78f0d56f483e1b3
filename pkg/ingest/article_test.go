package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeRuby(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple", "<ruby>漢字<rt>かんじ</rt></ruby>", "<ruby>漢字</ruby>"},
		{"with rp", "<ruby>漢字<rp>(</rp><rt>かんじ</rt><rp>)</rp></ruby>", "<ruby>漢字</ruby>"},
		{"several", "<ruby>私<rt>わたし</rt></ruby>は<ruby>猫<rt>ねこ</rt></ruby>である", "<ruby>私</ruby>は<ruby>猫</ruby>である"},
		{"attributes", "<ruby class='a'>漢字<RT class='b'>かんじ</RT></ruby>", "<ruby class='a'>漢字</ruby>"},
		{"no ruby", "<p>plain</p>", "<p>plain</p>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(SanitizeRuby([]byte(tt.input))))
		})
	}
}

func serve(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchArticle(t *testing.T) {
	body, err := os.ReadFile("testdata/article.html")
	require.NoError(t, err)

	agents := make(chan string, 1)
	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		agents <- r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(body)
	})

	a, err := FetchArticle(context.Background(), srv.Client(), srv.URL+"/cat", FetchOptions{UserAgent: "lingoreader-test"})
	require.NoError(t, err)

	assert.Equal(t, "lingoreader-test", <-agents)
	assert.Equal(t, "猫の一日", a.Title)
	assert.Equal(t, srv.URL+"/cat", a.URL)
	assert.Contains(t, a.Text, "台所へ歩いていきました")
	assert.NotContains(t, a.Text, "ねこ")
	assert.NotContains(t, a.Text, "(")
}

func TestFetchArticleErrors(t *testing.T) {
	ctx := context.Background()

	missing := serve(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	_, err := FetchArticle(ctx, missing.Client(), missing.URL, FetchOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")

	big := serve(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body><p>" + strings.Repeat("a", 4096) + "</p></body></html>"))
	})
	_, err = FetchArticle(ctx, big.Client(), big.URL, FetchOptions{MaxBodyBytes: 1024})
	assert.ErrorIs(t, err, ErrBodyTooLarge)

	_, err = FetchArticle(ctx, http.DefaultClient, "file:///etc/passwd", FetchOptions{})
	assert.Error(t, err)
}

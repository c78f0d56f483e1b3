package segment

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/japaniel/lingoreader/pkg/language"
)

type tok struct {
	content string
	typ     Type
}

func simplify(tokens []Token) []tok {
	out := make([]tok, len(tokens))
	for i, t := range tokens {
		out[i] = tok{t.Content, t.Type}
	}
	return out
}

func asciiProfile(t *testing.T) *language.Profile {
	t.Helper()
	p, err := language.Compile(language.Definition{Name: "ascii", Alphabet: "[a-zA-Z]", IntrawordPunctuation: "'"})
	require.NoError(t, err)
	return p
}

func TestTokenizeIntrawordFusion(t *testing.T) {
	got := Tokenize(asciiProfile(t), "didn't")
	assert.Equal(t, []tok{{"didn't", Word}}, simplify(got))
}

func TestTokenizeEdgePunctuationPeeling(t *testing.T) {
	got := Tokenize(asciiProfile(t), "'bye'")
	assert.Equal(t, []tok{{"'", Punctuation}, {"bye", Word}, {"'", Punctuation}}, simplify(got))
}

func TestTokenizeClassification(t *testing.T) {
	p := asciiProfile(t)
	tests := []struct {
		name string
		in   string
		want []tok
	}{
		{
			name: "sentence with newline",
			in:   "Hello, world!\nBye.",
			want: []tok{
				{"Hello", Word}, {",", Punctuation}, {" ", Whitespace}, {"world", Word},
				{"!", Punctuation}, {"\n", Newline}, {"Bye", Word}, {".", Punctuation},
			},
		},
		{
			name: "double space is two whitespace tokens",
			in:   "a  b",
			want: []tok{{"a", Word}, {" ", Whitespace}, {" ", Whitespace}, {"b", Word}},
		},
		{
			name: "doubled apostrophe splits",
			in:   "a''b",
			want: []tok{{"a", Word}, {"'", Punctuation}, {"'", Punctuation}, {"b", Word}},
		},
		{
			name: "digits are not in the alphabet",
			in:   "ab12",
			want: []tok{{"ab", Word}, {"1", Punctuation}, {"2", Punctuation}},
		},
		{
			name: "unknown runes degrade to punctuation",
			in:   "x→y",
			want: []tok{{"x", Word}, {"→", Punctuation}, {"y", Word}},
		},
		{
			name: "empty",
			in:   "",
			want: []tok{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, simplify(Tokenize(p, tt.in)))
		})
	}
}

func TestTokenizeWordBreakMarker(t *testing.T) {
	def, ok := language.Preset("Japanese")
	require.True(t, ok)
	p := language.MustCompile(def)

	got := Tokenize(p, "猫が\u200b好き。")
	assert.Equal(t, []tok{
		{"猫が", Word}, {"\u200b", Whitespace}, {"好き", Word}, {"。", Punctuation},
	}, simplify(got))
}

func TestTokenizeWhitespaceFollowsProfile(t *testing.T) {
	got := Tokenize(language.Default(), "a\tb\u00a0c\r\n")
	assert.Equal(t, []tok{
		{"a", Word}, {"\t", Whitespace}, {"b", Word}, {"\u00a0", Whitespace},
		{"c", Word}, {"\r", Whitespace}, {"\n", Newline},
	}, simplify(got))

	spaceOnly, err := language.Compile(language.Definition{Name: "spaces", Whitespace: "[ ]"})
	require.NoError(t, err)
	got = Tokenize(spaceOnly, "a\tb c")
	assert.Equal(t, []tok{
		{"a", Word}, {"\t", Punctuation}, {"b", Word}, {" ", Whitespace}, {"c", Word},
	}, simplify(got))
}

func TestTokenizeIndicesStrictlyIncreasing(t *testing.T) {
	tokens := Tokenize(language.Default(), "It's a dog-eat-dog world, isn't it?")
	for i, tk := range tokens {
		assert.Equal(t, i, tk.Index)
		assert.NotEmpty(t, tk.Content)
	}
	assert.Equal(t, "dog-eat-dog", tokens[4].Content)
}

func TestTokenizeRoundTrip(t *testing.T) {
	alphabet := []string{"a", "B", "é", "'", "-", " ", "\n", ".", ",", "漢", "1", "\u200b", "\xff"}
	rng := rand.New(rand.NewSource(7))
	profiles := []*language.Profile{language.Default(), asciiProfile(t)}

	for i := 0; i < 500; i++ {
		var b strings.Builder
		for n := rng.Intn(40); n > 0; n-- {
			b.WriteString(alphabet[rng.Intn(len(alphabet))])
		}
		content := b.String()
		for _, p := range profiles {
			tokens := Tokenize(p, content)
			require.Equal(t, content, Join(tokens), "round trip of %q", content)
		}
	}
}

func TestTrimTerm(t *testing.T) {
	p := asciiProfile(t)
	tests := []struct {
		in     string
		want   string
		tokens int
	}{
		{"hello", "hello", 1},
		{" hello. ", "hello", 1},
		{"'bye'", "bye", 1},
		{"didn't", "didn't", 1},
		{"(New York)", "New York", 3},
		{"...", "", 0},
		{"", "", 0},
	}
	for _, tt := range tests {
		got, n := TrimTerm(p, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.tokens, n, tt.in)
	}
}

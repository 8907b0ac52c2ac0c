package tokenizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZanzyTHEbar/vragkit/vrag/config"
)

// wordTokenizer maps every whitespace separated word to one token.
type wordTokenizer struct {
	vocab []string
	index map[string]int
}

func newWordTokenizer() *wordTokenizer {
	return &wordTokenizer{index: make(map[string]int)}
}

func (w *wordTokenizer) Encode(text string) []int {
	var ids []int
	for _, f := range strings.Fields(text) {
		id, ok := w.index[f]
		if !ok {
			id = len(w.vocab)
			w.vocab = append(w.vocab, f)
			w.index[f] = id
		}
		ids = append(ids, id)
	}
	return ids
}

func (w *wordTokenizer) Decode(tokens []int) string {
	words := make([]string, len(tokens))
	for i, t := range tokens {
		words[i] = w.vocab[t]
	}
	return strings.Join(words, " ")
}

type chunk struct {
	ID      string
	Content string
}

func TestTruncateListByTokenSize(t *testing.T) {
	tk := newWordTokenizer()
	chunks := []chunk{
		{"c1", "one two three"},   // 3, total 3
		{"c2", "four five"},       // 2, total 5
		{"c3", "six seven eight"}, // 3, total 8
		{"c4", "nine"},            // 1, total 9
	}
	key := func(c chunk) string { return c.Content }

	tests := []struct {
		name      string
		maxTokens int
		wantIDs   []string
	}{
		{"exceeds at index 2", 6, []string{"c1", "c2"}},
		{"exact budget keeps item", 5, []string{"c1", "c2"}},
		{"first item too large", 2, []string{}},
		{"everything fits", 100, []string{"c1", "c2", "c3", "c4"}},
		{"zero budget", 0, []string{}},
		{"negative budget", -3, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncateListByTokenSize(tk, chunks, key, tt.maxTokens)
			ids := make([]string, 0, len(got))
			for _, c := range got {
				ids = append(ids, c.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestTruncateListByTokenSize_ResultDoesNotAliasInput(t *testing.T) {
	tk := newWordTokenizer()
	texts := []string{"a b", "c d", "e f"}
	identity := func(s string) string { return s }

	got := TruncateListByTokenSize(tk, texts, identity, 3)
	require.Equal(t, []string{"a b"}, got)

	got = append(got, "appended")
	assert.Equal(t, []string{"a b", "appended"}, got)
	assert.Equal(t, []string{"a b", "c d", "e f"}, texts)

	all := TruncateListByTokenSize(tk, texts[:2], identity, 100)
	_ = append(all, "appended")
	assert.Equal(t, "e f", texts[2])
}

func TestCountAndTruncateString(t *testing.T) {
	tk := newWordTokenizer()

	assert.Equal(t, 0, Count(tk, ""))
	assert.Equal(t, 4, Count(tk, "the quick brown fox"))

	assert.Equal(t, "the quick", TruncateString(tk, "the quick brown fox", 2))
	assert.Equal(t, "short", TruncateString(tk, "short", 10))
	assert.Equal(t, "", TruncateString(tk, "anything", 0))
}

func TestNew_UnknownBackend(t *testing.T) {
	_, err := New(config.TokenizerConfig{Backend: "sentencepiece"})
	assert.Error(t, err)

	_, err = New(config.TokenizerConfig{Backend: BackendHuggingFace})
	assert.Error(t, err)
}

func TestTiktoken_RoundTrip(t *testing.T) {
	tk, err := New(config.TokenizerConfig{Backend: BackendTiktoken, ModelName: "gpt-4o"})
	if err != nil {
		t.Skipf("tiktoken encoding unavailable (offline?): %v", err)
	}
	require.NotNil(t, tk)

	text := "Retrieval-augmented generation joins search with LLMs."
	tokens := tk.Encode(text)
	assert.NotEmpty(t, tokens)
	assert.Less(t, len(tokens), len(text))
	assert.Equal(t, text, tk.Decode(tokens))

	// Special tokens are encoded rather than rejected
	assert.NotPanics(t, func() { tk.Encode("end <|endoftext|>") })
}

func TestTiktoken_UnknownModelFallsBack(t *testing.T) {
	tk, err := NewTiktoken("some-local-model")
	if err != nil {
		t.Skipf("tiktoken encoding unavailable (offline?): %v", err)
	}
	assert.Equal(t, "some-local-model", tk.Model())
	assert.NotEmpty(t, tk.Encode("hello"))
}

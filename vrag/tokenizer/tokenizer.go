// Package tokenizer counts, truncates and budgets text in model tokens.
//
// Tokenizers are explicit values owned by the caller; there is no process-wide
// encoder. Use New to build one from config.
package tokenizer

import (
	"errors"
	"fmt"

	"github.com/ZanzyTHEbar/vragkit/vrag/config"
)

// ErrUnavailable is returned when a tokenizer backend is not compiled in.
var ErrUnavailable = errors.New("tokenizer backend not available in this build")

// Tokenizer converts between text and token ids.
type Tokenizer interface {
	Encode(text string) []int
	Decode(tokens []int) string
}

const (
	BackendTiktoken    = "tiktoken"
	BackendHuggingFace = "huggingface"
)

// New builds the tokenizer selected by cfg.Backend. An empty backend means tiktoken.
func New(cfg config.TokenizerConfig) (Tokenizer, error) {
	switch cfg.Backend {
	case "", BackendTiktoken:
		tk, err := NewTiktoken(cfg.ModelName)
		if err != nil {
			return nil, err
		}
		return tk, nil
	case BackendHuggingFace:
		if cfg.Path == "" {
			return nil, fmt.Errorf("tokenizer.path is required for the %s backend", BackendHuggingFace)
		}
		tk, err := NewHuggingFace(cfg.Path)
		if err != nil {
			return nil, err
		}
		return tk, nil
	default:
		return nil, fmt.Errorf("unknown tokenizer backend %q", cfg.Backend)
	}
}

// Count returns the number of tokens in text.
func Count(tk Tokenizer, text string) int {
	if text == "" {
		return 0
	}
	return len(tk.Encode(text))
}

// TruncateString cuts text down to at most maxTokens tokens.
func TruncateString(tk Tokenizer, text string, maxTokens int) string {
	if maxTokens <= 0 {
		return ""
	}
	tokens := tk.Encode(text)
	if len(tokens) <= maxTokens {
		return text
	}
	return tk.Decode(tokens[:maxTokens])
}

//go:build !hf_tokenizers

package tokenizer

import "fmt"

// HuggingFace is a placeholder for builds without -tags hf_tokenizers.
type HuggingFace struct{}

// NewHuggingFace always fails unless built with -tags hf_tokenizers.
func NewHuggingFace(path string) (*HuggingFace, error) {
	return nil, fmt.Errorf("huggingface tokenizer %s: %w", path, ErrUnavailable)
}

func (h *HuggingFace) Encode(text string) []int   { return nil }
func (h *HuggingFace) Decode(tokens []int) string { return "" }
func (h *HuggingFace) Close() error               { return nil }

var _ Tokenizer = (*HuggingFace)(nil)

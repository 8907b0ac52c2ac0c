//go:build hf_tokenizers

package tokenizer

import (
	"fmt"

	"github.com/daulet/tokenizers"
)

// HuggingFace wraps a Rust tokenizers tokenizer.json (requires libtokenizers).
type HuggingFace struct {
	tk *tokenizers.Tokenizer
}

// NewHuggingFace loads a tokenizer.json from path.
func NewHuggingFace(path string) (*HuggingFace, error) {
	tk, err := tokenizers.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("tokenizer: load %s: %w", path, err)
	}
	return &HuggingFace{tk: tk}, nil
}

// Encode returns token ids without adding special tokens.
func (h *HuggingFace) Encode(text string) []int {
	ids, _ := h.tk.Encode(text, false)
	out := make([]int, len(ids))
	for i, id := range ids {
		out[i] = int(id)
	}
	return out
}

// Decode turns token ids back into text, skipping special tokens.
func (h *HuggingFace) Decode(tokens []int) string {
	ids := make([]uint32, len(tokens))
	for i, t := range tokens {
		ids[i] = uint32(t)
	}
	return h.tk.Decode(ids, true)
}

// Close frees the native tokenizer.
func (h *HuggingFace) Close() error {
	return h.tk.Close()
}

var _ Tokenizer = (*HuggingFace)(nil)

package tokenizer

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"

	internal "github.com/ZanzyTHEbar/vragkit/vrag"
)

// fallbackEncoding is used for model names tiktoken does not know about.
const fallbackEncoding = "o200k_base"

// Tiktoken is a BPE tokenizer matching OpenAI models.
type Tiktoken struct {
	model string
	enc   *tiktoken.Tiktoken
}

// NewTiktoken loads the encoding for modelName, e.g. "gpt-4o".
// Unknown model names fall back to o200k_base.
func NewTiktoken(modelName string) (*Tiktoken, error) {
	if modelName == "" {
		modelName = internal.DefaultTokenizerModel
	}

	enc, err := tiktoken.EncodingForModel(modelName)
	if err != nil {
		enc, err = tiktoken.GetEncoding(fallbackEncoding)
		if err != nil {
			return nil, fmt.Errorf("tokenizer: load encoding for %s: %w", modelName, err)
		}
	}
	return &Tiktoken{model: modelName, enc: enc}, nil
}

// Model returns the model name the encoding was resolved for.
func (t *Tiktoken) Model() string { return t.model }

// Encode allows special tokens so inputs containing "<|endoftext|>" do not panic.
func (t *Tiktoken) Encode(text string) []int {
	return t.enc.Encode(text, []string{"all"}, nil)
}

// Decode turns token ids back into text.
func (t *Tiktoken) Decode(tokens []int) string {
	return t.enc.Decode(tokens)
}

var _ Tokenizer = (*Tiktoken)(nil)

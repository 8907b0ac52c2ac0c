// Package funcs defines the embedding and LLM call shapes used across the
// pipeline and the wrappers that inject per-process configuration into them.
package funcs

import (
	"context"
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/ZanzyTHEbar/vragkit/vrag/config"
)

var (
	// ErrUnexpectedArgs is returned by CallArgs for anything but a single []string.
	ErrUnexpectedArgs = errors.New("unexpected positional arguments, expected a single list of texts")
	// ErrDimensionMismatch is returned when an embedding backend returns the wrong shape.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

// EmbedRequest is what an embedding backend receives.
type EmbedRequest struct {
	Texts        []string
	ModelName    string
	GlobalConfig *config.Config
}

// EmbedFn embeds req.Texts and returns one row per text.
type EmbedFn func(ctx context.Context, req EmbedRequest) (*mat.Dense, error)

// EmbeddingFunc attaches model attributes to an embedding backend.
type EmbeddingFunc struct {
	EmbeddingDim int
	MaxTokenSize int
	ModelName    string
	Func         EmbedFn
}

// WrapEmbeddingFuncWithAttrs returns a decorator that attaches the given
// attributes to an EmbedFn.
func WrapEmbeddingFuncWithAttrs(embeddingDim, maxTokenSize int, modelName string) func(EmbedFn) *EmbeddingFunc {
	return func(fn EmbedFn) *EmbeddingFunc {
		return &EmbeddingFunc{
			EmbeddingDim: embeddingDim,
			MaxTokenSize: maxTokenSize,
			ModelName:    modelName,
			Func:         fn,
		}
	}
}

// Call embeds texts with the function's model.
func (f *EmbeddingFunc) Call(ctx context.Context, texts []string) (*mat.Dense, error) {
	return f.Embed(ctx, EmbedRequest{Texts: texts})
}

// CallArgs accepts loosely typed positional arguments; exactly one []string is allowed.
func (f *EmbeddingFunc) CallArgs(ctx context.Context, args ...any) (*mat.Dense, error) {
	if len(args) != 1 {
		return nil, ErrUnexpectedArgs
	}
	texts, ok := args[0].([]string)
	if !ok {
		return nil, fmt.Errorf("%w: got %T", ErrUnexpectedArgs, args[0])
	}
	return f.Call(ctx, texts)
}

// Embed sets the model name on req, calls the backend and checks the result
// has one row per text and EmbeddingDim columns. An empty batch returns nil
// without calling the backend.
func (f *EmbeddingFunc) Embed(ctx context.Context, req EmbedRequest) (*mat.Dense, error) {
	if len(req.Texts) == 0 {
		return nil, nil
	}

	req.ModelName = f.ModelName
	out, err := f.Func(ctx, req)
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, fmt.Errorf("%w: backend returned no embeddings for %d texts", ErrDimensionMismatch, len(req.Texts))
	}

	rows, cols := out.Dims()
	if rows != len(req.Texts) {
		return nil, fmt.Errorf("%w: got %d rows for %d texts", ErrDimensionMismatch, rows, len(req.Texts))
	}
	if f.EmbeddingDim > 0 && cols != f.EmbeddingDim {
		return nil, fmt.Errorf("%w: got %d columns, want %d", ErrDimensionMismatch, cols, f.EmbeddingDim)
	}
	return out, nil
}

// Rows copies an embedding matrix into per-text float32 vectors for storage.
func Rows(m *mat.Dense) [][]float32 {
	if m == nil {
		return nil
	}
	r, c := m.Dims()
	out := make([][]float32, r)
	for i := 0; i < r; i++ {
		row := make([]float32, c)
		for j := 0; j < c; j++ {
			row[j] = float32(m.At(i, j))
		}
		out[i] = row
	}
	return out
}

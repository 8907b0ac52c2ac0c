package funcs

import (
	"context"
	"errors"

	"gonum.org/v1/gonum/mat"

	"github.com/ZanzyTHEbar/vragkit/vrag/config"
	"github.com/ZanzyTHEbar/vragkit/vrag/ports"
)

// ErrUnbound is returned when a decoded wrapper is called before Registry binds its function.
var ErrUnbound = errors.New("wrapper has no bound function")

// EmbeddingWrapper injects a fixed global config into every embedding call.
//
// Only FuncName and GlobalConfig are serialized; a worker process decodes
// the wrapper and binds the function through a Registry.
type EmbeddingWrapper struct {
	FuncName     string        `json:"func"`
	GlobalConfig config.Config `json:"global_config"`

	fn *EmbeddingFunc
}

// NewEmbeddingWrapper wraps fn, registered under name, with cfg.
func NewEmbeddingWrapper(name string, fn *EmbeddingFunc, cfg config.Config) *EmbeddingWrapper {
	return &EmbeddingWrapper{FuncName: name, GlobalConfig: cfg, fn: fn}
}

// EmbeddingDim reports the bound function's vector width, or 0 when unbound.
func (w *EmbeddingWrapper) EmbeddingDim() int {
	if w.fn == nil {
		return 0
	}
	return w.fn.EmbeddingDim
}

// MaxTokenSize reports the bound function's per-text token cap, or 0 when unbound.
func (w *EmbeddingWrapper) MaxTokenSize() int {
	if w.fn == nil {
		return 0
	}
	return w.fn.MaxTokenSize
}

// ModelName reports the bound function's model, or "" when unbound.
func (w *EmbeddingWrapper) ModelName() string {
	if w.fn == nil {
		return ""
	}
	return w.fn.ModelName
}

// Call embeds texts with the wrapper's global config attached.
func (w *EmbeddingWrapper) Call(ctx context.Context, texts []string) (*mat.Dense, error) {
	return w.Embed(ctx, EmbedRequest{Texts: texts})
}

// Embed overwrites req.GlobalConfig with a copy of the wrapper's config.
func (w *EmbeddingWrapper) Embed(ctx context.Context, req EmbedRequest) (*mat.Dense, error) {
	if w.fn == nil {
		return nil, ErrUnbound
	}
	cfg := w.GlobalConfig
	req.GlobalConfig = &cfg
	return w.fn.Embed(ctx, req)
}

// LLMWrapper injects a fixed global config, and optionally a hashing kv, into
// every completion call. The kv is process-local and never serialized.
type LLMWrapper struct {
	FuncName     string        `json:"func"`
	GlobalConfig config.Config `json:"global_config"`
	HashingKV    ports.KVStore `json:"-"`

	fn LLMFn
}

// NewLLMWrapper wraps fn, registered under name, with cfg and an optional kv.
func NewLLMWrapper(name string, fn LLMFn, cfg config.Config, kv ports.KVStore) *LLMWrapper {
	return &LLMWrapper{FuncName: name, GlobalConfig: cfg, HashingKV: kv, fn: fn}
}

// Complete is a shortcut for a single prompt without history.
func (w *LLMWrapper) Complete(ctx context.Context, prompt string) (string, error) {
	return w.Call(ctx, LLMRequest{Prompt: prompt})
}

// Call sets req.GlobalConfig, and req.HashingKV when the wrapper has one.
func (w *LLMWrapper) Call(ctx context.Context, req LLMRequest) (string, error) {
	if w.fn == nil {
		return "", ErrUnbound
	}
	cfg := w.GlobalConfig
	req.GlobalConfig = &cfg
	if w.HashingKV != nil {
		req.HashingKV = w.HashingKV
	}
	return w.fn(ctx, req)
}

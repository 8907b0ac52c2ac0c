package funcs

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/ZanzyTHEbar/vragkit/vrag/ports"
)

// Registry maps stable names to functions so wrappers can cross process
// boundaries as plain data and be re-bound on the other side.
type Registry struct {
	mu         sync.RWMutex
	embeddings map[string]*EmbeddingFunc
	llms       map[string]LLMFn
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		embeddings: make(map[string]*EmbeddingFunc),
		llms:       make(map[string]LLMFn),
	}
}

// RegisterEmbedding adds fn under name. Names must be unique.
func (r *Registry) RegisterEmbedding(name string, fn *EmbeddingFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.embeddings[name]; exists {
		return fmt.Errorf("embedding func %q already registered", name)
	}
	r.embeddings[name] = fn
	return nil
}

// RegisterLLM adds fn under name. Names must be unique.
func (r *Registry) RegisterLLM(name string, fn LLMFn) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.llms[name]; exists {
		return fmt.Errorf("llm func %q already registered", name)
	}
	r.llms[name] = fn
	return nil
}

// DecodeEmbeddingWrapper rebuilds a wrapper from its JSON form.
func (r *Registry) DecodeEmbeddingWrapper(data []byte) (*EmbeddingWrapper, error) {
	var w EmbeddingWrapper
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("failed to decode embedding wrapper: %w", err)
	}

	r.mu.RLock()
	fn, ok := r.embeddings[w.FuncName]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("embedding func %q: %w", w.FuncName, ErrUnbound)
	}

	w.fn = fn
	return &w, nil
}

// DecodeLLMWrapper rebuilds a wrapper from its JSON form and attaches the
// process-local kv, which may be nil.
func (r *Registry) DecodeLLMWrapper(data []byte, kv ports.KVStore) (*LLMWrapper, error) {
	var w LLMWrapper
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("failed to decode llm wrapper: %w", err)
	}

	r.mu.RLock()
	fn, ok := r.llms[w.FuncName]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("llm func %q: %w", w.FuncName, ErrUnbound)
	}

	w.fn = fn
	w.HashingKV = kv
	return &w, nil
}

// Package pipeline wires the call helpers together from a Config: response
// cache, tracer, tokenizer, device and the bounded embedding and LLM callers.
package pipeline

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"

	internal "github.com/ZanzyTHEbar/vragkit/vrag"
	"github.com/ZanzyTHEbar/vragkit/vrag/adapters"
	"github.com/ZanzyTHEbar/vragkit/vrag/config"
	"github.com/ZanzyTHEbar/vragkit/vrag/db"
	"github.com/ZanzyTHEbar/vragkit/vrag/device"
	"github.com/ZanzyTHEbar/vragkit/vrag/funcs"
	"github.com/ZanzyTHEbar/vragkit/vrag/limiter"
	"github.com/ZanzyTHEbar/vragkit/vrag/ports"
	"github.com/ZanzyTHEbar/vragkit/vrag/tokenizer"
)

// Cache backends accepted in cache.backend.
const (
	CacheBackendMemory = "memory"
	CacheBackendJSON   = "json"
	CacheBackendLibSQL = "libsql"
)

// Factory creates and wires pipeline components from configuration.
type Factory struct {
	cfg    *config.Config
	logger zerolog.Logger

	mu sync.Mutex
	db *sql.DB // opened lazily by the libsql cache backend
}

// NewFactory creates a new pipeline factory.
func NewFactory(cfg *config.Config, logger zerolog.Logger) *Factory {
	return &Factory{cfg: cfg, logger: logger}
}

// Config returns the configuration the factory was built with.
func (f *Factory) Config() *config.Config { return f.cfg }

// CreateKV creates the LLM response cache selected by cache.backend. It
// returns nil when llm.cache_enabled is off.
func (f *Factory) CreateKV(ctx context.Context) (ports.KVStore, error) {
	if !f.cfg.LLM.CacheEnabled {
		return nil, nil
	}

	namespace := f.cfg.Cache.Namespace
	if namespace == "" {
		namespace = internal.DefaultCacheNamespace
	}

	switch f.cfg.Cache.Backend {
	case "", CacheBackendMemory:
		return adapters.NewLRUStore(f.cfg.Cache.Capacity, f.cfg.Cache.TTL), nil
	case CacheBackendJSON:
		store, err := adapters.NewJSONFileStore(f.cfg.WorkingDir, namespace, f.logger)
		if err != nil {
			return nil, err
		}
		return store, nil
	case CacheBackendLibSQL:
		conn, err := f.database(ctx)
		if err != nil {
			return nil, err
		}
		return adapters.NewLibSQLStore(conn, namespace), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", f.cfg.Cache.Backend)
	}
}

func (f *Factory) database(ctx context.Context) (*sql.DB, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.db != nil {
		return f.db, nil
	}
	conn, err := db.Connect(ctx, filepath.Join(f.cfg.WorkingDir, internal.DefaultDatabaseFile), f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}
	f.db = conn
	return conn, nil
}

// Close releases the cache database, if one was opened.
func (f *Factory) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.db == nil {
		return nil
	}
	err := f.db.Close()
	f.db = nil
	return err
}

// CreateTracer creates a tracer adapter from config.
func (f *Factory) CreateTracer() ports.Tracer {
	if !f.cfg.Tracing.Enabled {
		return adapters.NoopTracer{}
	}
	return adapters.NewZerologTracer(f.logger)
}

// CreateTokenizer builds the configured tokenizer.
func (f *Factory) CreateTokenizer() (tokenizer.Tokenizer, error) {
	tk, err := tokenizer.New(f.cfg.Tokenizer)
	if err != nil {
		return nil, fmt.Errorf("failed to create %q tokenizer: %w", f.cfg.Tokenizer.Backend, err)
	}
	return tk, nil
}

// Device resolves the compute device, honoring device.force.
func (f *Factory) Device(p device.Prober) (device.Device, error) {
	d, err := device.Resolve(f.cfg.Device, p)
	if err != nil {
		return "", err
	}
	f.logger.Debug().Str("device", d.String()).Str("provider", d.ExecutionProvider()).Msg("Resolved compute device")
	return d, nil
}

// Embedding wraps fn, registered under name, into a config-injecting caller
// bounded by embedding.max_async and traced when tracing is enabled.
func (f *Factory) Embedding(name string, fn *funcs.EmbeddingFunc) (limiter.Func[[]string, *mat.Dense], *limiter.Limiter, error) {
	l, err := limiter.New(f.clampMaxAsync("embedding.max_async", f.cfg.Embedding.MaxAsync))
	if err != nil {
		return nil, nil, err
	}

	w := funcs.NewEmbeddingWrapper(name, fn, *f.cfg)
	call := Traced(f.CreateTracer(), "embedding", map[string]any{"func": name, "model": fn.ModelName}, funcs.LimitEmbedding(l, w))
	return withLogger(f.logger, call), l, nil
}

// LLM wraps fn, registered under name, into a caller that is cached in kv
// (nil disables caching), retried per llm.retry_*, bounded by llm.max_async
// and traced when tracing is enabled.
func (f *Factory) LLM(name string, fn funcs.LLMFn, kv ports.KVStore) (limiter.Func[funcs.LLMRequest, string], *limiter.Limiter, error) {
	l, err := limiter.New(f.clampMaxAsync("llm.max_async", f.cfg.LLM.MaxAsync))
	if err != nil {
		return nil, nil, err
	}

	core := funcs.RetryLLM(fn, funcs.RetryPolicy{
		Attempts:        f.cfg.LLM.RetryAttempts,
		InitialInterval: f.cfg.LLM.RetryInitialInterval,
	})
	if kv != nil {
		core = funcs.CachedLLM(core)
	}

	w := funcs.NewLLMWrapper(name, core, *f.cfg, kv)
	call := Traced(f.CreateTracer(), "llm", map[string]any{"func": name, "model": f.cfg.LLM.ModelName}, funcs.LimitLLM(l, w))
	return withLogger(f.logger, call), l, nil
}

func (f *Factory) clampMaxAsync(key string, n int) int {
	if n < 1 {
		f.logger.Warn().Int(key, n).Msg("max_async clamped to minimum of 1")
		return 1
	}
	return n
}

// withLogger attaches the factory logger to contexts that carry none so
// wrapped funcs can log through zerolog.Ctx.
func withLogger[Req, Resp any](logger zerolog.Logger, fn limiter.Func[Req, Resp]) limiter.Func[Req, Resp] {
	return func(ctx context.Context, req Req) (Resp, error) {
		if zerolog.Ctx(ctx).GetLevel() == zerolog.Disabled {
			ctx = logger.WithContext(ctx)
		}
		return fn(ctx, req)
	}
}

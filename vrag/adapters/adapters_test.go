package adapters

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZanzyTHEbar/vragkit/vrag/db"
)

func entry(text string) map[string]any {
	return map[string]any{"return": text, "model": "gpt-4o-mini"}
}

func TestLRUStore_BasicOperations(t *testing.T) {
	store := NewLRUStore(2, 0)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, map[string]map[string]any{"k1": entry("v1")}))
	require.NoError(t, store.Upsert(ctx, map[string]map[string]any{"k2": entry("v2")}))

	v, ok, err := store.GetByID(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v1", v["return"])

	// k1 was touched, so k2 is evicted
	require.NoError(t, store.Upsert(ctx, map[string]map[string]any{"k3": entry("v3")}))
	_, ok, _ = store.GetByID(ctx, "k2")
	assert.False(t, ok)

	keys, err := store.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"k1", "k3"}, keys)

	require.NoError(t, store.Delete(ctx, "k1"))
	require.NoError(t, store.Delete(ctx, "missing"))
	assert.Equal(t, 1, store.Len())
}

func TestLRUStore_TTL(t *testing.T) {
	store := NewLRUStore(10, 50*time.Millisecond)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, map[string]map[string]any{"k": entry("v")}))

	_, ok, _ := store.GetByID(ctx, "k")
	assert.True(t, ok)

	time.Sleep(120 * time.Millisecond)
	keys, _ := store.Keys(ctx)
	assert.Empty(t, keys)
	_, ok, _ = store.GetByID(ctx, "k")
	assert.False(t, ok)
	assert.Equal(t, 0, store.Len())
}

func TestJSONFileStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewJSONFileStore(dir, "llm_response_cache", zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "kv_store_llm_response_cache.json"), store.Path())

	require.NoError(t, store.Upsert(ctx, map[string]map[string]any{
		"a": entry("first"),
		"b": entry("second"),
	}))
	require.NoError(t, store.Delete(ctx, "b"))

	reopened, err := NewJSONFileStore(dir, "llm_response_cache", zerolog.Nop())
	require.NoError(t, err)

	v, ok, err := reopened.GetByID(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "first", v["return"])

	keys, err := reopened.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, keys)
}

func TestLibSQLStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	conn, err := db.Connect(ctx, filepath.Join(t.TempDir(), "cache.db"), zerolog.Nop())
	require.NoError(t, err)
	defer conn.Close()

	store := NewLibSQLStore(conn, "llm_response_cache")
	other := NewLibSQLStore(conn, "other")

	require.NoError(t, store.Upsert(ctx, map[string]map[string]any{
		"h1": entry("cached answer"),
		"h2": entry("another"),
	}))
	require.NoError(t, store.Upsert(ctx, map[string]map[string]any{"h1": entry("replaced")}))

	v, ok, err := store.GetByID(ctx, "h1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "replaced", v["return"])

	_, ok, err = other.GetByID(ctx, "h1")
	require.NoError(t, err)
	assert.False(t, ok)

	keys, err := store.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"h1", "h2"}, keys)

	require.NoError(t, store.Delete(ctx, "h2"))
	_, ok, err = store.GetByID(ctx, "h2")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestZerologTracer_Spans(t *testing.T) {
	var buf bytes.Buffer
	tracer := NewZerologTracer(zerolog.New(&buf).Level(zerolog.DebugLevel))

	ctx, finish := tracer.StartSpan(context.Background(), "llm_call", map[string]any{"model": "gpt-4o-mini"})
	tracer.Event(ctx, "cache_hit", map[string]any{"key": "abc"})
	_, finishChild := tracer.StartSpan(ctx, "child", nil)
	finishChild(nil)
	finish(errors.New("upstream failed"))

	out := buf.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 5)
	assert.Contains(t, out, `"span":"llm_call"`)
	assert.Contains(t, out, `"model":"gpt-4o-mini"`)
	assert.Contains(t, out, `"event":"cache_hit"`)
	assert.Contains(t, out, `"parent_span_id"`)
	assert.Contains(t, lines[len(lines)-1], `"level":"error"`)
	assert.Contains(t, lines[len(lines)-1], "upstream failed")
}

func TestNoopTracer(t *testing.T) {
	ctx := context.Background()
	got, finish := NoopTracer{}.StartSpan(ctx, "x", nil)
	assert.Equal(t, ctx, got)
	assert.NotPanics(t, func() { finish(nil) })
}

package adapters

import (
	"context"

	"github.com/ZanzyTHEbar/vragkit/vrag/ports"
)

// NoopTracer implements Tracer with no-op behavior for disabled tracing.
type NoopTracer struct{}

// StartSpan returns ctx unchanged and a finish func that does nothing.
func (NoopTracer) StartSpan(ctx context.Context, name string, attrs map[string]any) (context.Context, func(err error)) {
	return ctx, func(err error) {}
}

func (NoopTracer) Event(ctx context.Context, name string, attrs map[string]any) {}

var _ ports.Tracer = NoopTracer{}

package pipeline

import (
	"context"

	"github.com/ZanzyTHEbar/vragkit/vrag/limiter"
	"github.com/ZanzyTHEbar/vragkit/vrag/ports"
)

// Traced runs every call to fn inside a span named name.
func Traced[Req, Resp any](tracer ports.Tracer, name string, attrs map[string]any, fn limiter.Func[Req, Resp]) limiter.Func[Req, Resp] {
	return func(ctx context.Context, req Req) (Resp, error) {
		ctx, finish := tracer.StartSpan(ctx, name, attrs)
		resp, err := fn(ctx, req)
		finish(err)
		return resp, err
	}
}

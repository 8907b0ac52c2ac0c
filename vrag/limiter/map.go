package limiter

import (
	"context"

	"github.com/sourcegraph/conc/pool"
)

// Map calls fn once per input concurrently and returns the results in input
// order. Concurrency is left to fn, which is normally produced by Wrap, so a
// large batch still never exceeds the limiter bound.
//
// Every input is attempted; the returned error joins all failures and the
// result slots of failed inputs hold the zero value.
func Map[In, Out any](ctx context.Context, fn Func[In, Out], inputs []In) ([]Out, error) {
	results := make([]Out, len(inputs))
	if len(inputs) == 0 {
		return results, nil
	}

	p := pool.New().WithErrors().WithContext(ctx)
	for i, in := range inputs {
		p.Go(func(ctx context.Context) error {
			out, err := fn(ctx, in)
			if err != nil {
				return err
			}
			results[i] = out
			return nil
		})
	}

	return results, p.Wait()
}

package ports

import "context"

// RateLimiter bounds how many callers hold a slot for key at once.
type RateLimiter interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

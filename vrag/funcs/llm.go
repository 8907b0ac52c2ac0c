package funcs

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/ZanzyTHEbar/vragkit/vrag/config"
	"github.com/ZanzyTHEbar/vragkit/vrag/hashing"
	"github.com/ZanzyTHEbar/vragkit/vrag/ports"
	"github.com/ZanzyTHEbar/vragkit/vrag/textutil"
)

// LLMRequest is what a completion backend receives.
type LLMRequest struct {
	Prompt       string
	SystemPrompt string
	History      []textutil.Message
	Options      map[string]any

	GlobalConfig *config.Config
	HashingKV    ports.KVStore // optional response cache
}

// LLMFn produces a completion for req.
type LLMFn func(ctx context.Context, req LLMRequest) (string, error)

// Cache entry fields written by CachedLLM.
const (
	cacheFieldReturn = "return"
	cacheFieldModel  = "model"
)

// CachedLLM memoizes fn in req.HashingKV keyed by the args hash of model,
// system prompt, history and prompt. Requests without a HashingKV go straight
// to fn. A failed cache write is logged and the fresh response still returned.
func CachedLLM(fn LLMFn) LLMFn {
	return func(ctx context.Context, req LLMRequest) (string, error) {
		if req.HashingKV == nil {
			return fn(ctx, req)
		}

		model := ""
		if req.GlobalConfig != nil {
			model = req.GlobalConfig.LLM.ModelName
		}
		key := hashing.ComputeArgsHash(model, req.SystemPrompt, req.History, req.Prompt)
		logger := zerolog.Ctx(ctx)

		if cached, ok, err := req.HashingKV.GetByID(ctx, key); err != nil {
			logger.Warn().Err(err).Str("key", key).Msg("LLM cache lookup failed")
		} else if ok {
			if text, isString := cached[cacheFieldReturn].(string); isString {
				return text, nil
			}
		}

		resp, err := fn(ctx, req)
		if err != nil {
			return "", err
		}

		entry := map[string]map[string]any{
			key: {cacheFieldReturn: resp, cacheFieldModel: model},
		}
		if err := req.HashingKV.Upsert(ctx, entry); err != nil {
			logger.Warn().Err(err).Str("key", key).Msg("LLM cache write failed")
		}
		return resp, nil
	}
}

// RetryPolicy configures RetryLLM.
type RetryPolicy struct {
	Attempts        int           // total attempts including the first
	InitialInterval time.Duration // first backoff delay, grows exponentially
	IsRetryable     func(error) bool
}

// RetryLLM retries fn with exponential backoff. Context errors and errors
// rejected by IsRetryable are returned immediately.
func RetryLLM(fn LLMFn, policy RetryPolicy) LLMFn {
	if policy.Attempts <= 1 {
		return fn
	}

	return func(ctx context.Context, req LLMRequest) (string, error) {
		b := backoff.NewExponentialBackOff()
		if policy.InitialInterval > 0 {
			b.InitialInterval = policy.InitialInterval
		}
		bo := backoff.WithContext(backoff.WithMaxRetries(b, uint64(policy.Attempts-1)), ctx)

		var out string
		op := func() error {
			resp, err := fn(ctx, req)
			if err == nil {
				out = resp
				return nil
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return backoff.Permanent(err)
			}
			if policy.IsRetryable != nil && !policy.IsRetryable(err) {
				return backoff.Permanent(err)
			}
			return err
		}

		notify := func(err error, next time.Duration) {
			zerolog.Ctx(ctx).Debug().Err(err).Dur("backoff", next).Msg("Retrying LLM call")
		}

		if err := backoff.RetryNotify(op, bo, notify); err != nil {
			return "", err
		}
		return out, nil
	}
}

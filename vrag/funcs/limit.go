package funcs

import (
	"gonum.org/v1/gonum/mat"

	"github.com/ZanzyTHEbar/vragkit/vrag/limiter"
)

// LimitEmbedding bounds concurrent calls through w by l.
func LimitEmbedding(l *limiter.Limiter, w *EmbeddingWrapper) limiter.Func[[]string, *mat.Dense] {
	return limiter.Wrap[[]string, *mat.Dense](l, w.Call)
}

// LimitLLM bounds concurrent calls through w by l.
func LimitLLM(l *limiter.Limiter, w *LLMWrapper) limiter.Func[LLMRequest, string] {
	return limiter.Wrap[LLMRequest, string](l, w.Call)
}

package tokenizer

import "slices"

// TruncateListByTokenSize keeps the longest prefix of list whose cumulative
// token count, measured on key(item), stays within maxTokens. The item that
// first pushes the total over the budget and everything after it is dropped.
// A non-positive budget yields an empty result. A truncated result is a copy,
// so appending to it never writes into list.
func TruncateListByTokenSize[T any](tk Tokenizer, list []T, key func(T) string, maxTokens int) []T {
	if maxTokens <= 0 {
		return []T{}
	}

	total := 0
	for i, item := range list {
		total += Count(tk, key(item))
		if total > maxTokens {
			return slices.Clone(list[:i])
		}
	}
	return slices.Clip(list)
}

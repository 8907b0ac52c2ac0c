// Package hashing derives stable content ids and call-argument cache keys.
package hashing

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// ComputeMDHashID returns prefix followed by the md5 hex digest of content.
// It is used for chunk, entity and document ids, e.g. ComputeMDHashID(text, "chunk-").
func ComputeMDHashID(content, prefix string) string {
	sum := md5.Sum([]byte(content))
	return prefix + hex.EncodeToString(sum[:])
}

// ComputeArgsHash hashes the JSON encoding of args. Two calls with equal
// arguments in the same order map to the same key; strings keep their
// boundaries, so ("a b", "c") and ("a", "b c") differ.
func ComputeArgsHash(args ...any) string {
	data, err := json.Marshal(args)
	if err != nil {
		// unencodable values (funcs, channels) fall back to the Go-syntax form
		data = []byte(fmt.Sprintf("%#v", args))
	}
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}

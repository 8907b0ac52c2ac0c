// Package ports declares the small interfaces the call wrappers depend on:
// slot limiting, response caching and tracing.
package ports

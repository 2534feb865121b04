// Package kv provides non-SQL implementations of the history storage
// contract: an in-process map and a Redis-backed store.
package kv

// Package storage holds the ports.PersistentCache backends.
//
// The memory backend is process-local, the file backend keeps one JSON
// document on disk, and the sqlite backend stores entries in a kv table.
// All of them report misses as domain.ErrNotFound and I/O failures as
// domain.StorageError.
package storage

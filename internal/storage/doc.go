// Package storage provides key-value backends for the task store.
//
// Both backends satisfy todo.Storage:
//
//   - File keeps each key in its own file, <dir>/<key>.json, and replaces it
//     atomically on every write.
//   - Memory keeps blobs in a map and is used for tests and throwaway sessions.
//
// Keys are limited to ASCII letters, digits, '.', '_' and '-' so that a key
// always maps to a single file inside the data directory.
package storage

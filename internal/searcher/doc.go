// Package searcher resolves free-text queries into ranked chunk lists.
//
// Four modes are supported. Semantic ranks the project's embedded chunks
// by ascending cosine distance from a query vector, supplied by the caller
// or generated on the fly by the configured embedding provider. Text
// tokenizes the query, drops short tokens, and matches any token as a
// case-insensitive substring of chunk content, file path, or identifier,
// ordered by file position. Hybrid runs both legs bounded by the limit and
// merges them semantic-first with de-duplication. Auto picks semantic when
// the project has at least one embedded chunk and text otherwise.
//
// Degradation follows the embedding availability rules: an explicit
// semantic request without an obtainable vector is a configuration error,
// while auto and hybrid fall back to text search silently. The response
// reports the mode that actually executed.
//
// Responses are memoized in a TTL-bounded LRU cache keyed by the request;
// the cache is invalidated after every indexing run.
package searcher

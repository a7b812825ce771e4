// Package indexer drives the incremental indexing pipeline.
//
// IndexProject walks a repository root, chunks every recognized source
// file, and reconciles the results against the chunk store using content
// hashes. Chunks are identified by (project, file path, chunk type,
// identifier); a chunk whose stored hash matches the freshly computed one
// is left untouched, a mismatch updates the row and clears any stale
// embedding, and a missing row is created. After the walk, chunks whose
// keys were never visited are pruned, so deleted code disappears from the
// index on the next run.
//
// Chunk computation runs on a bounded worker pool while all store writes
// happen sequentially in walk order. Unreadable or non-UTF-8 files are
// skipped without failing the run; store errors abort it before the
// pruning phase so an interrupted run cannot delete still-live chunks.
//
// Embedding generation is best-effort. When the configured provider is
// unavailable the chunk is stored without a vector and text search remains
// fully functional; a later run with a working provider backfills vectors
// for any chunk whose content changes.
package indexer

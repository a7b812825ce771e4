// Package storage persists indexed chunks in SQLite and serves the three
// query strategies of the search layer.
//
// The ChunkStore interface is the persistence contract: chunk lookup by
// identity key, upsert, post-walk pruning of unvisited keys, embedding
// bookkeeping, and the filtered, sorted reads behind text and vector search.
// Every operation is scoped to a single project.
//
// # Chunk Identity and Pruning
//
// A chunk row is keyed by (project_id, file_path, chunk_type, identifier),
// enforced with a unique index. UpsertChunk writes the chunk's whole state
// against that key; DeleteUnvisited removes every project chunk whose key
// was not revisited by the most recent indexing pass.
//
// # Embeddings
//
// Embeddings live in a nullable BLOB column on the chunk row, serialized as
// little-endian float32. An upsert with a nil Embedding clears the stored
// vector, which keeps the invariant that a content change invalidates the
// chunk's embedding in the same write.
//
// # Build Modes
//
// Two SQLite drivers are supported via build tags:
//
//	CGO_ENABLED=0 go build ./...                    # modernc.org/sqlite (default)
//	CGO_ENABLED=1 go build -tags sqlite_vec ./...   # mattn/go-sqlite3 + sqlite-vec
//
// With sqlite_vec, cosine distance is computed in SQL; otherwise vector
// search falls back to a Go implementation over the project's embedded rows.
//
// # Migrations
//
// Schema changes are applied through ordered, semver-tagged migrations
// recorded in a schema_version table.
package storage

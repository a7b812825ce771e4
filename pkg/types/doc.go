// Package types provides shared type definitions for the repoctx indexing engine.
//
// This package defines the domain types used across components: code chunks,
// chunk identity keys, language tags, query modes, index statistics, and
// search results.
//
// # Core Types
//
// CodeChunk represents the indexed unit — a bounded slice of source text with
// a stable identity used for incremental change tracking:
//
//	chunk := &types.CodeChunk{
//	    FilePath:   "app/models/user.rb",
//	    ChunkType:  types.ChunkFunction,
//	    Identifier: "authenticate",
//	    Content:    body,
//	    Language:   types.LangRuby,
//	    StartLine:  14,
//	    EndLine:    22,
//	}
//	chunk.ComputeContentHash()
//
// # Chunk Identity
//
// Within a project, (FilePath, ChunkType, Identifier) uniquely identifies a
// chunk. The key is stable across indexing runs: a chunk is created the first
// time its key is observed, updated when the key recurs with different
// content, and pruned when a run completes without revisiting it.
//
//	key := chunk.Key() // types.ChunkKey, usable as a map key
//
// # Content Hashing
//
// Each chunk carries a SHA-256 hash of its content ([32]byte). The hash is
// the change detector for incremental indexing:
//
//	if storedHash == types.HashContent(newContent) {
//	    // Unchanged — no store write, embedding preserved
//	}
//
// # Query Modes
//
// QueryMode selects the ranking strategy: semantic (vector similarity), text
// (lexical substring matching), hybrid (semantic-first union of both), or
// auto (semantic when the project has embedded chunks, text otherwise).
//
// # Validation
//
// Domain types implement validation methods to ensure data integrity:
//
//	if err := chunk.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package types

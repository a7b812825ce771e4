// Package mcp exposes the indexing and search engine over the Model
// Context Protocol.
//
// The server speaks MCP on stdio and registers three tools:
//
//   - index_repository: walk a repository root, chunk its source files,
//     and reconcile them into the store incrementally. Returns the run's
//     stats (files scanned, chunks created/updated/unchanged/removed).
//   - search_code: query an indexed repository in semantic, text, hybrid,
//     or auto mode. Returns ranked results with file position and content.
//   - get_status: report whether a repository is indexed, plus chunk and
//     embedding counts.
//
// All three tools take an absolute repository path; search and status
// resolve it to the stored project record. Parameter problems map to
// JSON-RPC invalid-params, a missing index to ErrorCodeNotIndexed, and a
// concurrent run of the same project to ErrorCodeIndexingInProgress.
//
// Diagnostics go to stderr; stdout carries only protocol frames.
package mcp

// Package walker enumerates candidate source files under a repository root.
//
// A walk applies three filters: an extension allowlist, a file size ceiling,
// and a set of ignored relative-path prefixes (vendor/, node_modules/, .git/,
// and similar build artifacts by default). Unreadable files and directories
// are skipped rather than aborting the walk.
//
// The result is a finite slice of (absolute path, relative path) pairs with
// no hidden cursor state — repeating the walk restarts the enumeration.
package walker

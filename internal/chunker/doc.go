// Package chunker divides source files into chunks at heuristic construct
// boundaries for indexing and search.
//
// The chunker is not a parser. Boundaries are found with definition-keyword
// regular expressions anchored at line start, and construct ends are
// determined by one of three interchangeable strategies selected per
// language family (see the language package):
//
//   - Indentation (Python): the construct ends before the first subsequent
//     non-blank line indented at or below the definition line.
//   - End keyword (Ruby): the construct ends at the first line indented at
//     or below the definition line that matches "end". The scan is bounded;
//     malformed nesting caps the chunk at a fixed line offset.
//   - Brace depth (Go, JavaScript, and other brace languages): the construct
//     ends where the running open-minus-close brace count returns to zero
//     after having gone positive, with the same line-offset cap.
//
// # Fallback Behavior
//
// Files in unrecognized languages, and files where no strategy boundary
// survived the size ceiling, become either a single whole-file chunk (when
// the content fits) or a sequence of fixed line-accurate windows labeled
// part_1, part_2, ... Window chunks partition the file exactly: concatenated
// in order they reproduce the original content with no overlap and no gap.
//
// # Determinism
//
// Chunk identifiers are persistence keys, so identical input always produces
// identical boundaries and identifiers. Candidates larger than the size
// ceiling are discarded whole rather than truncated mid-construct.
//
// # Basic Usage
//
//	c := chunker.New()
//	chunks := c.Chunk(content, types.LangRuby, "app/models/user.rb")
//
//	for _, chunk := range chunks {
//	    chunk.ComputeContentHash()
//	}
package chunker

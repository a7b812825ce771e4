package chunker

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/repoctx/repoctx/internal/language"
	"github.com/repoctx/repoctx/pkg/types"
)

const (
	// DefaultMaxChunkSize is the maximum byte size of a chunk's content
	DefaultMaxChunkSize = 4096

	// DefaultScanWindow caps the end-of-construct scan, in lines past the
	// definition line. Prevents unbounded scans on malformed nesting.
	DefaultScanWindow = 300
)

// Config contains configuration for the chunker
type Config struct {
	MaxChunkSize int // Maximum chunk content size in bytes (default 4096)
	ScanWindow   int // Line-offset cap for end detection (default 300)
}

// Chunker divides source files into chunks at heuristic construct boundaries
type Chunker struct {
	maxChunkSize int
	scanWindow   int
}

// New creates a Chunker with default configuration
func New() *Chunker {
	return NewWithConfig(Config{})
}

// NewWithConfig creates a Chunker with explicit configuration
func NewWithConfig(cfg Config) *Chunker {
	if cfg.MaxChunkSize <= 0 {
		cfg.MaxChunkSize = DefaultMaxChunkSize
	}
	if cfg.ScanWindow <= 0 {
		cfg.ScanWindow = DefaultScanWindow
	}
	return &Chunker{
		maxChunkSize: cfg.MaxChunkSize,
		scanWindow:   cfg.ScanWindow,
	}
}

// MaxChunkSize returns the configured chunk size ceiling
func (c *Chunker) MaxChunkSize() int {
	return c.maxChunkSize
}

// Chunk divides file content into chunk candidates. The same input always
// produces the same boundaries and identifiers: identifiers are persistence
// keys, so extraction must be deterministic.
//
// Resolution order:
//  1. The language's boundary-detection strategy, keeping candidates whose
//     content fits the size ceiling. Oversized candidates are discarded
//     rather than truncated mid-construct.
//  2. One whole-file chunk when no strategy applies or no candidate
//     survived, if the content fits the ceiling.
//  3. Fixed-window part chunks for everything else.
func (c *Chunker) Chunk(content string, lang types.Language, relPath string) []*types.CodeChunk {
	if content == "" {
		return nil
	}

	if candidates := c.extract(content, lang, relPath); len(candidates) > 0 {
		return candidates
	}

	if len(content) <= c.maxChunkSize {
		return []*types.CodeChunk{c.wholeFileChunk(content, lang, relPath)}
	}

	return c.windowChunks(content, lang, relPath)
}

// extract runs the language's boundary strategy and drops oversized candidates
func (c *Chunker) extract(content string, lang types.Language, relPath string) []*types.CodeChunk {
	var raw []candidate
	switch language.StrategyFor(lang) {
	case language.StrategyIndentation:
		raw = c.extractByIndentation(content, lang)
	case language.StrategyEndKeyword:
		raw = c.extractByEndKeyword(content, lang)
	case language.StrategyBraceDepth:
		raw = c.extractByBraceDepth(content, lang)
	default:
		return nil
	}

	chunks := make([]*types.CodeChunk, 0, len(raw))
	for _, cand := range raw {
		if len(cand.content) > c.maxChunkSize {
			continue
		}
		chunks = append(chunks, &types.CodeChunk{
			FilePath:   relPath,
			ChunkType:  cand.chunkType,
			Identifier: cand.identifier,
			Content:    cand.content,
			Language:   lang,
			StartLine:  cand.startLine,
			EndLine:    cand.endLine,
		})
	}
	return chunks
}

// wholeFileChunk emits a single chunk covering the entire file
func (c *Chunker) wholeFileChunk(content string, lang types.Language, relPath string) *types.CodeChunk {
	if len(content) > c.maxChunkSize {
		content = content[:c.maxChunkSize]
	}
	return &types.CodeChunk{
		FilePath:   relPath,
		ChunkType:  types.ChunkFile,
		Identifier: filepath.Base(relPath),
		Content:    content,
		Language:   lang,
		StartLine:  1,
		EndLine:    countLines(content),
	}
}

// windowChunks splits content into sequential, non-overlapping, line-accurate
// windows. Concatenating the windows in order reproduces the original content
// exactly. A single line larger than the ceiling becomes its own window: the
// split is line-accurate, so such a line cannot be divided further.
func (c *Chunker) windowChunks(content string, lang types.Language, relPath string) []*types.CodeChunk {
	segments := strings.SplitAfter(content, "\n")
	// SplitAfter leaves a trailing empty segment when content ends in "\n"
	if len(segments) > 0 && segments[len(segments)-1] == "" {
		segments = segments[:len(segments)-1]
	}

	var chunks []*types.CodeChunk
	var window strings.Builder
	startLine := 1
	line := 0

	flush := func(endLine int) {
		if window.Len() == 0 {
			return
		}
		part := len(chunks) + 1
		chunks = append(chunks, &types.CodeChunk{
			FilePath:   relPath,
			ChunkType:  types.ChunkPart,
			Identifier: partIdentifier(part),
			Content:    window.String(),
			Language:   lang,
			StartLine:  startLine,
			EndLine:    endLine,
		})
		window.Reset()
		startLine = endLine + 1
	}

	for _, seg := range segments {
		if window.Len() > 0 && window.Len()+len(seg) > c.maxChunkSize {
			flush(line)
		}
		window.WriteString(seg)
		line++
	}
	flush(line)

	return chunks
}

// candidate is a chunk boundary found by a strategy, before size filtering
type candidate struct {
	chunkType  types.ChunkType
	identifier string
	content    string
	startLine  int // 1-based, inclusive
	endLine    int // 1-based, inclusive
}

// partIdentifier labels sequential window chunks: part_1, part_2, ...
func partIdentifier(n int) string {
	return "part_" + strconv.Itoa(n)
}

// countLines counts 1-based lines the way the chunk strategies do: a
// trailing newline does not start a new line
func countLines(content string) int {
	if content == "" {
		return 0
	}
	n := strings.Count(content, "\n")
	if !strings.HasSuffix(content, "\n") {
		n++
	}
	return n
}

package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repoctx/repoctx/pkg/types"
)

func TestChunkRubyEndKeyword(t *testing.T) {
	content := `class User
  def authenticate(password)
    check(password)
  end
end`

	c := New()
	chunks := c.Chunk(content, types.LangRuby, "app/models/user.rb")
	require.Len(t, chunks, 2)

	class := chunks[0]
	assert.Equal(t, types.ChunkClass, class.ChunkType)
	assert.Equal(t, "User", class.Identifier)
	assert.Equal(t, 1, class.StartLine)
	assert.Equal(t, 5, class.EndLine)
	assert.Equal(t, content, class.Content)

	fn := chunks[1]
	assert.Equal(t, types.ChunkFunction, fn.ChunkType)
	assert.Equal(t, "authenticate", fn.Identifier)
	assert.Equal(t, 2, fn.StartLine)
	assert.Equal(t, 4, fn.EndLine)
	assert.True(t, strings.HasSuffix(fn.Content, "end"))
	assert.Contains(t, fn.Content, "check(password)")
}

func TestChunkRubyModule(t *testing.T) {
	content := `module Billing
  def self.charge(amount)
    amount
  end
end`

	chunks := New().Chunk(content, types.LangRuby, "lib/billing.rb")
	require.NotEmpty(t, chunks)
	assert.Equal(t, types.ChunkModule, chunks[0].ChunkType)
	assert.Equal(t, "Billing", chunks[0].Identifier)
}

func TestChunkRubyPredicateMethod(t *testing.T) {
	content := `def valid?
  true
end`

	chunks := New().Chunk(content, types.LangRuby, "lib/check.rb")
	require.Len(t, chunks, 1)
	assert.Equal(t, "valid?", chunks[0].Identifier)
}

func TestChunkRubyUnterminatedCapsAtScanWindow(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("def runaway\n")
	for i := 0; i < 500; i++ {
		sb.WriteString("  x = 1\n")
	}
	// No closing end anywhere

	c := NewWithConfig(Config{MaxChunkSize: 1 << 20, ScanWindow: 100})
	chunks := c.Chunk(sb.String(), types.LangRuby, "lib/runaway.rb")
	require.Len(t, chunks, 1)
	assert.Equal(t, 1, chunks[0].StartLine)
	assert.Equal(t, 101, chunks[0].EndLine)
}

func TestChunkPythonIndentation(t *testing.T) {
	content := `def helper():
    return 1

class Parser:
    def parse(self):
        return 2
`

	chunks := New().Chunk(content, types.LangPython, "lib/parser.py")
	require.Len(t, chunks, 3)

	helper := chunks[0]
	assert.Equal(t, types.ChunkFunction, helper.ChunkType)
	assert.Equal(t, "helper", helper.Identifier)
	assert.Equal(t, 1, helper.StartLine)
	assert.NotContains(t, helper.Content, "class Parser")

	parser := chunks[1]
	assert.Equal(t, types.ChunkClass, parser.ChunkType)
	assert.Equal(t, "Parser", parser.Identifier)
	assert.Equal(t, 4, parser.StartLine)
	assert.Contains(t, parser.Content, "def parse")

	parse := chunks[2]
	assert.Equal(t, types.ChunkFunction, parse.ChunkType)
	assert.Equal(t, "parse", parse.Identifier)
	assert.Equal(t, 5, parse.StartLine)
}

func TestChunkPythonRunsToEOF(t *testing.T) {
	content := `def tail():
    a = 1
    return a`

	chunks := New().Chunk(content, types.LangPython, "lib/tail.py")
	require.Len(t, chunks, 1)
	assert.Equal(t, 1, chunks[0].StartLine)
	assert.Equal(t, 3, chunks[0].EndLine)
	assert.Equal(t, content, chunks[0].Content)
}

func TestChunkPythonRunsToEOFWithTrailingNewline(t *testing.T) {
	// The trailing newline ends line 3; it does not start a fourth line
	content := "def tail():\n    a = 1\n    return a\n"

	chunks := New().Chunk(content, types.LangPython, "lib/tail.py")
	require.Len(t, chunks, 1)
	assert.Equal(t, 1, chunks[0].StartLine)
	assert.Equal(t, 3, chunks[0].EndLine)
}

func TestChunkPythonLineRangesWithinFile(t *testing.T) {
	content := `def helper():
    return 1

class Parser:
    def parse(self):
        return 2
`

	chunks := New().Chunk(content, types.LangPython, "lib/parser.py")
	require.Len(t, chunks, 3)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, chunk.EndLine, 6, "%s", chunk.Identifier)
	}
}

func TestChunkRubyUnterminatedNearEOF(t *testing.T) {
	content := "def open_ended\n  x = 1\n"

	chunks := New().Chunk(content, types.LangRuby, "lib/open.rb")
	require.Len(t, chunks, 1)
	assert.Equal(t, 1, chunks[0].StartLine)
	assert.Equal(t, 2, chunks[0].EndLine)
}

func TestChunkGoBraceDepth(t *testing.T) {
	content := `package main

func Add(a, b int) int {
	return a + b
}

type Server struct {
	Addr string
}
`

	chunks := New().Chunk(content, types.LangGo, "internal/server/server.go")
	require.Len(t, chunks, 2)

	add := chunks[0]
	assert.Equal(t, types.ChunkFunction, add.ChunkType)
	assert.Equal(t, "Add", add.Identifier)
	assert.Equal(t, 3, add.StartLine)
	assert.Equal(t, 5, add.EndLine)

	srv := chunks[1]
	assert.Equal(t, types.ChunkClass, srv.ChunkType)
	assert.Equal(t, "Server", srv.Identifier)
	assert.Equal(t, 7, srv.StartLine)
	assert.Equal(t, 9, srv.EndLine)
}

func TestChunkGoMethodReceiver(t *testing.T) {
	content := `func (s *Server) Start() error {
	return nil
}`

	chunks := New().Chunk(content, types.LangGo, "server.go")
	require.Len(t, chunks, 1)
	assert.Equal(t, "Start", chunks[0].Identifier)
	assert.Equal(t, types.ChunkFunction, chunks[0].ChunkType)
}

func TestChunkGoOneLiner(t *testing.T) {
	content := `func ID() int { return 1 }`

	chunks := New().Chunk(content, types.LangGo, "id.go")
	require.Len(t, chunks, 1)
	assert.Equal(t, 1, chunks[0].StartLine)
	assert.Equal(t, 1, chunks[0].EndLine)
}

func TestChunkJavaScriptFunction(t *testing.T) {
	content := `export async function fetchUser(id) {
  return api.get(id);
}

class Store {
  get(key) { return this.data[key]; }
}
`

	chunks := New().Chunk(content, types.LangJavaScript, "src/store.js")
	require.Len(t, chunks, 2)
	assert.Equal(t, "fetchUser", chunks[0].Identifier)
	assert.Equal(t, types.ChunkFunction, chunks[0].ChunkType)
	assert.Equal(t, "Store", chunks[1].Identifier)
	assert.Equal(t, types.ChunkClass, chunks[1].ChunkType)
}

func TestChunkWholeFileWhenNoStrategy(t *testing.T) {
	content := "some: yaml\nvalues: here\n"

	chunks := New().Chunk(content, types.LangUnknown, "config/app.yaml")
	require.Len(t, chunks, 1)

	file := chunks[0]
	assert.Equal(t, types.ChunkFile, file.ChunkType)
	assert.Equal(t, "app.yaml", file.Identifier)
	assert.Equal(t, content, file.Content)
	assert.Equal(t, 1, file.StartLine)
	assert.Equal(t, 2, file.EndLine)
}

func TestChunkWholeFileWhenNoCandidates(t *testing.T) {
	// C has no definition patterns; small files become one file chunk
	content := "#include <stdio.h>\nint x;\n"

	chunks := New().Chunk(content, types.LangC, "src/globals.c")
	require.Len(t, chunks, 1)
	assert.Equal(t, types.ChunkFile, chunks[0].ChunkType)
	assert.Equal(t, "globals.c", chunks[0].Identifier)
}

func TestChunkWindowPartitionProperty(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 40; i++ {
		sb.WriteString("line with some padding text to fill the window\n")
	}
	content := sb.String()

	c := NewWithConfig(Config{MaxChunkSize: 256})
	chunks := c.Chunk(content, types.LangUnknown, "data/big.txt")
	require.Greater(t, len(chunks), 1)

	var rebuilt strings.Builder
	prevEnd := 0
	for i, chunk := range chunks {
		assert.Equal(t, types.ChunkPart, chunk.ChunkType)
		assert.Equal(t, partIdentifier(i+1), chunk.Identifier)
		assert.Equal(t, prevEnd+1, chunk.StartLine, "windows must be contiguous")
		assert.LessOrEqual(t, len(chunk.Content), 256)
		prevEnd = chunk.EndLine
		rebuilt.WriteString(chunk.Content)
	}

	assert.Equal(t, content, rebuilt.String(), "windows must concatenate to the original content")
}

func TestChunkWindowOversizedLine(t *testing.T) {
	// A single line larger than the ceiling becomes its own window
	long := strings.Repeat("x", 600)
	content := "short\n" + long + "\nshort again\n"

	c := NewWithConfig(Config{MaxChunkSize: 100})
	chunks := c.Chunk(content, types.LangUnknown, "data/minified.txt")
	require.NotEmpty(t, chunks)

	var rebuilt strings.Builder
	for _, chunk := range chunks {
		rebuilt.WriteString(chunk.Content)
	}
	assert.Equal(t, content, rebuilt.String())
}

func TestChunkOversizedCandidateDiscarded(t *testing.T) {
	var body strings.Builder
	body.WriteString("def huge\n")
	for i := 0; i < 30; i++ {
		body.WriteString("  line = 'padding padding padding'\n")
	}
	body.WriteString("end\n")
	content := body.String()

	c := NewWithConfig(Config{MaxChunkSize: 64})
	chunks := c.Chunk(content, types.LangRuby, "lib/huge.rb")
	require.NotEmpty(t, chunks)

	// The oversized def is dropped, never truncated mid-construct; the file
	// still gets indexed through window chunks
	for _, chunk := range chunks {
		assert.Equal(t, types.ChunkPart, chunk.ChunkType)
	}
}

func TestChunkDeterministic(t *testing.T) {
	content := `class Order
  def total
    items.sum
  end

  def empty?
    items.none?
  end
end`

	c := New()
	first := c.Chunk(content, types.LangRuby, "app/models/order.rb")
	second := c.Chunk(content, types.LangRuby, "app/models/order.rb")
	require.Equal(t, len(first), len(second))

	for i := range first {
		assert.Equal(t, first[i].Identifier, second[i].Identifier)
		assert.Equal(t, first[i].Content, second[i].Content)
		assert.Equal(t, first[i].StartLine, second[i].StartLine)
		assert.Equal(t, first[i].EndLine, second[i].EndLine)
	}
}

func TestChunkEmptyContent(t *testing.T) {
	assert.Empty(t, New().Chunk("", types.LangRuby, "empty.rb"))
}

package chunker

import (
	"regexp"
	"strings"

	"github.com/repoctx/repoctx/pkg/types"
)

// Strategy regexes. Definition keywords are anchored at line start; leading
// whitespace is captured where the language nests definitions.
var (
	indentDefRe = regexp.MustCompile(`^([ \t]*)(def|class)\s+([A-Za-z_][A-Za-z0-9_]*)`)

	rubyDefRe = regexp.MustCompile(`^([ \t]*)(def|class|module)\s+([A-Za-z_][A-Za-z0-9_.!?=]*)`)
	rubyEndRe = regexp.MustCompile(`^[ \t]*end\b`)
)

// splitLines splits content into its real lines. A trailing newline ends the
// last line rather than starting an empty one, so line indices stay within
// the file's actual line count.
func splitLines(content string) []string {
	lines := strings.Split(content, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}

// defPattern binds a definition-keyword regex to the chunk type it yields.
// Group 1 of each regex captures the construct name.
type defPattern struct {
	re        *regexp.Regexp
	chunkType types.ChunkType
}

// braceDefPatterns holds the definition patterns for brace-delimited
// languages. Languages listed with class patterns only (Java, C#) still get
// useful class-level chunks; C has no reliable line-start definition pattern
// and falls through to whole-file or window chunking.
var braceDefPatterns = map[types.Language][]defPattern{
	types.LangGo: {
		{regexp.MustCompile(`^func\s+(?:\([^)]+\)\s+)?([A-Za-z_][A-Za-z0-9_]*)`), types.ChunkFunction},
		{regexp.MustCompile(`^type\s+([A-Za-z_][A-Za-z0-9_]*)\s+(?:struct|interface)\b`), types.ChunkClass},
	},
	types.LangJavaScript: {
		{regexp.MustCompile(`^[ \t]*(?:export\s+)?(?:default\s+)?(?:async\s+)?function\s*\*?\s*([A-Za-z_$][A-Za-z0-9_$]*)`), types.ChunkFunction},
		{regexp.MustCompile(`^[ \t]*(?:export\s+)?(?:default\s+)?class\s+([A-Za-z_$][A-Za-z0-9_$]*)`), types.ChunkClass},
	},
	types.LangTypeScript: {
		{regexp.MustCompile(`^[ \t]*(?:export\s+)?(?:default\s+)?(?:async\s+)?function\s*\*?\s*([A-Za-z_$][A-Za-z0-9_$]*)`), types.ChunkFunction},
		{regexp.MustCompile(`^[ \t]*(?:export\s+)?(?:default\s+)?(?:abstract\s+)?class\s+([A-Za-z_$][A-Za-z0-9_$]*)`), types.ChunkClass},
	},
	types.LangJava: {
		{regexp.MustCompile(`^[ \t]*(?:(?:public|private|protected|static|final|abstract)\s+)*(?:class|interface|enum)\s+([A-Za-z_][A-Za-z0-9_]*)`), types.ChunkClass},
	},
	types.LangCSharp: {
		{regexp.MustCompile(`^[ \t]*(?:(?:public|private|protected|internal|static|sealed|abstract|partial)\s+)*(?:class|interface|struct|record)\s+([A-Za-z_][A-Za-z0-9_]*)`), types.ChunkClass},
	},
	types.LangCPP: {
		{regexp.MustCompile(`^[ \t]*(?:class|struct)\s+([A-Za-z_][A-Za-z0-9_]*)`), types.ChunkClass},
	},
	types.LangRust: {
		{regexp.MustCompile(`^[ \t]*(?:pub(?:\([^)]*\))?\s+)?(?:async\s+)?fn\s+([A-Za-z_][A-Za-z0-9_]*)`), types.ChunkFunction},
		{regexp.MustCompile(`^[ \t]*(?:pub(?:\([^)]*\))?\s+)?(?:struct|enum|trait)\s+([A-Za-z_][A-Za-z0-9_]*)`), types.ChunkClass},
	},
	types.LangPHP: {
		{regexp.MustCompile(`^[ \t]*(?:(?:public|private|protected|static|final|abstract)\s+)*function\s+&?([A-Za-z_][A-Za-z0-9_]*)`), types.ChunkFunction},
		{regexp.MustCompile(`^[ \t]*(?:(?:final|abstract)\s+)?class\s+([A-Za-z_][A-Za-z0-9_]*)`), types.ChunkClass},
	},
	types.LangSwift: {
		{regexp.MustCompile(`^[ \t]*(?:(?:public|private|internal|open|static|override)\s+)*func\s+([A-Za-z_][A-Za-z0-9_]*)`), types.ChunkFunction},
		{regexp.MustCompile(`^[ \t]*(?:(?:public|private|internal|open|final)\s+)*(?:class|struct|enum)\s+([A-Za-z_][A-Za-z0-9_]*)`), types.ChunkClass},
	},
	types.LangKotlin: {
		{regexp.MustCompile(`^[ \t]*(?:(?:public|private|internal|open|override|suspend|inline)\s+)*fun\s+([A-Za-z_][A-Za-z0-9_]*)`), types.ChunkFunction},
		{regexp.MustCompile(`^[ \t]*(?:(?:public|private|internal|open|abstract|data|sealed)\s+)*class\s+([A-Za-z_][A-Za-z0-9_]*)`), types.ChunkClass},
	},
	types.LangScala: {
		{regexp.MustCompile(`^[ \t]*(?:(?:private|protected|override|final)\s+)*def\s+([A-Za-z_][A-Za-z0-9_]*)`), types.ChunkFunction},
		{regexp.MustCompile(`^[ \t]*(?:case\s+)?(?:class|object|trait)\s+([A-Za-z_][A-Za-z0-9_]*)`), types.ChunkClass},
	},
}

// chunkTypeForKeyword maps a matched definition keyword to its chunk type
func chunkTypeForKeyword(keyword string) types.ChunkType {
	switch keyword {
	case "def":
		return types.ChunkFunction
	case "class":
		return types.ChunkClass
	case "module":
		return types.ChunkModule
	default:
		return types.ChunkFunction
	}
}

// extractByIndentation finds definitions in indentation-delimited languages.
// A chunk ends exclusively at the first subsequent non-blank line whose
// indentation is at or below the definition line's; absent such a line the
// chunk runs to end of file.
func (c *Chunker) extractByIndentation(content string, lang types.Language) []candidate {
	lines := splitLines(content)
	var out []candidate

	for i, line := range lines {
		m := indentDefRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		indent := len(m[1])

		end := len(lines) // exclusive
		for j := i + 1; j < len(lines); j++ {
			if strings.TrimSpace(lines[j]) == "" {
				continue
			}
			if indentWidth(lines[j]) <= indent {
				end = j
				break
			}
		}

		out = append(out, candidate{
			chunkType:  chunkTypeForKeyword(m[2]),
			identifier: m[3],
			content:    strings.Join(lines[i:end], "\n"),
			startLine:  i + 1,
			endLine:    end,
		})
	}

	return out
}

// extractByEndKeyword finds definitions in end-delimited languages (Ruby).
// A chunk ends inclusively at the first line whose indentation is at or
// below the definition line's and which matches the closing keyword. The
// scan is bounded: past the scan window the end is capped at a fixed line
// offset from the start.
func (c *Chunker) extractByEndKeyword(content string, lang types.Language) []candidate {
	lines := splitLines(content)
	var out []candidate

	for i, line := range lines {
		m := rubyDefRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		indent := len(m[1])

		limit := i + c.scanWindow
		if limit > len(lines)-1 {
			limit = len(lines) - 1
		}

		end := limit // inclusive cap when no closing keyword is found
		for j := i + 1; j <= limit; j++ {
			if indentWidth(lines[j]) <= indent && rubyEndRe.MatchString(lines[j]) {
				end = j
				break
			}
		}

		out = append(out, candidate{
			chunkType:  chunkTypeForKeyword(m[2]),
			identifier: m[3],
			content:    strings.Join(lines[i:end+1], "\n"),
			startLine:  i + 1,
			endLine:    end + 1,
		})
	}

	return out
}

// extractByBraceDepth finds definitions in brace-delimited languages. Depth
// counting starts at the definition line; the chunk ends at the first line
// where the cumulative open-minus-close count returns to zero after having
// gone positive, capped at the scan window otherwise. Braces inside strings
// and comments are counted too: this is a heuristic, not a parser.
func (c *Chunker) extractByBraceDepth(content string, lang types.Language) []candidate {
	patterns := braceDefPatterns[lang]
	if len(patterns) == 0 {
		return nil
	}

	lines := splitLines(content)
	var out []candidate

	for i, line := range lines {
		for _, p := range patterns {
			m := p.re.FindStringSubmatch(line)
			if m == nil {
				continue
			}

			limit := i + c.scanWindow
			if limit > len(lines)-1 {
				limit = len(lines) - 1
			}

			end := limit
			depth := 0
			wentPositive := false
			for j := i; j <= limit; j++ {
				opens := strings.Count(lines[j], "{")
				closes := strings.Count(lines[j], "}")
				if depth+opens > 0 {
					wentPositive = true
				}
				depth += opens - closes
				if wentPositive && depth <= 0 {
					end = j
					break
				}
			}

			out = append(out, candidate{
				chunkType:  p.chunkType,
				identifier: m[1],
				content:    strings.Join(lines[i:end+1], "\n"),
				startLine:  i + 1,
				endLine:    end + 1,
			})
			break // first matching pattern wins for this line
		}
	}

	return out
}

// indentWidth is the length of the leading whitespace run. Tabs and spaces
// each count as one; mixing them within one file defeats the heuristic, as
// it does in the languages themselves.
func indentWidth(line string) int {
	for i, r := range line {
		if r != ' ' && r != '\t' {
			return i
		}
	}
	return len(line)
}

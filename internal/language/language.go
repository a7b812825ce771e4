package language

import (
	"path/filepath"
	"strings"

	"github.com/repoctx/repoctx/pkg/types"
)

// Strategy identifies the boundary-detection algorithm used to chunk a
// language family
type Strategy string

const (
	StrategyIndentation Strategy = "indentation" // Python-style blocks
	StrategyEndKeyword  Strategy = "end_keyword" // Ruby-style def/end blocks
	StrategyBraceDepth  Strategy = "brace_depth" // C-family brace matching
	StrategyFixedWindow Strategy = "fixed_window" // Sequential line windows
)

// byExtension maps a lowercased file extension (without dot) to a language
// tag. Unrecognized extensions classify as LangUnknown and remain eligible
// for whole-file and window chunking.
var byExtension = map[string]types.Language{
	"rb":    types.LangRuby,
	"rake":  types.LangRuby,
	"erb":   types.LangRuby,
	"py":    types.LangPython,
	"go":    types.LangGo,
	"js":    types.LangJavaScript,
	"jsx":   types.LangJavaScript,
	"ts":    types.LangTypeScript,
	"tsx":   types.LangTypeScript,
	"java":  types.LangJava,
	"c":     types.LangC,
	"h":     types.LangC,
	"cc":    types.LangCPP,
	"cpp":   types.LangCPP,
	"hpp":   types.LangCPP,
	"cs":    types.LangCSharp,
	"rs":    types.LangRust,
	"php":   types.LangPHP,
	"swift": types.LangSwift,
	"kt":    types.LangKotlin,
	"scala": types.LangScala,
}

// byLanguage is the strategy lookup table. Adding a language is an additive
// change: register its extension above and its family here.
var byLanguage = map[types.Language]Strategy{
	types.LangRuby:       StrategyEndKeyword,
	types.LangPython:     StrategyIndentation,
	types.LangGo:         StrategyBraceDepth,
	types.LangJavaScript: StrategyBraceDepth,
	types.LangTypeScript: StrategyBraceDepth,
	types.LangJava:       StrategyBraceDepth,
	types.LangC:          StrategyBraceDepth,
	types.LangCPP:        StrategyBraceDepth,
	types.LangCSharp:     StrategyBraceDepth,
	types.LangRust:       StrategyBraceDepth,
	types.LangPHP:        StrategyBraceDepth,
	types.LangSwift:      StrategyBraceDepth,
	types.LangKotlin:     StrategyBraceDepth,
	types.LangScala:      StrategyBraceDepth,
}

// Classify maps a file path to a language tag based on its extension.
// Pure and total: unrecognized extensions map to LangUnknown.
func Classify(relPath string) types.Language {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(relPath), "."))
	if lang, ok := byExtension[ext]; ok {
		return lang
	}
	return types.LangUnknown
}

// StrategyFor returns the boundary-detection strategy for a language.
// Languages without a dedicated strategy fall back to fixed windows.
func StrategyFor(lang types.Language) Strategy {
	if s, ok := byLanguage[lang]; ok {
		return s
	}
	return StrategyFixedWindow
}

// Extensions returns the set of all classifiable extensions (without dot)
func Extensions() map[string]bool {
	exts := make(map[string]bool, len(byExtension))
	for ext := range byExtension {
		exts[ext] = true
	}
	return exts
}

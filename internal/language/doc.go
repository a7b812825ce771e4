// Package language classifies source files by extension and selects the
// chunking strategy for each language family.
//
// Classification is a pure, total function over the lowercased file
// extension; unrecognized extensions map to types.LangUnknown and are still
// indexed via whole-file or fixed-window chunking.
//
// Strategies are selected through a lookup table rather than a conditional
// chain, so supporting a new language means adding two table entries:
//
//	byExtension["ex"] = types.LangElixir
//	byLanguage[types.LangElixir] = StrategyEndKeyword
package language

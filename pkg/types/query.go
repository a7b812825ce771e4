package types

// QueryMode selects the ranking strategy for a search
type QueryMode string

const (
	QuerySemantic QueryMode = "semantic" // Vector similarity only
	QueryText     QueryMode = "text"     // Lexical substring matching only
	QueryHybrid   QueryMode = "hybrid"   // Semantic results first, text results appended
	QueryAuto     QueryMode = "auto"     // Semantic if the project has embeddings, else text
)

// Valid reports whether the mode is one of the supported values
func (m QueryMode) Valid() bool {
	switch m {
	case QuerySemantic, QueryText, QueryHybrid, QueryAuto:
		return true
	default:
		return false
	}
}

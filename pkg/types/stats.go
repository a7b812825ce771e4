package types

// IndexStats summarizes a single indexing run. It is transient: returned to
// the caller once per invocation and never persisted.
type IndexStats struct {
	FilesScanned    int
	ChunksCreated   int
	ChunksUpdated   int
	ChunksUnchanged int
	ChunksRemoved   int
}

// Total returns the number of chunk candidates observed during the run
func (s *IndexStats) Total() int {
	return s.ChunksCreated + s.ChunksUpdated + s.ChunksUnchanged
}

package processing

import "time"

// Chunk is one indexed span of a source document.
type Chunk struct {
	Source  string
	Index   int
	Content string
}

type Metadata struct {
	Path       string
	Source     string // path relative to the documents directory, reported as the answer source
	ImportedAt time.Time
	Chunks     int
}

package db

// KNNQuery is the input for vector similarity search.
// Owner (when set) becomes a TAG pre-filter so one library never sees
// another's scenes.
type KNNQuery struct {
	IndexName    string
	Owner        string
	Vector       []float32
	K            int
	ReturnFields []string
}

// TextQuery is the input for BM25 text search.
type TextQuery struct {
	IndexName    string
	Owner        string
	Query        string
	TopK         int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}

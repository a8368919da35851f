package streamquery

// SearchResult is one retrieved passage as streamed in a search_results
// message. Fields are extracted best-effort; absent fields are zero.
type SearchResult struct {
	Text             string
	Score            float64
	PartMetadata     map[string]any
	DocumentMetadata map[string]any
	DocumentID       string
}

// Snippet splits a matched passage into the text around the match.
type Snippet struct {
	Pre  string
	Text string
	Post string
}

// String returns the passage with the context rejoined.
func (s Snippet) String() string {
	return s.Pre + s.Text + s.Post
}

// DefaultTitle is used when a document has no title metadata.
const DefaultTitle = "Untitled"

// Result is one deserialized search hit joined with its document.
type Result struct {
	ID       string
	Snippet  Snippet
	Source   string // empty when the document has no source metadata
	URL      string // empty when the document has no url metadata
	Title    string
	Metadata map[string]string
}

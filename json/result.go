package json

import (
	"encoding/json"

	"github.com/fwojciec/streamquery"
)

type resultDTO struct {
	ID       string            `json:"id"`
	Snippet  snippetDTO        `json:"snippet"`
	Source   string            `json:"source,omitempty"`
	URL      string            `json:"url,omitempty"`
	Title    string            `json:"title"`
	Metadata map[string]string `json:"metadata"`
}

type snippetDTO struct {
	Pre  string `json:"pre"`
	Text string `json:"text"`
	Post string `json:"post"`
}

// MarshalResults serializes deserialized search results as an indented JSON
// array. Nil results encode as null.
func MarshalResults(results []streamquery.Result) ([]byte, error) {
	if results == nil {
		return []byte("null"), nil
	}
	dtos := make([]resultDTO, len(results))
	for i, r := range results {
		dtos[i] = resultDTO{
			ID:       r.ID,
			Snippet:  snippetDTO{Pre: r.Snippet.Pre, Text: r.Snippet.Text, Post: r.Snippet.Post},
			Source:   r.Source,
			URL:      r.URL,
			Title:    r.Title,
			Metadata: r.Metadata,
		}
	}
	return json.MarshalIndent(dtos, "", "  ")
}

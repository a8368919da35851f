package vectara

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fwojciec/streamquery"
)

// UnmarshalSearchResponse decodes a complete query response. JSON null
// yields a nil response.
func UnmarshalSearchResponse(data []byte) (*SearchResponse, error) {
	var resp *SearchResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("vectara: unmarshal search response: %w", err)
	}
	return resp, nil
}

// DeserializeSearchResponse joins every match with the document it references
// and splits the snippet context out of the match text. Results keep the
// match order.
//
// A nil response yields nil results; a response without matches yields an
// empty, non-nil slice. A match whose document index is out of range fails
// the whole conversion with an error wrapping [streamquery.ErrDocumentIndex].
func DeserializeSearchResponse(resp *SearchResponse) ([]streamquery.Result, error) {
	if resp == nil {
		return nil, nil
	}

	results := make([]streamquery.Result, 0, len(resp.Response))
	for i, m := range resp.Response {
		idx := int(m.DocumentIndex)
		if idx < 0 || idx >= len(resp.Document) {
			return nil, fmt.Errorf("vectara: match %d references document %d of %d: %w",
				i, idx, len(resp.Document), streamquery.ErrDocumentIndex)
		}
		doc := resp.Document[idx]
		metadata := foldMetadata(doc.Metadata)

		title := metadata["title"]
		if title == "" {
			title = streamquery.DefaultTitle
		}

		results = append(results, streamquery.Result{
			ID:       doc.ID,
			Snippet:  parseSnippet(m.Text),
			Source:   metadata["source"],
			URL:      metadata["url"],
			Title:    title,
			Metadata: metadata,
		})
	}
	return results, nil
}

// parseSnippet splits raw around the snippet markers. A missing start marker
// leaves Pre empty; a missing end marker leaves Post empty.
func parseSnippet(raw string) streamquery.Snippet {
	pre, rest, ok := strings.Cut(raw, SnippetStartTag)
	if !ok {
		pre, rest = "", raw
	}
	text, post, _ := strings.Cut(rest, SnippetEndTag)
	return streamquery.Snippet{Pre: pre, Text: text, Post: post}
}

// foldMetadata flattens name/value pairs into a map. Later duplicates win.
func foldMetadata(pairs []Metadata) map[string]string {
	m := make(map[string]string, len(pairs))
	for _, p := range pairs {
		m[p.Name] = p.Value
	}
	return m
}

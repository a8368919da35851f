// Package vectara decodes the wire formats of the Vectara query API into
// [streamquery] domain types.
//
// The streaming format is line oriented: "data:" lines start a JSON message,
// other non-blank lines continue it, and "event:" lines are redundant headers.
// A message is complete as soon as the accumulated text parses as JSON; no
// length or delimiter field is involved. [Decoder] drives that state machine
// one chunk at a time and [NewStream] wraps it in the pull-based
// [streamquery.Stream] interface.
//
// The non-streaming search response is converted by
// [DeserializeSearchResponse].
package vectara

import (
	"bytes"
	"fmt"
	"strconv"
)

// Line prefixes recognized at column zero. Matching is case-sensitive.
const (
	dataPrefix  = "data:"
	eventPrefix = "event:"
)

// Message kinds carried in the "type" discriminator.
const (
	kindError                   = "error"
	kindSearchResults           = "search_results"
	kindChatInfo                = "chat_info"
	kindGenerationChunk         = "generation_chunk"
	kindGenerationEnd           = "generation_end"
	kindFactualConsistencyScore = "factual_consistency_score"
	kindEnd                     = "end"
)

// Snippet markers wrapped around the matched span of a search hit.
const (
	SnippetStartTag = "%START_SNIPPET%"
	SnippetEndTag   = "%END_SNIPPET%"
)

// Stream message types.

// wireEnvelope is decoded first to branch on the discriminator.
type wireEnvelope struct {
	Type string `json:"type"`
}

type wireError struct {
	Messages []string `json:"messages"`
}

type wireSearchResults struct {
	SearchResults []wireSearchResult `json:"search_results"`
}

type wireSearchResult struct {
	Text             string         `json:"text"`
	Score            float64        `json:"score"`
	PartMetadata     map[string]any `json:"part_metadata"`
	DocumentMetadata map[string]any `json:"document_metadata"`
	DocumentID       string         `json:"document_id"`
}

type wireChatInfo struct {
	ChatID string `json:"chat_id"`
	TurnID string `json:"turn_id"`
}

type wireGenerationChunk struct {
	GenerationChunk string `json:"generation_chunk"`
}

type wireFactualConsistencyScore struct {
	FactualConsistencyScore float64 `json:"factual_consistency_score"`
}

// Search response types.

// SearchResponse is the complete, non-streaming query response: a flat list
// of per-hit matches plus the documents they reference.
type SearchResponse struct {
	Response []Match    `json:"response"`
	Document []Document `json:"document"`
}

// Match is one search hit. Text carries the snippet markers.
type Match struct {
	DocumentIndex DocumentIndex `json:"documentIndex"`
	Text          string        `json:"text"`
	Score         float64       `json:"score"`
}

// Document is a referenced document with flat name/value metadata.
type Document struct {
	ID       string     `json:"id"`
	Metadata []Metadata `json:"metadata"`
}

// Metadata is one name/value pair of document metadata.
type Metadata struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// DocumentIndex is a zero-based index into SearchResponse.Document.
// It decodes from a JSON number or a numeric string.
type DocumentIndex int

// UnmarshalJSON accepts 3 and "3". null leaves the index unchanged.
func (i *DocumentIndex) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	data = bytes.Trim(data, `"`)
	n, err := strconv.Atoi(string(data))
	if err != nil {
		return fmt.Errorf("document index %q: %w", data, err)
	}
	*i = DocumentIndex(n)
	return nil
}

// Package json persists decoded answers and encodes events and search
// results as JSON with a type discriminator.
package json

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fwojciec/streamquery"
)

// envelope is the v1 wire format for a persisted answer.
type envelope struct {
	Version                 int               `json:"version"`
	ChatID                  string            `json:"chat_id,omitempty"`
	TurnID                  string            `json:"turn_id,omitempty"`
	Text                    string            `json:"text"`
	SearchResults           []searchResultDTO `json:"search_results,omitempty"`
	FactualConsistencyScore *float64          `json:"factual_consistency_score,omitempty"`
	Errors                  []string          `json:"errors,omitempty"`
	Done                    bool              `json:"done"`
}

type searchResultDTO struct {
	Text             string         `json:"text"`
	Score            float64        `json:"score"`
	PartMetadata     map[string]any `json:"part_metadata,omitempty"`
	DocumentMetadata map[string]any `json:"document_metadata,omitempty"`
	DocumentID       string         `json:"document_id,omitempty"`
}

// MarshalAnswer serializes an Answer to JSON in v1 envelope format.
func MarshalAnswer(a streamquery.Answer) ([]byte, error) {
	env := envelope{
		Version:                 1,
		ChatID:                  a.ChatID,
		TurnID:                  a.TurnID,
		Text:                    a.Text,
		SearchResults:           marshalSearchResults(a.SearchResults),
		FactualConsistencyScore: a.FactualConsistencyScore,
		Errors:                  a.Errors,
		Done:                    a.Done,
	}
	return json.MarshalIndent(env, "", "  ")
}

// UnmarshalAnswer deserializes an Answer from JSON in v1 envelope format.
func UnmarshalAnswer(data []byte) (streamquery.Answer, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return streamquery.Answer{}, fmt.Errorf("unmarshal envelope: %w", err)
	}
	if env.Version != 1 {
		return streamquery.Answer{}, fmt.Errorf("unsupported envelope version: %d", env.Version)
	}
	return streamquery.Answer{
		ChatID:                  env.ChatID,
		TurnID:                  env.TurnID,
		Text:                    env.Text,
		SearchResults:           unmarshalSearchResults(env.SearchResults),
		FactualConsistencyScore: env.FactualConsistencyScore,
		Errors:                  env.Errors,
		Done:                    env.Done,
	}, nil
}

// Save writes an Answer to a JSON file, creating parent directories as needed.
func Save(path string, a streamquery.Answer) error {
	data, err := MarshalAnswer(a)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create directories: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// Load reads an Answer from a JSON file.
func Load(path string) (streamquery.Answer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return streamquery.Answer{}, fmt.Errorf("read file: %w", err)
	}
	return UnmarshalAnswer(data)
}

func marshalSearchResults(results []streamquery.SearchResult) []searchResultDTO {
	if results == nil {
		return nil
	}
	dtos := make([]searchResultDTO, len(results))
	for i, r := range results {
		dtos[i] = searchResultDTO{
			Text:             r.Text,
			Score:            r.Score,
			PartMetadata:     r.PartMetadata,
			DocumentMetadata: r.DocumentMetadata,
			DocumentID:       r.DocumentID,
		}
	}
	return dtos
}

func unmarshalSearchResults(dtos []searchResultDTO) []streamquery.SearchResult {
	if dtos == nil {
		return nil
	}
	results := make([]streamquery.SearchResult, len(dtos))
	for i, d := range dtos {
		results[i] = streamquery.SearchResult{
			Text:             d.Text,
			Score:            d.Score,
			PartMetadata:     d.PartMetadata,
			DocumentMetadata: d.DocumentMetadata,
			DocumentID:       d.DocumentID,
		}
	}
	return results
}

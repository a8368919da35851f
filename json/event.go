package json

import (
	"encoding/json"
	"fmt"

	"github.com/fwojciec/streamquery"
)

// eventDTO is the JSON representation of an Event with a type discriminator.
type eventDTO struct {
	Type          string            `json:"type"`
	Messages      []string          `json:"messages,omitempty"`
	SearchResults []searchResultDTO `json:"search_results,omitempty"`
	ChatID        *string           `json:"chat_id,omitempty"`
	TurnID        *string           `json:"turn_id,omitempty"`
	UpdatedText   *string           `json:"updated_text,omitempty"`
	Delta         *string           `json:"delta,omitempty"`
	Score         *float64          `json:"score,omitempty"`
}

// MarshalEvent serializes an Event as a single-line JSON object.
func MarshalEvent(e streamquery.Event) ([]byte, error) {
	dto, err := marshalEvent(e)
	if err != nil {
		return nil, err
	}
	return json.Marshal(dto)
}

// UnmarshalEvent deserializes an Event written by MarshalEvent.
func UnmarshalEvent(data []byte) (streamquery.Event, error) {
	var dto eventDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return nil, fmt.Errorf("unmarshal event: %w", err)
	}
	return unmarshalEvent(dto)
}

func marshalEvent(e streamquery.Event) (eventDTO, error) {
	switch ev := e.(type) {
	case streamquery.EventError:
		return eventDTO{Type: "error", Messages: ev.Messages}, nil
	case streamquery.EventSearchResults:
		return eventDTO{Type: "search_results", SearchResults: marshalSearchResults(ev.Results)}, nil
	case streamquery.EventChatInfo:
		return eventDTO{Type: "chat_info", ChatID: &ev.ChatID, TurnID: &ev.TurnID}, nil
	case streamquery.EventGenerationChunk:
		return eventDTO{Type: "generation_chunk", UpdatedText: &ev.UpdatedText, Delta: &ev.Delta}, nil
	case streamquery.EventGenerationEnd:
		return eventDTO{Type: "generation_end"}, nil
	case streamquery.EventFactualConsistencyScore:
		return eventDTO{Type: "factual_consistency_score", Score: &ev.Score}, nil
	case streamquery.EventEnd:
		return eventDTO{Type: "end"}, nil
	default:
		return eventDTO{}, fmt.Errorf("unknown event type: %T", e)
	}
}

func unmarshalEvent(dto eventDTO) (streamquery.Event, error) {
	switch dto.Type {
	case "error":
		return streamquery.EventError{Messages: dto.Messages}, nil
	case "search_results":
		return streamquery.EventSearchResults{Results: unmarshalSearchResults(dto.SearchResults)}, nil
	case "chat_info":
		return streamquery.EventChatInfo{ChatID: deref(dto.ChatID), TurnID: deref(dto.TurnID)}, nil
	case "generation_chunk":
		return streamquery.EventGenerationChunk{UpdatedText: deref(dto.UpdatedText), Delta: deref(dto.Delta)}, nil
	case "generation_end":
		return streamquery.EventGenerationEnd{}, nil
	case "factual_consistency_score":
		var score float64
		if dto.Score != nil {
			score = *dto.Score
		}
		return streamquery.EventFactualConsistencyScore{Score: score}, nil
	case "end":
		return streamquery.EventEnd{}, nil
	default:
		return nil, fmt.Errorf("unknown event type: %q", dto.Type)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

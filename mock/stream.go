package mock

import (
	"io"

	"github.com/fwojciec/streamquery"
)

// Stream is a test double for streamquery.Stream.
// Set the function fields for the methods you need. NextFn panics when nil
// to catch missing setup. CloseFn, StateFn and AnswerFn are nil-safe
// (no-op and zero value) because test code commonly calls defer
// stream.Close() and these methods rarely need custom behavior.
type Stream struct {
	NextFn   func() (streamquery.Event, error)
	StateFn  func() streamquery.StreamState
	AnswerFn func() streamquery.Answer
	CloseFn  func() error
}

// Next delegates to NextFn.
func (s *Stream) Next() (streamquery.Event, error) {
	return s.NextFn()
}

// State delegates to StateFn. Returns StreamStateNew when StateFn is nil.
func (s *Stream) State() streamquery.StreamState {
	if s.StateFn == nil {
		return streamquery.StreamStateNew
	}
	return s.StateFn()
}

// Answer delegates to AnswerFn. Returns the zero Answer when AnswerFn is nil.
func (s *Stream) Answer() streamquery.Answer {
	if s.AnswerFn == nil {
		return streamquery.Answer{}
	}
	return s.AnswerFn()
}

// Close delegates to CloseFn. Returns nil when CloseFn is not set.
func (s *Stream) Close() error {
	if s.CloseFn == nil {
		return nil
	}
	return s.CloseFn()
}

// Events returns a Stream that yields events in order and then io.EOF.
// Answer folds the events returned so far.
func Events(events ...streamquery.Event) *Stream {
	var answer streamquery.Answer
	i := 0
	return &Stream{
		NextFn: func() (streamquery.Event, error) {
			if i >= len(events) {
				return nil, io.EOF
			}
			e := events[i]
			i++
			answer.Apply(e)
			return e, nil
		},
		AnswerFn: func() streamquery.Answer { return answer },
	}
}

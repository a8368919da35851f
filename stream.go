package streamquery

// StreamState indicates the current state of a Stream.
type StreamState int

const (
	StreamStateNew       StreamState = iota // Before Next() is ever called.
	StreamStateStreaming                    // Mid-stream, receiving events.
	StreamStateComplete                     // EventEnd was returned.
	StreamStateError                        // Next() returned a non-EOF error.
	StreamStateClosed                       // Close() called before terminal state.
)

// String returns a lowercase name for the state.
func (s StreamState) String() string {
	switch s {
	case StreamStateNew:
		return "new"
	case StreamStateStreaming:
		return "streaming"
	case StreamStateComplete:
		return "complete"
	case StreamStateError:
		return "error"
	case StreamStateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Stream uses a pull-based iterator pattern over one query/answer exchange.
// Cancellation flows through the context the stream was opened with.
//
// Next returns events in the order their messages completed. After EventEnd
// is returned the stream is complete and Next returns io.EOF. An EventError
// is returned like any other event; the stream keeps reading in case the
// server follows it with more messages.
//
// Answer returns the fold of every event returned so far. It is valid in
// every state; on error or close it holds the partial answer.
type Stream interface {
	Next() (Event, error)
	State() StreamState
	Answer() Answer
	Close() error
}

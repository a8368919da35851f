package streamquery

// Event is a sealed interface representing one decoded stream event.
// Events are purely semantic. A server-reported failure arrives as
// EventError like any other event; transport failures come from
// Stream.Next's error return.
// The unexported marker method prevents external implementations.
type Event interface {
	event()
}

// EventError carries the messages of a server-reported failure. It is terminal.
type EventError struct {
	Messages []string
}

func (EventError) event() {}

// EventSearchResults carries the retrieved passages. It is emitted once,
// before generation begins.
type EventSearchResults struct {
	Results []SearchResult
}

func (EventSearchResults) event() {}

// EventChatInfo identifies the conversation the answer belongs to.
type EventChatInfo struct {
	ChatID string
	TurnID string
}

func (EventChatInfo) event() {}

// EventGenerationChunk is one increment of the generated answer.
// UpdatedText is the concatenation of every delta seen so far in the
// session, including Delta.
type EventGenerationChunk struct {
	UpdatedText string
	Delta       string
}

func (EventGenerationChunk) event() {}

// EventGenerationEnd signals that no more generation chunks follow.
type EventGenerationEnd struct{}

func (EventGenerationEnd) event() {}

// EventFactualConsistencyScore carries the post-generation quality signal.
type EventFactualConsistencyScore struct {
	Score float64
}

func (EventFactualConsistencyScore) event() {}

// EventEnd signals that the stream is fully complete. It is terminal.
type EventEnd struct{}

func (EventEnd) event() {}

// Interface compliance checks.
var (
	_ Event = EventError{}
	_ Event = EventSearchResults{}
	_ Event = EventChatInfo{}
	_ Event = EventGenerationChunk{}
	_ Event = EventGenerationEnd{}
	_ Event = EventFactualConsistencyScore{}
	_ Event = EventEnd{}
)

// IsTerminal reports whether e ends the stream.
func IsTerminal(e Event) bool {
	switch e.(type) {
	case EventEnd, EventError:
		return true
	default:
		return false
	}
}

package streamquery

// Sink receives decoded events one at a time, synchronously and in the
// order their messages completed. Implementations must return quickly;
// the decoder does not apply backpressure.
type Sink interface {
	Emit(e Event)
}

// SinkFunc adapts an ordinary function to a Sink.
type SinkFunc func(e Event)

// Emit calls f(e).
func (f SinkFunc) Emit(e Event) { f(e) }

// Interface compliance check.
var _ Sink = SinkFunc(nil)

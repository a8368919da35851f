// Package mock provides test doubles for streamquery interfaces using
// function fields.
package mock

import "github.com/fwojciec/streamquery"

// Interface compliance checks.
var (
	_ streamquery.Sink   = (*Sink)(nil)
	_ streamquery.Stream = (*Stream)(nil)
)

// Sink is a test double for streamquery.Sink. When EmitFn is nil, Emit
// records the event in Events.
type Sink struct {
	EmitFn func(e streamquery.Event)
	Events []streamquery.Event
}

// Emit delegates to EmitFn, or records e when EmitFn is not set.
func (s *Sink) Emit(e streamquery.Event) {
	if s.EmitFn == nil {
		s.Events = append(s.Events, e)
		return
	}
	s.EmitFn(e)
}

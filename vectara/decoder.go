package vectara

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/fwojciec/streamquery"
	"go.uber.org/zap"
)

const defaultChunkSize = 4096

type options struct {
	logger     *zap.Logger
	maxPending int
	chunkSize  int
}

// Option configures a [Decoder] or a stream created by [NewStream].
type Option func(*options)

// WithLogger sets the logger used to report dropped messages.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMaxPending caps the size in bytes of a message that has not parsed
// yet. A fragment that grows past n is discarded with a warning. Zero, the
// default, retains unresolved fragments indefinitely.
func WithMaxPending(n int) Option {
	return func(o *options) { o.maxPending = n }
}

// WithChunkSize sets how many bytes a stream reads from its body per chunk.
// It has no effect on a bare Decoder.
func WithChunkSize(n int) Option {
	return func(o *options) { o.chunkSize = n }
}

func newOptions(opts []Option) options {
	o := options{
		logger:    zap.NewNop(),
		chunkSize: defaultChunkSize,
	}
	for _, fn := range opts {
		fn(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.chunkSize <= 0 {
		o.chunkSize = defaultChunkSize
	}
	return o
}

// Decoder reassembles framed messages from a chunked text stream and
// dispatches them as typed events. One Decoder serves exactly one stream.
//
// ConsumeChunk must not be called concurrently; the decoder holds no lock.
type Decoder struct {
	sink       streamquery.Sink
	logger     *zap.Logger
	maxPending int

	pending []byte          // message being assembled; empty after each complete message
	line    []byte          // unterminated tail of the current line
	text    strings.Builder // concatenation of every generation delta
	queue   []streamquery.Event
}

// NewDecoder creates a [Decoder] that delivers events to sink.
func NewDecoder(sink streamquery.Sink, opts ...Option) *Decoder {
	o := newOptions(opts)
	return &Decoder{
		sink:       sink,
		logger:     o.logger,
		maxPending: o.maxPending,
	}
}

// ConsumeChunk processes the next contiguous slice of the stream. Every event
// completed by the chunk is delivered to the sink, in completion order,
// before ConsumeChunk returns.
//
// A line split across chunks is reassembled before its prefix is examined,
// so chunk boundaries do not change the decoded events. The unterminated
// last line of a chunk is still dispatched right away if it completes a
// message, so a stream need not end with a newline.
func (d *Decoder) ConsumeChunk(chunk string) {
	d.line = append(d.line, chunk...)
	for {
		i := bytes.IndexByte(d.line, '\n')
		if i < 0 {
			break
		}
		d.consumeLine(d.line[:i])
		d.line = d.line[i+1:]
	}
	if d.tryPartialLine() {
		d.line = d.line[:0]
	} else {
		// Detach the tail from the chunk's backing array.
		d.line = append([]byte(nil), d.line...)
	}
	d.drain()
}

// Text returns the concatenation of every generation delta seen so far.
func (d *Decoder) Text() string {
	return d.text.String()
}

// Pending returns the message fragment assembled so far that does not parse
// yet, including the unterminated line once its prefix is known.
func (d *Decoder) Pending() string {
	if candidate, ok := d.fold(); ok {
		return string(candidate)
	}
	return string(d.pending)
}

// fold returns the pending fragment as it would read with the unterminated
// line applied. It reports false when the line contributes nothing yet:
// blank, an event header, or too short to tell which prefix it carries.
func (d *Decoder) fold() ([]byte, bool) {
	if len(bytes.TrimSpace(d.line)) == 0 || undecided(d.line) {
		return nil, false
	}
	if bytes.HasPrefix(d.line, []byte(eventPrefix)) {
		return nil, false
	}
	if rest, ok := bytes.CutPrefix(d.line, []byte(dataPrefix)); ok {
		return rest, true
	}
	candidate := make([]byte, 0, len(d.pending)+len(d.line))
	candidate = append(candidate, d.pending...)
	return append(candidate, d.line...), true
}

func (d *Decoder) consumeLine(line []byte) {
	if len(bytes.TrimSpace(line)) == 0 {
		return
	}
	if bytes.HasPrefix(line, []byte(eventPrefix)) {
		return
	}
	if rest, ok := bytes.CutPrefix(line, []byte(dataPrefix)); ok {
		d.pending = append(d.pending[:0], rest...)
	} else {
		d.pending = append(d.pending, line...)
	}

	if !json.Valid(d.pending) {
		d.checkPending()
		return
	}
	msg := d.pending
	d.pending = nil
	d.enqueue(msg)
}

// tryPartialLine dispatches the unterminated line if it already completes a
// message. It reports whether the line was consumed.
func (d *Decoder) tryPartialLine() bool {
	candidate, ok := d.fold()
	if !ok || !json.Valid(candidate) {
		return false
	}
	d.pending = nil
	d.enqueue(candidate)
	return true
}

// undecided reports whether line is a proper prefix of a recognized line
// prefix, so its kind depends on bytes not received yet.
func undecided(line []byte) bool {
	for _, p := range []string{dataPrefix, eventPrefix} {
		if len(line) < len(p) && strings.HasPrefix(p, string(line)) {
			return true
		}
	}
	return false
}

func (d *Decoder) checkPending() {
	if d.maxPending <= 0 || len(d.pending) <= d.maxPending {
		return
	}
	d.logger.Warn("discarding unresolved stream fragment",
		zap.Int("size", len(d.pending)),
		zap.Int("max_pending", d.maxPending),
	)
	d.pending = nil
}

// enqueue maps one complete message to its event and queues it.
func (d *Decoder) enqueue(msg []byte) {
	var env wireEnvelope
	if err := json.Unmarshal(msg, &env); err != nil {
		d.logger.Warn("dropping stream message without a type",
			zap.ByteString("message", msg),
			zap.Error(err),
		)
		return
	}

	evt, err := d.mapMessage(env.Type, msg)
	if err != nil {
		d.logger.Warn("dropping malformed stream message",
			zap.String("type", env.Type),
			zap.ByteString("message", msg),
			zap.Error(err),
		)
		return
	}
	if evt == nil {
		d.logger.Info("unhandled stream message",
			zap.String("type", env.Type),
			zap.ByteString("message", msg),
		)
		return
	}
	d.queue = append(d.queue, evt)
}

// mapMessage decodes msg according to kind. It returns a nil event for kinds
// it does not recognize.
func (d *Decoder) mapMessage(kind string, msg []byte) (streamquery.Event, error) {
	switch kind {
	case kindError:
		var m wireError
		if err := json.Unmarshal(msg, &m); err != nil {
			return nil, err
		}
		return streamquery.EventError{Messages: m.Messages}, nil

	case kindSearchResults:
		var m wireSearchResults
		if err := json.Unmarshal(msg, &m); err != nil {
			return nil, err
		}
		return streamquery.EventSearchResults{Results: convertSearchResults(m.SearchResults)}, nil

	case kindChatInfo:
		var m wireChatInfo
		if err := json.Unmarshal(msg, &m); err != nil {
			return nil, err
		}
		return streamquery.EventChatInfo{ChatID: m.ChatID, TurnID: m.TurnID}, nil

	case kindGenerationChunk:
		var m wireGenerationChunk
		if err := json.Unmarshal(msg, &m); err != nil {
			return nil, err
		}
		// The running total includes the delta this event carries.
		d.text.WriteString(m.GenerationChunk)
		return streamquery.EventGenerationChunk{
			UpdatedText: d.text.String(),
			Delta:       m.GenerationChunk,
		}, nil

	case kindGenerationEnd:
		return streamquery.EventGenerationEnd{}, nil

	case kindFactualConsistencyScore:
		var m wireFactualConsistencyScore
		if err := json.Unmarshal(msg, &m); err != nil {
			return nil, err
		}
		return streamquery.EventFactualConsistencyScore{Score: m.FactualConsistencyScore}, nil

	case kindEnd:
		return streamquery.EventEnd{}, nil

	default:
		return nil, nil
	}
}

func convertSearchResults(in []wireSearchResult) []streamquery.SearchResult {
	out := make([]streamquery.SearchResult, len(in))
	for i, r := range in {
		out[i] = streamquery.SearchResult{
			Text:             r.Text,
			Score:            r.Score,
			PartMetadata:     r.PartMetadata,
			DocumentMetadata: r.DocumentMetadata,
			DocumentID:       r.DocumentID,
		}
	}
	return out
}

// drain delivers queued events to the sink and resets the queue.
func (d *Decoder) drain() {
	events := d.queue
	d.queue = nil
	for _, e := range events {
		d.sink.Emit(e)
	}
}

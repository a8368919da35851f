package vectara

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fwojciec/streamquery"
	"go.uber.org/zap"
)

// stream implements [streamquery.Stream] by feeding a response body through
// a [Decoder] one read at a time.
type stream struct {
	body    io.ReadCloser
	ctx     context.Context
	logger  *zap.Logger
	decoder *Decoder
	buf     []byte
	queue   []streamquery.Event
	state   streamquery.StreamState
	answer  streamquery.Answer
	readErr error // first read failure, surfaced once the queue is empty
	err     error // terminal error, if any
}

// Interface compliance check.
var _ streamquery.Stream = (*stream)(nil)

// NewStream returns a [streamquery.Stream] that decodes body. The caller
// issues the request; the stream only reads. Close closes body.
func NewStream(ctx context.Context, body io.ReadCloser, opts ...Option) streamquery.Stream {
	o := newOptions(opts)
	s := &stream{
		body:   body,
		ctx:    ctx,
		logger: o.logger,
		buf:    make([]byte, o.chunkSize),
		state:  streamquery.StreamStateNew,
	}
	s.decoder = NewDecoder(streamquery.SinkFunc(s.push), opts...)
	return s
}

func (s *stream) push(e streamquery.Event) {
	s.queue = append(s.queue, e)
}

// Next returns the next decoded event. EventEnd completes the stream;
// after it Next returns io.EOF.
func (s *stream) Next() (streamquery.Event, error) {
	switch s.state {
	case streamquery.StreamStateComplete:
		return nil, io.EOF
	case streamquery.StreamStateError:
		return nil, s.err
	case streamquery.StreamStateClosed:
		return nil, fmt.Errorf("vectara: %w", streamquery.ErrStreamClosed)
	}

	for len(s.queue) == 0 {
		if s.readErr != nil {
			s.terminate(s.readErr)
			return nil, s.err
		}
		if err := s.ctx.Err(); err != nil {
			s.terminate(fmt.Errorf("vectara: %w", err))
			return nil, s.err
		}
		s.read()
	}

	evt := s.queue[0]
	s.queue = s.queue[1:]
	s.answer.Apply(evt)
	if _, ok := evt.(streamquery.EventEnd); ok {
		s.state = streamquery.StreamStateComplete
		if n := len(s.queue); n > 0 {
			s.logger.Debug("ignoring events after end", zap.Int("count", n))
			s.queue = nil
		}
	}
	return evt, nil
}

// read performs one body read and decodes whatever arrived.
func (s *stream) read() {
	n, err := s.body.Read(s.buf)
	if n > 0 {
		s.state = streamquery.StreamStateStreaming
		s.decoder.ConsumeChunk(string(s.buf[:n]))
	}
	switch {
	case err == nil:
	case errors.Is(err, io.EOF):
		s.readErr = fmt.Errorf("vectara: %w", streamquery.ErrUnexpectedEOF)
	case s.ctx.Err() != nil:
		s.readErr = fmt.Errorf("vectara: %w", s.ctx.Err())
	default:
		s.readErr = fmt.Errorf("vectara: read: %w", err)
	}
}

// terminate records a terminal error.
func (s *stream) terminate(err error) {
	s.state = streamquery.StreamStateError
	s.err = err
	if pending := s.decoder.Pending(); pending != "" {
		s.logger.Debug("stream ended with an unresolved fragment",
			zap.Int("size", len(pending)),
		)
	}
}

// State returns the current stream state.
func (s *stream) State() streamquery.StreamState {
	return s.state
}

// Answer returns the fold of every event returned so far.
func (s *stream) Answer() streamquery.Answer {
	return s.answer
}

// Close closes the underlying body. A stream that has not reached a
// terminal state moves to StreamStateClosed.
func (s *stream) Close() error {
	if s.state != streamquery.StreamStateComplete && s.state != streamquery.StreamStateError {
		s.state = streamquery.StreamStateClosed
	}
	return s.body.Close()
}

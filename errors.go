package streamquery

import "errors"

// Sentinel errors for common failure modes.
var (
	// ErrDocumentIndex indicates a search match references a document
	// index outside the response's document list.
	ErrDocumentIndex = errors.New("document index out of range")

	// ErrUnexpectedEOF indicates the stream body ended before the end event.
	ErrUnexpectedEOF = errors.New("unexpected end of stream")

	// ErrStreamClosed indicates an operation on a closed stream.
	ErrStreamClosed = errors.New("stream closed")
)

// Package fs resolves the capture files the command line tools read.
package fs

import (
	"errors"
	"io"
	"os"
)

// Stdin is the input name that stands for standard input.
const Stdin = "-"

// ErrNoMatch is returned when a pattern matches no files.
var ErrNoMatch = errors.New("no files match pattern")

// Open opens name for reading. Stdin is served from stdin, and closing the
// returned reader leaves stdin open.
func Open(name string, stdin io.Reader) (io.ReadCloser, error) {
	if name == Stdin {
		return io.NopCloser(stdin), nil
	}
	return os.Open(name)
}

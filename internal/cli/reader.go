package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
)

// ErrInputCancelled is returned by ReadLine when its context ends first.
var ErrInputCancelled = errors.New("input canceled")

// LineReader serves trimmed lines from a terminal or pipe to a caller that
// may give up waiting. One goroutine scans the input for the reader's whole
// life, so a line typed after an abandoned read is kept for the next one.
type LineReader struct {
	src   *bufio.Reader
	lines chan string
	err   error
	once  sync.Once
}

// NewLineReader wraps in. Scanning starts on the first ReadLine.
func NewLineReader(in io.Reader) *LineReader {
	if in == nil {
		panic("cli: nil input")
	}
	return &LineReader{
		src:   bufio.NewReader(in),
		lines: make(chan string),
	}
}

func (r *LineReader) scan() {
	defer close(r.lines)
	for {
		s, err := r.src.ReadString('\n')
		if s != "" {
			r.lines <- strings.TrimSpace(s)
		}
		if err != nil {
			r.err = err
			return
		}
	}
}

// ReadLine returns the next line without surrounding whitespace. Once the
// input is exhausted it returns the error that ended it, usually io.EOF.
func (r *LineReader) ReadLine(ctx context.Context) (string, error) {
	if ctx.Err() != nil {
		return "", ErrInputCancelled
	}
	r.once.Do(func() { go r.scan() })

	select {
	case <-ctx.Done():
		return "", ErrInputCancelled
	case line, ok := <-r.lines:
		if !ok {
			return "", r.err
		}
		return line, nil
	}
}

package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
)

// LineReader reads stdin one line at a time and lets a cancelled caller walk
// away from a pending read. The next ReadLine picks up that same read, so a
// line typed after Ctrl-C goes to whoever asks next instead of being lost.
// It is not safe for concurrent use.
type LineReader struct {
	in      *bufio.Reader
	pending chan lineResult
}

type lineResult struct {
	line string
	err  error
}

// NewLineReader wraps r.
func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{in: bufio.NewReader(r)}
}

// ReadLine returns the next line without its terminator. A final line with
// no newline is returned with a nil error; io.EOF follows on the next call.
func (r *LineReader) ReadLine(ctx context.Context) (string, error) {
	if r.pending == nil {
		ch := make(chan lineResult, 1)
		r.pending = ch
		go func() {
			line, err := r.in.ReadString('\n')
			ch <- lineResult{line: line, err: err}
		}()
	}

	select {
	case res := <-r.pending:
		r.pending = nil
		if res.err != nil && !(errors.Is(res.err, io.EOF) && res.line != "") {
			return "", res.err
		}
		return strings.TrimRight(res.line, "\r\n"), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

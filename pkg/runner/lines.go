package runner

import (
	"bufio"
	"context"
	"io"
	"strings"
	"sync"
)

type inputResult struct {
	text string
	err  error
}

// lineReader reads lines on a background goroutine so that a pending read
// can be abandoned when the context is cancelled.
type lineReader struct {
	reader    *bufio.Reader
	lines     chan inputResult
	startOnce sync.Once
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{reader: bufio.NewReader(r)}
}

func (l *lineReader) pump() {
	defer close(l.lines)
	for {
		text, err := l.reader.ReadString('\n')
		if text != "" {
			l.lines <- inputResult{text: text}
		}
		if err != nil {
			if err != io.EOF {
				l.lines <- inputResult{err: err}
			}
			return
		}
	}
}

// ReadLine returns the next line without its trailing newline.
func (l *lineReader) ReadLine(ctx context.Context) (string, error) {
	l.startOnce.Do(func() {
		l.lines = make(chan inputResult)
		go l.pump()
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res, ok := <-l.lines:
		if !ok {
			return "", io.EOF
		}
		if res.err != nil {
			return "", res.err
		}
		return strings.TrimRight(res.text, "\r\n"), nil
	}
}

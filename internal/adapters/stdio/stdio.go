// Package stdio is the JSON-lines transport used by stream mode when Kafka is
// not configured.
package stdio

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strconv"
	"strings"
	"sync"

	"marketpulse/pkg/errors"
)

const defaultMaxLine = 8 << 20

// LineSource yields one non-blank line per Read. After the first scan error
// it reports io.EOF so callers stop.
type LineSource struct {
	scanner *bufio.Scanner
	line    int
	failed  bool
}

// NewLineSource reads lines of at most maxLine bytes from r
func NewLineSource(r io.Reader, maxLine int) *LineSource {
	if maxLine <= 0 {
		maxLine = defaultMaxLine
	}
	scanner := bufio.NewScanner(r)
	// the scanner never caps tokens below the initial buffer capacity
	initial := 64 * 1024
	if maxLine < initial {
		initial = maxLine
	}
	scanner.Buffer(make([]byte, 0, initial), maxLine)
	return &LineSource{scanner: scanner}
}

// Read returns the line number as key and the line as value
func (s *LineSource) Read(ctx context.Context) (string, []byte, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", nil, err
		}
		if !s.scanner.Scan() {
			if err := s.scanner.Err(); err != nil && !s.failed {
				s.failed = true
				return "", nil, errors.Wrapf(err, "read line %d", s.line+1)
			}
			return "", nil, io.EOF
		}
		s.line++
		text := strings.TrimSpace(s.scanner.Text())
		if text == "" {
			continue
		}
		return "line-" + strconv.Itoa(s.line), []byte(text), nil
	}
}

// Close is a no-op; the caller owns the reader
func (s *LineSource) Close() error { return nil }

// JSONSink writes one JSON document per line. Safe for concurrent use.
type JSONSink struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewJSONSink writes to w
func NewJSONSink(w io.Writer) *JSONSink {
	return &JSONSink{enc: json.NewEncoder(w)}
}

// Publish writes event; topic and key are ignored
func (s *JSONSink) Publish(_ context.Context, _ string, _ string, event interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return errors.Wrap(s.enc.Encode(event), "write report")
}

// Close is a no-op; the caller owns the writer
func (s *JSONSink) Close() error { return nil }

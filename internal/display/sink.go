package display

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
)

// fallbackLine is written when a status line cannot be encoded.
const fallbackLine = `{"text":"` + ErrorLabel + `","tooltip":"Could not format waybar response","class":[]}`

// OutputSink receives every rendered status line.
type OutputSink interface {
	Emit(line StatusLine) error
}

// StdoutSink writes one JSON object per line, the framing waybar reads.
type StdoutSink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewStdoutSink wraps w, usually os.Stdout.
func NewStdoutSink(w io.Writer) *StdoutSink {
	return &StdoutSink{w: w}
}

// Emit encodes line, or writes the fallback line if encoding fails.
func (s *StdoutSink) Emit(line StatusLine) error {
	data, encodeErr := json.Marshal(line)
	if encodeErr != nil {
		data = []byte(fallbackLine)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := fmt.Fprintf(s.w, "%s\n", data); err != nil {
		return fmt.Errorf("write status line: %w", err)
	}
	if encodeErr != nil {
		return fmt.Errorf("encode status line: %w", encodeErr)
	}
	return nil
}

// MultiSink emits to every sink and joins the failures.
type MultiSink []OutputSink

func (m MultiSink) Emit(line StatusLine) error {
	var errs []error
	for _, sink := range m {
		if err := sink.Emit(line); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

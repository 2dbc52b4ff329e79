package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"collection-reconciler/core/reconcile"

	"gopkg.in/yaml.v3"
)

// Format is a report encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatNone Format = "none"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatJSON, FormatYAML, FormatNone:
		return f, nil
	case "":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q", s)
	}
}

// WriterSink encodes each result to w. Writes are serialized so concurrent
// collections never interleave.
type WriterSink struct {
	mu     sync.Mutex
	w      io.Writer
	format Format
}

// NewWriterSink creates a writer sink. FormatNone is not accepted here.
func NewWriterSink(w io.Writer, format Format) (*WriterSink, error) {
	if format != FormatJSON && format != FormatYAML {
		return nil, fmt.Errorf("writer sink cannot encode format %q", format)
	}
	return &WriterSink{w: w, format: format}, nil
}

// Emit encodes the result.
func (s *WriterSink) Emit(ctx context.Context, result *reconcile.Result) error {
	data, err := Encode(result, s.format)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.format == FormatYAML {
		if _, err := io.WriteString(s.w, "---\n"); err != nil {
			return err
		}
	}
	_, err = s.w.Write(data)
	return err
}

// Encode renders a result in the given format. JSON output is indented and
// newline-terminated.
func Encode(result *reconcile.Result, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode result as json: %w", err)
		}
		return append(data, '\n'), nil
	case FormatYAML:
		data, err := yaml.Marshal(result)
		if err != nil {
			return nil, fmt.Errorf("failed to encode result as yaml: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("cannot encode format %q", format)
	}
}

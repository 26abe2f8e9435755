package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"

	"bugscan/internal/action"
)

type ConsoleSink struct {
	writer   io.Writer
	format   string // "text", "json", "ndjson"
	colorize bool
	mu       sync.Mutex
	results  []action.Result // For JSON array output
}

func NewConsoleSink(w io.Writer, format string, colorize bool) *ConsoleSink {
	if w == nil {
		w = os.Stdout
	}
	if format == "" {
		format = "text"
	}
	return &ConsoleSink{
		writer:   w,
		format:   format,
		colorize: colorize,
	}
}

func (s *ConsoleSink) Write(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeLocked(v)
}

func (s *ConsoleSink) writeLocked(v any) error {
	switch s.format {
	case "json":
		r, ok := v.(action.Result)
		if !ok {
			// Ignore lifecycle events in JSON console mode.
			return nil
		}
		s.results = append(s.results, r)
		return nil
	case "ndjson":
		encoder := json.NewEncoder(s.writer)
		switch t := v.(type) {
		case Event:
			if err := encoder.Encode(t); err != nil {
				return err
			}
			return flushIfPossible(s.writer)
		case action.Result:
			if err := encoder.Encode(eventFromResult(t)); err != nil {
				return err
			}
			return flushIfPossible(s.writer)
		default:
			return nil
		}
	case "text":
		r, ok := v.(action.Result)
		if !ok {
			// Ignore events in text mode.
			return nil
		}
		if _, err := fmt.Fprintf(s.writer, "[%s] %s", s.statusLabel(r.Status), r.Target); err != nil {
			return err
		}
		if r.Format != "" {
			if _, err := fmt.Fprintf(s.writer, " (%s)", r.Format); err != nil {
				return err
			}
		}
		if r.Message != "" {
			if _, err := fmt.Fprintf(s.writer, " - %s", r.Message); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(s.writer); err != nil {
			return err
		}
		return flushIfPossible(s.writer)
	default:
		return fmt.Errorf("unsupported console format: %s", s.format)
	}
}

func (s *ConsoleSink) statusLabel(st action.Status) string {
	if !s.colorize {
		return string(st)
	}
	switch st {
	case action.StatusPass:
		return color.GreenString(string(st))
	case action.StatusFail:
		return color.RedString(string(st))
	case action.StatusError:
		return color.New(color.FgRed, color.Bold).Sprint(string(st))
	case action.StatusSkipped:
		return color.YellowString(string(st))
	default:
		return string(st)
	}
}

func (s *ConsoleSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.format == "json" {
		encoder := json.NewEncoder(s.writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(s.results); err != nil {
			return err
		}
		return flushIfPossible(s.writer)
	}
	if s.format != "text" && s.format != "ndjson" {
		return fmt.Errorf("unsupported console format: %s", s.format)
	}
	return nil
}

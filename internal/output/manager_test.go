package output

import (
	"errors"
	"testing"

	"bugscan/internal/action"
)

type recordingSink struct {
	writes   []any
	closed   bool
	writeErr error
	closeErr error
}

func (s *recordingSink) Write(v any) error {
	s.writes = append(s.writes, v)
	return s.writeErr
}

func (s *recordingSink) Close() error {
	s.closed = true
	return s.closeErr
}

func TestManager_FansOutToAllSinks(t *testing.T) {
	m := NewManager()
	a := &recordingSink{}
	b := &recordingSink{}
	if err := m.AddSink(a); err != nil {
		t.Fatalf("AddSink returned error: %v", err)
	}
	if err := m.AddSink(b); err != nil {
		t.Fatalf("AddSink returned error: %v", err)
	}

	r := action.Result{Target: "//a:x", Status: action.StatusPass}
	if err := m.Write(r); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	for i, s := range []*recordingSink{a, b} {
		if len(s.writes) != 1 {
			t.Errorf("sink %d received %d writes, want 1", i, len(s.writes))
		}
		if !s.closed {
			t.Errorf("sink %d not closed", i)
		}
	}
}

func TestManager_RejectsNilSink(t *testing.T) {
	m := NewManager()
	if err := m.AddSink(nil); err == nil {
		t.Fatalf("expected error for nil sink")
	}
}

func TestManager_WriteContinuesPastFailingSink(t *testing.T) {
	m := NewManager()
	broken := &recordingSink{writeErr: errors.New("disk full")}
	healthy := &recordingSink{}
	_ = m.AddSink(broken)
	_ = m.AddSink(healthy)

	err := m.Write(action.Result{Target: "//a:x"})
	if err == nil {
		t.Fatalf("expected aggregated write error")
	}
	if len(healthy.writes) != 1 {
		t.Fatalf("healthy sink skipped after sibling failure")
	}
}

func TestManager_CloseAggregatesErrors(t *testing.T) {
	m := NewManager()
	_ = m.AddSink(&recordingSink{closeErr: errors.New("flush failed")})
	second := &recordingSink{}
	_ = m.AddSink(second)

	if err := m.Close(); err == nil {
		t.Fatalf("expected aggregated close error")
	}
	if !second.closed {
		t.Fatalf("second sink not closed after sibling failure")
	}
}

package observe

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	buf := &bytes.Buffer{}
	obs := New(buf, true)

	if obs == nil {
		t.Fatal("expected non-nil Observer")
	}
	if obs.log == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestNewJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	obs := NewJSON(buf, true)

	if obs == nil {
		t.Fatal("expected non-nil Observer")
	}
	if obs.log == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestObserver_Log(t *testing.T) {
	buf := &bytes.Buffer{}
	obs := New(buf, true)

	logger := obs.Log()
	if logger == nil {
		t.Fatal("expected non-nil logger from Log()")
	}

	logger.Info().Msg("preview complete")

	output := buf.String()
	if !strings.Contains(output, "preview complete") {
		t.Errorf("expected output to contain 'preview complete', got %q", output)
	}
}

func TestObserver_Component(t *testing.T) {
	buf := &bytes.Buffer{}
	obs := New(buf, true)

	obs.Component("anki").Info().
		Str("deck", "News B2").
		Int("notes", 3).
		Msg("candidates found")

	output := buf.String()
	if !strings.Contains(output, "candidates found") {
		t.Errorf("expected output to contain 'candidates found', got %q", output)
	}
	if !strings.Contains(output, "anki") {
		t.Errorf("expected output to carry the component name, got %q", output)
	}
}

func TestObserver_StartSpan(t *testing.T) {
	buf := &bytes.Buffer{}
	obs := New(buf, true)

	ctx := context.Background()
	spanCtx, span := obs.StartSpan(ctx, "compaction.preview")

	if spanCtx == nil {
		t.Fatal("expected non-nil context from StartSpan")
	}
	if span == nil {
		t.Fatal("expected non-nil span from StartSpan")
	}

	span.End()
}

func TestObserver_Close(t *testing.T) {
	buf := &bytes.Buffer{}
	obs := New(buf, true)

	if err := obs.Close(); err != nil {
		t.Errorf("expected nil error from Close, got %v", err)
	}
}

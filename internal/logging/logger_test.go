package logging

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func newTestLogger(level Level) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	l := New(Config{Level: level, Output: &buf, Prefix: "test"})
	l.sink.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 6e6, time.UTC) }
	return l, &buf
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"DEBUG", LevelDebug, false},
		{"info", LevelInfo, false},
		{"", LevelInfo, false},
		{"Warning", LevelWarn, false},
		{" error ", LevelError, false},
		{"loud", LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) err = %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
	if Level(42).String() != "UNKNOWN" {
		t.Error("unexpected name for unknown level")
	}
}

func TestLevelText(t *testing.T) {
	var l Level
	if err := l.UnmarshalText([]byte("warn")); err != nil || l != LevelWarn {
		t.Fatalf("UnmarshalText = %v, %v", l, err)
	}
	b, _ := l.MarshalText()
	if string(b) != "warn" {
		t.Errorf("MarshalText = %q", b)
	}
	if err := l.UnmarshalText([]byte("nope")); err == nil {
		t.Error("expected error")
	}
}

func TestLoggerFormat(t *testing.T) {
	l, buf := newTestLogger(LevelDebug)
	l.WithFields(map[string]any{"op": "addChild", "id": "n1"}).Info("applied %d change", 1)

	want := "2024-01-02T03:04:05.006 [INFO] test: applied 1 change {id=n1, op=addChild}\n"
	if buf.String() != want {
		t.Errorf("got  %q\nwant %q", buf.String(), want)
	}
}

func TestLoggerLevelFilter(t *testing.T) {
	l, buf := newTestLogger(LevelWarn)
	l.Debug("d")
	l.Info("i")
	l.Warn("w")
	l.Error("e")

	out := buf.String()
	if strings.Contains(out, "[DEBUG]") || strings.Contains(out, "[INFO]") {
		t.Errorf("filtered levels written:\n%s", out)
	}
	if !strings.Contains(out, "[WARN] test: w") || !strings.Contains(out, "[ERROR] test: e") {
		t.Errorf("missing lines:\n%s", out)
	}
	if l.Enabled(LevelInfo) || !l.Enabled(LevelError) {
		t.Error("Enabled disagrees with level")
	}
}

func TestDerivedLoggersShareSink(t *testing.T) {
	l, buf := newTestLogger(LevelError)
	child := l.WithComponent("engine")

	l.SetLevel(LevelDebug)
	child.Debug("visible")
	if !strings.Contains(buf.String(), "visible {component=engine}") {
		t.Errorf("child did not follow parent level:\n%s", buf.String())
	}

	l.Disable()
	child.Error("hidden")
	if strings.Contains(buf.String(), "hidden") {
		t.Error("disabled logger wrote output")
	}
	l.Enable()
	if l.Level() != LevelDebug {
		t.Errorf("Level = %v", l.Level())
	}
}

func TestWithFieldDoesNotMutateParent(t *testing.T) {
	l, buf := newTestLogger(LevelInfo)
	_ = l.WithField("k", "v")
	l.Info("plain")
	if strings.Contains(buf.String(), "{") {
		t.Errorf("parent picked up child field: %q", buf.String())
	}
}

func TestNull(t *testing.T) {
	l := Null()
	l.Error("dropped")
	if l.Enabled(LevelError) {
		t.Error("null logger reports enabled")
	}
	var buf bytes.Buffer
	l.SetOutput(&buf)
	l.Error("still dropped")
	if buf.Len() != 0 {
		t.Error("null logger wrote output")
	}
}

package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestLogLevelString(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{DebugLevel, "DEBUG"},
		{InfoLevel, "INFO"},
		{WarnLevel, "WARN"},
		{ErrorLevel, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.level.String(); got != tt.expected {
				t.Errorf("Level.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"DEBUG", DebugLevel},
		{"debug", DebugLevel},
		{"INFO", InfoLevel},
		{"warn", WarnLevel},
		{"WARNING", WarnLevel},
		{"error", ErrorLevel},
		{"invalid", InfoLevel}, // Default
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestFieldConstructors(t *testing.T) {
	t.Run("String", func(t *testing.T) {
		f := String("key", "value")
		if f.Key != "key" || f.Value != "value" {
			t.Errorf("String() = %+v, want {Key:key Value:value}", f)
		}
	})

	t.Run("Int", func(t *testing.T) {
		f := Int("count", 42)
		if f.Key != "count" || f.Value != 42 {
			t.Errorf("Int() = %+v, want {Key:count Value:42}", f)
		}
	})

	t.Run("ASN", func(t *testing.T) {
		f := ASN(64512)
		if f.Key != "asn" || f.Value != uint32(64512) {
			t.Errorf("ASN() = %+v", f)
		}
	})

	t.Run("Duration", func(t *testing.T) {
		f := Duration("took", 2*time.Second)
		if f.Key != "took" || f.Value != "2s" {
			t.Errorf("Duration() = %+v", f)
		}
	})

	t.Run("Elapsed", func(t *testing.T) {
		f := Elapsed(time.Second)
		if f.Key != "duration" || f.Value != "1s" {
			t.Errorf("Elapsed() = %+v", f)
		}
	})

	t.Run("Error", func(t *testing.T) {
		f := Error(errors.New("boom"))
		if f.Key != "error" || f.Value != "boom" {
			t.Errorf("Error() = %+v", f)
		}
		if f := Error(nil); f.Value != nil {
			t.Errorf("Error(nil) = %+v, want nil value", f)
		}
	})
}

func decodeLine(t *testing.T, line []byte) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(line, &entry); err != nil {
		t.Fatalf("invalid JSON log line %q: %v", line, err)
	}
	return entry
}

func TestJSONLoggerOutput(t *testing.T) {
	var buf bytes.Buffer
	log := NewJSONLogger(&buf, InfoLevel)

	log.Info("trial finished", Trial(7), PolicyName("ROV"))

	entry := decodeLine(t, buf.Bytes())
	if entry["level"] != "INFO" {
		t.Errorf("level = %v, want INFO", entry["level"])
	}
	if entry["msg"] != "trial finished" {
		t.Errorf("msg = %v", entry["msg"])
	}
	fields := entry["fields"].(map[string]any)
	if fields["trial"] != float64(7) {
		t.Errorf("trial field = %v, want 7", fields["trial"])
	}
	if fields["policy"] != "ROV" {
		t.Errorf("policy field = %v, want ROV", fields["policy"])
	}
}

func TestJSONLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewJSONLogger(&buf, WarnLevel)

	log.Debug("hidden")
	log.Info("hidden")
	log.Warn("shown")
	log.Error("shown")

	lines := strings.Count(buf.String(), "\n")
	if lines != 2 {
		t.Errorf("got %d log lines, want 2", lines)
	}

	log.SetLevel(DebugLevel)
	log.Debug("now shown")
	if got := strings.Count(buf.String(), "\n"); got != 3 {
		t.Errorf("got %d log lines after SetLevel, want 3", got)
	}
}

func TestJSONLoggerWith(t *testing.T) {
	var buf bytes.Buffer
	log := NewJSONLogger(&buf, InfoLevel)

	child := log.With(Component("engine"))
	child.Info("run complete", Count("accepted", 12))

	entry := decodeLine(t, buf.Bytes())
	fields := entry["fields"].(map[string]any)
	if fields["component"] != "engine" {
		t.Errorf("component = %v, want engine", fields["component"])
	}
	if fields["accepted"] != float64(12) {
		t.Errorf("accepted = %v, want 12", fields["accepted"])
	}

	// The parent is unaffected by the child's preset fields.
	buf.Reset()
	log.Info("plain")
	entry = decodeLine(t, buf.Bytes())
	if _, ok := entry["fields"]; ok {
		t.Errorf("parent logger leaked fields: %v", entry["fields"])
	}
}

func TestNopLogger(t *testing.T) {
	log := NewNopLogger()
	log.Info("ignored", String("k", "v"))
	log.With(Component("x")).Error("also ignored")
	log.SetLevel(DebugLevel)
}

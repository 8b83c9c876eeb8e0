package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

func TestZerologAdapter_WritesJSONForNonTerminal(t *testing.T) {
	var buf bytes.Buffer
	l := NewZerologAdapter(&buf, zerolog.DebugLevel)

	l.Warn("requirement not met",
		String("check", "runtime"),
		Bool("passed", false),
		Err(errors.New("boom")))

	var got map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if got["message"] != "requirement not met" {
		t.Errorf("message = %v", got["message"])
	}
	if got["level"] != "warn" {
		t.Errorf("level = %v", got["level"])
	}
	if got["check"] != "runtime" {
		t.Errorf("check = %v", got["check"])
	}
	if got["passed"] != false {
		t.Errorf("passed = %v", got["passed"])
	}
	if got["error"] != "boom" {
		t.Errorf("error = %v", got["error"])
	}
}

func TestZerologAdapter_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewZerologAdapter(&buf, zerolog.InfoLevel)

	l.Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug message written at info level: %q", buf.String())
	}
}

func TestWith_PrependsFields(t *testing.T) {
	var buf bytes.Buffer
	l := With(NewZerologAdapter(&buf, zerolog.DebugLevel), String("extension", "demo/demo.go"))

	l.Info("evaluated", Int("notices", 2))

	var got map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if got["extension"] != "demo/demo.go" {
		t.Errorf("extension = %v", got["extension"])
	}
	if got["notices"] != float64(2) {
		t.Errorf("notices = %v", got["notices"])
	}
}

func TestZerologAdapterWithLogger_KeepsContext(t *testing.T) {
	var buf bytes.Buffer
	l := NewZerologAdapterWithLogger(zerolog.New(&buf).With().Str("component", "gate").Logger())

	l.Info("checked", Int("notices", 1))

	var got map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if got["component"] != "gate" {
		t.Errorf("component = %v", got["component"])
	}
	if got["notices"] != float64(1) {
		t.Errorf("notices = %v", got["notices"])
	}
}

package manifestwatcher

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bft-labs/reqgate/pkg/gate"
	"github.com/bft-labs/reqgate/pkg/host"
)

// syncBuffer is a bytes.Buffer safe for the watcher goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func setup(t *testing.T, manifestBody string) (string, *host.Host) {
	t.Helper()
	root := t.TempDir()
	extDir := filepath.Join(root, "demo")
	if err := os.MkdirAll(extDir, 0o755); err != nil {
		t.Fatalf("Failed to create extension dir: %v", err)
	}
	path := filepath.Join(extDir, "plugin.toml")
	if err := os.WriteFile(path, []byte(manifestBody), 0o644); err != nil {
		t.Fatalf("Failed to write manifest: %v", err)
	}

	h, err := host.New(host.Config{
		ExtensionsDir:  root,
		RuntimeVersion: host.StaticVersion("8.1.0"),
		HostVersion:    "6.0",
	})
	if err != nil {
		t.Fatalf("host.New failed: %v", err)
	}
	return path, h
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Error("New() without manifest path should fail")
	}
	if _, err := New(Config{ManifestPath: "plugin.toml"}); err == nil {
		t.Error("New() without host should fail")
	}
}

func TestPlugin_EvaluatePasses(t *testing.T) {
	path, h := setup(t, `title = "Demo"
php = "8.0"
wp = "5.9"
main = "demo.php"
`)
	var out bytes.Buffer
	p, err := New(Config{ManifestPath: path, Host: h, Output: &out})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	res := p.Evaluate()
	if res.Err != nil {
		t.Fatalf("Evaluate error: %v", res.Err)
	}
	if !res.Passed {
		t.Error("Passed = false, want true")
	}
	if len(res.Fired) != 0 {
		t.Errorf("Fired = %v, want none", res.Fired)
	}
	if out.Len() != 0 {
		t.Errorf("unexpected output: %q", out.String())
	}
}

func TestPlugin_EvaluateFailsAndDeactivates(t *testing.T) {
	path, h := setup(t, `title = "Demo"
php = "8.2"
wp = "6.5"
main = "demo.php"
`)
	var out bytes.Buffer
	p, err := New(Config{ManifestPath: path, Host: h, Output: &out})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	res := p.Evaluate()
	if res.Err != nil {
		t.Fatalf("Evaluate error: %v", res.Err)
	}
	if res.Passed {
		t.Error("Passed = true, want false")
	}
	want := []string{gate.CallbackRuntimeNotice, gate.CallbackHostNotice, gate.CallbackDeactivate}
	if strings.Join(res.Fired, ",") != strings.Join(want, ",") {
		t.Errorf("Fired = %v, want %v", res.Fired, want)
	}
	if !strings.Contains(out.String(), "PHP versions older than 8.2") {
		t.Errorf("runtime notice missing from output: %q", out.String())
	}
	if !h.IsDeactivated("demo/demo.php") {
		t.Errorf("demo/demo.php not deactivated, have %v", h.Deactivated())
	}
}

func TestPlugin_SettingsOverride(t *testing.T) {
	path, h := setup(t, `php = "9.0"`)
	p, err := New(Config{
		ManifestPath: path,
		Host:         h,
		Settings: func(m map[string]interface{}) map[string]interface{} {
			m["php"] = "7.4"
			return m
		},
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if res := p.Evaluate(); !res.Passed {
		t.Errorf("Evaluate() = %+v, want passed", res)
	}
}

func TestPlugin_EvaluateBadManifest(t *testing.T) {
	path, h := setup(t, `php = `)
	var got Result
	p, err := New(Config{ManifestPath: path, Host: h, OnResult: func(r Result) { got = r }})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	res := p.Evaluate()
	if res.Err == nil || res.Passed {
		t.Errorf("Evaluate() = %+v, want error", res)
	}
	if got.Err == nil {
		t.Error("OnResult not called with error")
	}
}

func TestPlugin_ReevaluatesOnChange(t *testing.T) {
	path, h := setup(t, `php = "8.0"
main = "demo.php"
`)
	results := make(chan Result, 10)
	out := &syncBuffer{}
	p, err := New(Config{
		ManifestPath:  path,
		Host:          h,
		Output:        out,
		DebounceDelay: 10 * time.Millisecond,
		OnResult:      func(r Result) { results <- r },
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := p.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	select {
	case r := <-results:
		if !r.Passed {
			t.Fatalf("initial evaluation = %+v, want passed", r)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no initial evaluation")
	}

	if err := os.WriteFile(path, []byte("php = \"8.3\"\nmain = \"demo.php\"\n"), 0o644); err != nil {
		t.Fatalf("Failed to update manifest: %v", err)
	}

	deadline := time.After(5 * time.Second)
	for {
		select {
		case r := <-results:
			if r.Passed {
				continue
			}
			if !h.IsDeactivated("demo/demo.php") {
				t.Error("extension not deactivated after failing re-evaluation")
			}
			if !strings.Contains(out.String(), "older than 8.3") {
				t.Errorf("output = %q, want runtime notice", out.String())
			}
			if err := p.Shutdown(context.Background()); err != nil {
				t.Errorf("Shutdown failed: %v", err)
			}
			return
		case <-deadline:
			t.Fatal("manifest change was not re-evaluated")
		}
	}
}

func TestPlugin_ShutdownWaitsForDebouncedEvaluation(t *testing.T) {
	path, h := setup(t, `php = "8.0"`)
	entered := make(chan struct{})
	release := make(chan struct{})
	var calls int
	p, err := New(Config{
		ManifestPath:  path,
		Host:          h,
		DebounceDelay: time.Millisecond,
		OnResult: func(Result) {
			calls++
			if calls == 2 {
				close(entered)
				<-release
			}
		},
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	p.debounceEvaluate(context.Background())
	select {
	case <-entered:
	case <-time.After(2 * time.Second):
		t.Fatal("debounced evaluation did not run")
	}

	done := make(chan error, 1)
	go func() { done <- p.Shutdown(context.Background()) }()

	select {
	case <-done:
		t.Fatal("Shutdown returned while an evaluation was running")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Shutdown failed: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Shutdown did not return after the evaluation finished")
	}
}

func TestPlugin_ShutdownWithoutStart(t *testing.T) {
	path, h := setup(t, `php = "8.0"`)
	p, err := New(Config{ManifestPath: path, Host: h})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown failed: %v", err)
	}
}

// Package manifestwatcher re-evaluates an extension's requirements whenever
// its manifest changes.
//
// The plugin watches the manifest's directory with fsnotify, debounces
// write and create events, rebuilds the gate from the new manifest and fires
// the host's notice event so that the result is rendered immediately.
package manifestwatcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/reqgate/internal/manifest"
	"github.com/bft-labs/reqgate/pkg/gate"
	"github.com/bft-labs/reqgate/pkg/host"
	"github.com/bft-labs/reqgate/pkg/log"
)

// Result is the outcome of one evaluation.
type Result struct {
	Passed bool
	// Fired lists the callbacks that ran, in order.
	Fired []string
	// Err is set when the manifest could not be loaded or a callback failed.
	// Passed is false whenever Err is set.
	Err error
}

// Config holds configuration options for the manifest watcher.
type Config struct {
	// ManifestPath is the manifest file to watch.
	ManifestPath string

	// Host receives the deferred callbacks. Required.
	Host *host.Host

	// Output receives rendered notices. Default: io.Discard
	Output io.Writer

	// DebounceDelay is how long to wait after the last change before
	// re-evaluating. Default: 100ms
	DebounceDelay time.Duration

	// Settings, if set, adjusts the manifest mapping before the gate is built.
	Settings func(map[string]interface{}) map[string]interface{}

	// OnResult, if set, is called after every evaluation.
	OnResult func(Result)

	// Logger defaults to a no-op logger.
	Logger log.Logger
}

// Plugin implements manifest watching.
type Plugin struct {
	mu sync.Mutex

	manifestPath  string
	host          *host.Host
	output        io.Writer
	debounceDelay time.Duration
	settings      func(map[string]interface{}) map[string]interface{}
	onResult      func(Result)
	logger        log.Logger

	evalMu   sync.Mutex
	debounce *time.Timer
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// New creates a new manifest watcher plugin with the given configuration.
func New(cfg Config) (*Plugin, error) {
	if cfg.ManifestPath == "" {
		return nil, errors.New("manifestwatcher: manifest path is required")
	}
	if cfg.Host == nil {
		return nil, errors.New("manifestwatcher: host is required")
	}
	if cfg.Output == nil {
		cfg.Output = io.Discard
	}
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = 100 * time.Millisecond
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NewNoopLogger()
	}

	path, err := filepath.Abs(cfg.ManifestPath)
	if err != nil {
		return nil, fmt.Errorf("manifestwatcher: %w", err)
	}

	return &Plugin{
		manifestPath:  path,
		host:          cfg.Host,
		output:        cfg.Output,
		debounceDelay: cfg.DebounceDelay,
		settings:      cfg.Settings,
		onResult:      cfg.OnResult,
		logger:        log.With(cfg.Logger, log.String("plugin", "manifestwatcher")),
	}, nil
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "manifestwatcher"
}

// Evaluate loads the manifest, runs the gate once and fires the notice
// event into the configured output.
func (p *Plugin) Evaluate() Result {
	p.evalMu.Lock()
	defer p.evalMu.Unlock()
	return p.evaluateLocked()
}

func (p *Plugin) evaluateLocked() Result {
	res := p.evaluate()
	if res.Err != nil {
		p.logger.Error("evaluation failed", log.Err(res.Err))
	} else {
		p.logger.Info("requirements evaluated",
			log.Bool("passed", res.Passed),
			log.Strings("fired", res.Fired))
	}
	if p.onResult != nil {
		p.onResult(res)
	}
	return res
}

func (p *Plugin) evaluate() Result {
	m, err := manifest.Load(p.manifestPath)
	if err != nil {
		return Result{Err: err}
	}
	if p.settings != nil {
		m = p.settings(m)
	}
	cfg, err := gate.ConfigFromMap(m)
	if err != nil {
		return Result{Err: err}
	}
	g, err := gate.New(cfg, p.host, gate.WithLogger(p.logger))
	if err != nil {
		return Result{Err: err}
	}

	passed := g.Passes()
	fired := p.host.Pending(gate.EventAdminNotices)
	if err := p.host.Fire(gate.EventAdminNotices, p.output); err != nil {
		return Result{Fired: fired, Err: err}
	}
	return Result{Passed: passed, Fired: fired}
}

// Start evaluates once and then watches the manifest until ctx is cancelled
// or Shutdown is called.
func (p *Plugin) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("manifestwatcher: create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(p.manifestPath)); err != nil {
		watcher.Close()
		return fmt.Errorf("manifestwatcher: watch %s: %w", filepath.Dir(p.manifestPath), err)
	}

	watchCtx, cancel := context.WithCancel(ctx)
	p.mu.Lock()
	p.cancel = cancel
	p.mu.Unlock()

	p.Evaluate()

	p.wg.Add(1)
	go p.watchLoop(watchCtx, watcher)

	p.logger.Info("watching manifest", log.String("path", p.manifestPath))
	return nil
}

// Shutdown stops the watcher and waits for the loop to exit.
func (p *Plugin) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
	}
	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		// Wait out an evaluation started by the debounce timer.
		p.evalMu.Lock()
		p.evalMu.Unlock()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Plugin) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer p.wg.Done()
	defer watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != p.manifestPath {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			p.debounceEvaluate(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			p.logger.Error("watcher error", log.Err(err))
		}
	}
}

func (p *Plugin) debounceEvaluate(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.debounce = time.AfterFunc(p.debounceDelay, func() {
		p.evalMu.Lock()
		defer p.evalMu.Unlock()
		if ctx.Err() != nil {
			return
		}
		p.evaluateLocked()
	})
}

package host

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bft-labs/reqgate/pkg/gate"
	"github.com/bft-labs/reqgate/pkg/log"
	"github.com/bft-labs/reqgate/pkg/state"
)

// Config configures a Host.
type Config struct {
	// ExtensionsDir is the base directory identifiers are resolved against.
	ExtensionsDir string

	// RuntimeVersion reports the runtime version. Default: GoRuntimeVersion().
	RuntimeVersion VersionSource

	// HostVersion is the version of the hosting application.
	HostVersion string

	// StateDir is where deactivations are persisted. Empty keeps them in
	// memory. Ignored when Repository is set.
	StateDir string

	// Repository overrides the deactivation store.
	Repository state.Repository

	// Logger defaults to a no-op logger.
	Logger log.Logger
}

// Host implements gate.Host.
type Host struct {
	mu sync.Mutex

	extensionsDir  string
	runtimeVersion VersionSource
	hostVersion    string
	repo           state.Repository
	state          state.State
	pending        map[string][]gate.Callback
	logger         log.Logger
	now            func() time.Time
}

var _ gate.Host = (*Host)(nil)

// New creates a Host and loads previously persisted deactivations.
func New(cfg Config) (*Host, error) {
	if cfg.RuntimeVersion == nil {
		cfg.RuntimeVersion = GoRuntimeVersion()
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NewNoopLogger()
	}
	repo := cfg.Repository
	if repo == nil {
		if cfg.StateDir != "" {
			repo = state.NewFileRepository(cfg.StateDir)
		} else {
			repo = state.NewMemoryRepository()
		}
	}

	st, err := repo.Load(context.Background())
	if err != nil {
		return nil, fmt.Errorf("load deactivation state: %w", err)
	}

	extDir := cfg.ExtensionsDir
	if extDir != "" {
		extDir = filepath.Clean(extDir)
	}

	return &Host{
		extensionsDir:  extDir,
		runtimeVersion: cfg.RuntimeVersion,
		hostVersion:    cfg.HostVersion,
		repo:           repo,
		state:          st,
		pending:        make(map[string][]gate.Callback),
		logger:         cfg.Logger,
		now:            time.Now,
	}, nil
}

// RuntimeVersion returns the configured runtime version.
func (h *Host) RuntimeVersion() string {
	return h.runtimeVersion()
}

// HostVersion returns the configured host version.
func (h *Host) HostVersion() string {
	return h.hostVersion
}

// RegisterDeferred appends cb to the pending callbacks of event.
func (h *Host) RegisterDeferred(event string, cb gate.Callback) {
	h.mu.Lock()
	h.pending[event] = append(h.pending[event], cb)
	h.mu.Unlock()

	h.logger.Debug("callback registered", log.String("event", event), log.String("callback", cb.Name))
}

// Pending lists the names of callbacks waiting on event, in run order.
func (h *Host) Pending(event string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	names := make([]string, 0, len(h.pending[event]))
	for _, cb := range h.pending[event] {
		names = append(names, cb.Name)
	}
	return names
}

// Fire runs and removes the callbacks pending on event in registration
// order, writing their output to w. Every callback runs even if an earlier
// one fails; the returned error joins all failures.
func (h *Host) Fire(event string, w io.Writer) error {
	h.mu.Lock()
	cbs := h.pending[event]
	delete(h.pending, event)
	h.mu.Unlock()

	var errs []error
	for _, cb := range cbs {
		if cb.Fn == nil {
			continue
		}
		if err := cb.Fn(w); err != nil {
			h.logger.Error("callback failed",
				log.String("event", event),
				log.String("callback", cb.Name),
				log.Err(err))
			errs = append(errs, fmt.Errorf("%s: %w", cb.Name, err))
		}
	}
	h.logger.Debug("event fired", log.String("event", event), log.Int("callbacks", len(cbs)))
	return errors.Join(errs...)
}

// DeactivateExtension records id as deactivated and persists the state.
// Deactivating an already deactivated extension is a no-op.
func (h *Host) DeactivateExtension(id string) error {
	if id == "" {
		return errors.New("empty extension identifier")
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	next := h.state
	next.Deactivated = append([]state.Deactivation(nil), h.state.Deactivated...)
	if !next.Deactivate(id, h.now()) {
		return nil
	}
	if err := h.repo.Save(context.Background(), next); err != nil {
		return fmt.Errorf("save deactivation state: %w", err)
	}
	h.state = next
	return nil
}

// Reactivate clears a previous deactivation of id.
func (h *Host) Reactivate(id string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	next := h.state
	next.Deactivated = append([]state.Deactivation(nil), h.state.Deactivated...)
	if !next.Reactivate(id) {
		return nil
	}
	if err := h.repo.Save(context.Background(), next); err != nil {
		return fmt.Errorf("save deactivation state: %w", err)
	}
	h.state = next
	return nil
}

// IsDeactivated reports whether id has been deactivated.
func (h *Host) IsDeactivated(id string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state.IsDeactivated(id)
}

// Deactivated lists all deactivated identifiers.
func (h *Host) Deactivated() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state.IDs()
}

// ResolveIdentifier returns path relative to the extensions directory using
// forward slashes. Paths outside it resolve to "<parent dir>/<file>".
func (h *Host) ResolveIdentifier(path string) string {
	if path == "" {
		return ""
	}
	clean := filepath.Clean(path)
	if h.extensionsDir != "" {
		rel, err := filepath.Rel(h.extensionsDir, clean)
		if err == nil && rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return filepath.ToSlash(rel)
		}
	}
	return filepath.ToSlash(filepath.Join(filepath.Base(filepath.Dir(clean)), filepath.Base(clean)))
}

// EscapeHTML escapes s for inclusion in HTML text or attribute values.
func (h *Host) EscapeHTML(s string) string {
	return html.EscapeString(s)
}

package gate

import (
	"fmt"
	"io"

	"github.com/bft-labs/reqgate/pkg/log"
)

// Gate checks an extension's runtime and host version requirements.
// It is evaluated once per bootstrap and never mutated after New.
type Gate struct {
	cfg    Config
	host   Host
	event  string
	logger log.Logger
}

// New creates a Gate for cfg. Empty version and label fields get defaults;
// version syntax is not validated here.
func New(cfg Config, host Host, opts ...Option) (*Gate, error) {
	if host == nil {
		return nil, ErrNilHost
	}
	cfg.SetDefaults()

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	return &Gate{
		cfg:    cfg,
		host:   host,
		event:  o.event,
		logger: log.With(o.logger, log.String("extension", cfg.Title)),
	}, nil
}

// Config returns a copy of the gate's configuration.
func (g *Gate) Config() Config {
	return g.cfg
}

// Passes reports whether all requirements are met. Both checks always run so
// that every unmet requirement gets its own notice. On failure a deferred
// deactivation is registered after the notices.
//
// Callers must not load functionality that depends on the minimum versions
// when Passes returns false.
func (g *Gate) Passes() bool {
	runtimeOK := g.runtimePasses()
	hostOK := g.hostPasses()
	passes := runtimeOK && hostOK

	if !passes {
		g.host.RegisterDeferred(g.event, Callback{
			Name: CallbackDeactivate,
			Fn:   func(io.Writer) error { return g.Deactivate() },
		})
		g.logger.Warn("requirements not met, deactivation scheduled",
			log.Bool("runtime_ok", runtimeOK),
			log.Bool("host_ok", hostOK))
	}
	return passes
}

func (g *Gate) runtimePasses() bool {
	current := g.host.RuntimeVersion()
	ok := IsVersionAtLeast(current, g.cfg.MinRuntimeVersion)
	g.logger.Debug("runtime version check",
		log.String("current", current),
		log.String("required", g.cfg.MinRuntimeVersion),
		log.Bool("passed", ok))
	if ok {
		return true
	}
	g.host.RegisterDeferred(g.event, Callback{
		Name: CallbackRuntimeNotice,
		Fn:   g.RuntimeVersionNotice,
	})
	return false
}

func (g *Gate) hostPasses() bool {
	current := g.host.HostVersion()
	ok := IsVersionAtLeast(current, g.cfg.MinHostVersion)
	g.logger.Debug("host version check",
		log.String("current", current),
		log.String("required", g.cfg.MinHostVersion),
		log.Bool("passed", ok))
	if ok {
		return true
	}
	g.host.RegisterDeferred(g.event, Callback{
		Name: CallbackHostNotice,
		Fn:   g.HostVersionNotice,
	})
	return false
}

// Deactivate asks the host to disable the extension addressed by cfg.File.
// Without a file there is nothing to address and Deactivate does nothing.
func (g *Gate) Deactivate() error {
	if g.cfg.File == "" {
		g.logger.Warn("no extension file configured, skipping deactivation")
		return nil
	}
	id := g.host.ResolveIdentifier(g.cfg.File)
	if err := g.host.DeactivateExtension(id); err != nil {
		g.logger.Error("deactivation failed", log.String("id", id), log.Err(err))
		return fmt.Errorf("deactivate %s: %w", id, err)
	}
	g.logger.Info("extension deactivated", log.String("id", id))
	return nil
}

// Package reqgate checks that an extension's runtime and host framework
// meet their minimum versions before the extension is loaded.
//
// Example usage:
//
//	h, err := host.New(host.Config{
//	    ExtensionsDir: "/srv/app/extensions",
//	    HostVersion:   appVersion,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	g, err := reqgate.New(reqgate.Config{
//	    Title:             "Demo",
//	    MinRuntimeVersion: "1.22",
//	    File:              "/srv/app/extensions/demo/main.go",
//	}, h)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !g.Passes() {
//	    return // the host renders the notices and deactivates the extension
//	}
package reqgate

import (
	"fmt"
	"sort"

	"github.com/bft-labs/reqgate/pkg/gate"
	"github.com/bft-labs/reqgate/pkg/host"
	"github.com/bft-labs/reqgate/pkg/log"
	"github.com/bft-labs/reqgate/pkg/state"
)

// Re-exported gate types.
type (
	Gate     = gate.Gate
	Config   = gate.Config
	Host     = gate.Host
	Callback = gate.Callback
	Option   = gate.Option
)

// EventAdminNotices is the event deferred callbacks are registered on by default.
const EventAdminNotices = gate.EventAdminNotices

// New creates a Gate. See gate.New.
func New(cfg Config, h Host, opts ...Option) (*Gate, error) {
	return gate.New(cfg, h, opts...)
}

// DefaultConfig returns a Config with the default minimum versions.
func DefaultConfig() Config {
	return gate.DefaultConfig()
}

// ConfigFromMap builds a Config from a settings mapping. See gate.ConfigFromMap.
func ConfigFromMap(m map[string]interface{}) (Config, error) {
	return gate.ConfigFromMap(m)
}

// IsVersionAtLeast reports whether current >= required.
func IsVersionAtLeast(current, required string) bool {
	return gate.IsVersionAtLeast(current, required)
}

type moduleVersion struct {
	version    string
	minVersion string
}

var modules = map[string]moduleVersion{
	"gate":  {gate.Version, gate.MinCompatibleVersion},
	"host":  {host.Version, host.MinCompatibleVersion},
	"log":   {log.Version, log.MinCompatibleVersion},
	"state": {state.Version, state.MinCompatibleVersion},
}

// ModuleVersions returns the version of every sub-module, keyed by name.
func ModuleVersions() map[string]string {
	out := make(map[string]string, len(modules))
	for name, m := range modules {
		out[name] = m.version
	}
	return out
}

// CheckModuleVersions returns an error if any sub-module is older than its
// minimum compatible version.
func CheckModuleVersions() error {
	names := make([]string, 0, len(modules))
	for name := range modules {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		m := modules[name]
		if !gate.IsVersionAtLeast(m.version, m.minVersion) {
			return fmt.Errorf("module %s version %s is below minimum compatible version %s",
				name, m.version, m.minVersion)
		}
	}
	return nil
}

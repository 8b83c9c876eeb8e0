// Package host is a reference implementation of gate.Host.
//
// It keeps the process-wide list of deferred callbacks, grouped by event,
// and runs them when the application reaches its render step:
//
//	h, _ := host.New(host.Config{
//	    ExtensionsDir:  "/srv/app/extensions",
//	    RuntimeVersion: host.GoRuntimeVersion(),
//	    HostVersion:    "2.3.0",
//	    StateDir:       "/var/lib/app",
//	})
//	g, _ := gate.New(cfg, h)
//	if g.Passes() {
//	    loadExtension()
//	}
//	// ... later ...
//	h.Fire(gate.EventAdminNotices, w)
//
// Deactivations are recorded in a state.Repository so they outlive the
// current process.
package host

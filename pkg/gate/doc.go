// Package gate implements a minimum-version precondition check for host
// extensions.
//
// A [Gate] compares the host's runtime version and framework version against
// configured minimums. When either is too old, [Gate.Passes] returns false
// and registers deferred callbacks with the host: one notice per unmet
// requirement, followed by a request to deactivate the extension. Nothing is
// rendered or deactivated until the host fires the notice event.
//
// # Usage
//
//	cfg := gate.DefaultConfig()
//	cfg.Title = "My Extension"
//	cfg.MinRuntimeVersion = "8.0"
//	cfg.File = "/srv/app/extensions/my-extension/main.go"
//
//	g, err := gate.New(cfg, h)
//	if err != nil {
//	    return err
//	}
//	if !g.Passes() {
//	    return nil // skip loading the rest of the extension
//	}
//
// # Host
//
// All ambient state comes through the [Host] interface: the two version
// queries, deferred callback registration, deactivation, identifier
// resolution and HTML escaping. The host package provides a reference
// implementation; tests substitute their own.
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
//
// See version.go for version constants that can be used programmatically.
package gate

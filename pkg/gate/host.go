package gate

import "io"

// EventAdminNotices is the default event deferred callbacks are registered on.
const EventAdminNotices = "admin_notices"

// Callback names used when registering with the host.
const (
	CallbackDeactivate    = "deactivate"
	CallbackRuntimeNotice = "runtime_version_notice"
	CallbackHostNotice    = "host_version_notice"
)

// Callback is a deferred action. The host invokes Fn when it fires the event
// the callback was registered on, passing its notice output.
type Callback struct {
	Name string
	Fn   func(w io.Writer) error
}

// Host supplies everything a Gate needs from the application hosting the
// extension.
type Host interface {
	// RuntimeVersion returns the version of the running runtime.
	RuntimeVersion() string

	// HostVersion returns the version of the host framework.
	HostVersion() string

	// RegisterDeferred schedules cb to run when the host fires event.
	RegisterDeferred(event string, cb Callback)

	// DeactivateExtension disables the extension addressed by id.
	DeactivateExtension(id string) error

	// ResolveIdentifier maps a file path to the host's extension identifier.
	ResolveIdentifier(path string) string

	// EscapeHTML escapes s for inclusion in rendered markup.
	EscapeHTML(s string) string
}

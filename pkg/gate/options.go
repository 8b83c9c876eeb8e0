package gate

import "github.com/bft-labs/reqgate/pkg/log"

// Option configures optional behavior of a Gate.
type Option func(*options)

type options struct {
	logger log.Logger
	event  string
}

func defaultOptions() options {
	return options{
		logger: log.NewNoopLogger(),
		event:  EventAdminNotices,
	}
}

// WithLogger sets the logger. If not provided, nothing is logged.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithEvent changes the host event deferred callbacks are registered on.
func WithEvent(event string) Option {
	return func(o *options) {
		if event != "" {
			o.event = event
		}
	}
}

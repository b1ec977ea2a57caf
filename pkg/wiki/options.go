package wiki

import "log/slog"

type config struct {
	logger           *slog.Logger
	initialWorkspace int
}

// Option configures a component.
type Option func(*config)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithInitialWorkspace starts the navigation inside workspace id instead
// of the workspace list.
func WithInitialWorkspace(id int) Option {
	return func(c *config) {
		c.initialWorkspace = id
	}
}

func newConfig(opts []Option) config {
	c := config{logger: slog.Default()}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

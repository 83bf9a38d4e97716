package wqloader

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/xerrors"
)

// Option configures Loader.
type Option interface {
	apply(*loader) error
}

type optionFunc func(*loader) error

func (f optionFunc) apply(l *loader) error {
	return f(l)
}

// WithPrettyLogging configures Loader to print human friendly logs.
func WithPrettyLogging() Option {
	return optionFunc(func(l *loader) error {
		l.prettyLogging = true
		return nil
	})
}

// WithLogLevel sets the minimum level such as "debug" or "warn".
func WithLogLevel(level string) Option {
	return optionFunc(func(l *loader) error {
		lvl, err := zerolog.ParseLevel(level)
		if err != nil {
			return xerrors.Errorf("invalid log level %q: %w", level, err)
		}
		l.logLevel = lvl
		return nil
	})
}

// WithMetrics registers the loader's counters on r.
func WithMetrics(r prometheus.Registerer) Option {
	return optionFunc(func(l *loader) error {
		l.registerer = r
		return nil
	})
}

package wqloader

import (
	"context"
	"os"
	"sync"

	"cloud.google.com/go/functions/metadata"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"
	"golang.org/x/xerrors"
)

// Loader dispatches source files to the handlers whose pattern they match.
type Loader interface {
	AddHandler(context.Context, *Handler) error
	Handle(context.Context, Event) error
	MustAddHandler(context.Context, *Handler)
}

// New builds a new Loader.
func New(opts ...Option) (Loader, error) {
	l := &loader{
		handlers: []*Handler{},
		logLevel: zerolog.InfoLevel,
		sem:      semaphore.NewWeighted(1),
	}

	for _, o := range opts {
		if err := o.apply(l); err != nil {
			return nil, xerrors.Errorf("failed to apply option: %w", err)
		}
	}

	if l.prettyLogging {
		l.logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		l.logger = zerolog.New(os.Stderr)
	}
	l.logger = l.logger.Level(l.logLevel).With().Timestamp().Logger()

	m, err := newMetrics(l.registerer)
	if err != nil {
		return nil, xerrors.Errorf("failed to register metrics: %w", err)
	}
	l.metrics = m

	return l, nil
}

type loader struct {
	handlers []*Handler
	mu       sync.RWMutex

	// One batch at a time: a file is finished before the next starts.
	sem *semaphore.Weighted

	logger        zerolog.Logger
	prettyLogging bool
	logLevel      zerolog.Level

	registerer prometheus.Registerer
	metrics    *metrics
}

func (l *loader) AddHandler(ctx context.Context, h *Handler) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if h.Pattern == nil {
		return xerrors.Errorf("handler %s has no pattern", h.Name)
	}
	if h.Transformer == nil {
		return xerrors.Errorf("handler %s has no transformer", h.Name)
	}
	if h.Loader == nil {
		return xerrors.Errorf("handler %s has no warehouse loader", h.Name)
	}

	if h.Parser == nil {
		h.Parser = CSVParser()
	}
	if h.Extractor == nil {
		h.Extractor = &FileExtractor{}
	}

	h.metrics = l.metrics
	l.handlers = append(l.handlers, h)

	return nil
}

func (l *loader) MustAddHandler(ctx context.Context, h *Handler) {
	if err := l.AddHandler(ctx, h); err != nil {
		panic(err)
	}
}

func (l *loader) Handle(ctx context.Context, e Event) error {
	ctx = withStartedTime(ctx)

	lc := l.logger.With().
		Str("run_id", uuid.NewString()).
		Str("file", e.FullPath())
	if md, err := metadata.FromContext(ctx); err == nil {
		lc = lc.Str("event_id", md.EventID)
	}
	logger := lc.Logger()
	ctx = logger.WithContext(ctx)

	if err := l.sem.Acquire(ctx, 1); err != nil {
		return xerrors.Errorf("failed to wait for the running batch: %w", err)
	}
	defer l.sem.Release(1)

	logger.Info().Msg("loader started")
	defer logger.Info().Msg("loader finished")

	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, h := range l.handlers {
		if !h.match(e.Name) {
			continue
		}

		hl := logger.With().Str("handler", h.Name).Logger()
		if err := h.handle(hl.WithContext(ctx), e); err != nil {
			hl.Error().Err(err).Str("kind", string(KindOf(err))).Msg("failed to handle file")
			return xerrors.Errorf("handler %s failed: %w", h.Name, err)
		}
	}

	return nil
}

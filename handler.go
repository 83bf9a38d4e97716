package wqloader

import (
	"context"
	"regexp"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/xerrors"

	"github.com/kernwater/wqloader/schema"
	"github.com/kernwater/wqloader/warehouse"
)

// Handler defines how to handle events which match specified pattern.
type Handler struct {
	// Name is the handler's name.
	Name string

	Pattern *regexp.Regexp

	// Encoding of the source file. Nil means UTF-8 with an optional BOM.
	Encoding        encoding.Encoding
	Parser          Parser
	SkipLeadingRows int

	Transformer Transformer
	Snapshotter Snapshotter
	Loader      warehouse.Loader
	Archiver    Archiver
	Notifier    Notifier
	Extractor   Extractor

	metrics *metrics
}

// Transformer turns parsed rows into a typed batch.
type Transformer interface {
	Decode([][]string) ([]schema.Record, error)
	Transform(context.Context, []schema.Record) (*schema.Batch, error)
}

// Excluder is implemented by transformers that can reject a whole file.
type Excluder interface {
	Excluded([]schema.Record) bool
}

// Snapshotter keeps a durable copy of a cleaned batch. source is the name of
// the file the batch was cleaned from.
type Snapshotter interface {
	Write(ctx context.Context, source string, batch *schema.Batch) (string, error)
}

func (h *Handler) match(name string) bool {
	return h.Pattern != nil && h.Pattern.MatchString(name)
}

func (h *Handler) handle(ctx context.Context, e Event) error {
	res := &Result{Event: e, Handler: h}

	res.Error = h.process(ctx, e, res)

	if started, ok := startedTimeFrom(ctx); ok {
		res.Elapsed = time.Since(started)
	}
	if h.metrics != nil {
		h.metrics.observe(res)
	}
	if h.Notifier != nil {
		if err := h.Notifier.Notify(ctx, res); err != nil {
			log.Ctx(ctx).Warn().Err(err).Msg("failed to notify")
		}
	}

	return res.Error
}

func (h *Handler) process(ctx context.Context, e Event, res *Result) error {
	l := log.Ctx(ctx)

	r, closer, err := h.Extractor.Extract(ctx, e)
	if err != nil {
		return xerrors.Errorf("failed to extract: %w", err)
	}
	defer closer()

	if h.Encoding != nil {
		r = transform.NewReader(r, h.Encoding.NewDecoder())
	} else {
		r = transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	}

	source, err := h.Parser(ctx, r)
	if err != nil {
		l.Error().Err(err).Msg("failed to parse file")
		return xerrors.Errorf("failed to parse: %w", err)
	}
	if h.SkipLeadingRows > len(source) {
		return xerrors.Errorf("file has %d rows, fewer than the %d to skip", len(source), h.SkipLeadingRows)
	}
	source = source[h.SkipLeadingRows:]

	records, err := h.Transformer.Decode(source)
	if err != nil {
		return xerrors.Errorf("failed to decode: %w", err)
	}

	if ex, ok := h.Transformer.(Excluder); ok && ex.Excluded(records) {
		l.Info().Int("records", len(records)).Msg("file belongs to an excluded site")
		res.Excluded = true
		return h.archive(ctx, e, true)
	}

	batch, err := h.Transformer.Transform(ctx, records)
	if err != nil {
		return xerrors.Errorf("failed to transform: %w", err)
	}

	if batch.Len() == 0 {
		l.Info().Msg("no rows left after filtering")
		return h.archive(ctx, e, false)
	}

	if h.Snapshotter != nil {
		path, err := h.Snapshotter.Write(ctx, e.Name, batch)
		if err != nil {
			return xerrors.Errorf("failed to write snapshot: %w", err)
		}
		res.Snapshot = path
	}

	n, err := h.Loader.Load(ctx, batch)
	res.Rows = n
	if err != nil {
		return xerrors.Errorf("failed to load: %w", err)
	}

	return h.archive(ctx, e, false)
}

func (h *Handler) archive(ctx context.Context, e Event, remove bool) error {
	if h.Archiver == nil {
		return nil
	}

	var err error
	if remove {
		err = h.Archiver.Remove(ctx, e)
	} else {
		err = h.Archiver.Archive(ctx, e)
	}
	if err != nil {
		return xerrors.Errorf("failed to archive: %w", err)
	}

	return nil
}

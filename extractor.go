package wqloader

import (
	"context"
	"io"
	"os"

	"cloud.google.com/go/storage"
	"github.com/rs/zerolog/log"
	"golang.org/x/xerrors"
)

// Extractor opens the source file of an event.
type Extractor interface {
	Extract(context.Context, Event) (io.Reader, func(), error)
}

// FileExtractor reads events from the local file system.
type FileExtractor struct{}

// Extract opens e.Name.
func (*FileExtractor) Extract(ctx context.Context, e Event) (io.Reader, func(), error) {
	if e.source != nil {
		return e.source, func() {}, nil
	}

	f, err := os.Open(e.FullPath())
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to open file")
		return nil, nil, xerrors.Errorf("failed to open %s: %w", e.FullPath(), err)
	}

	return f, func() { f.Close() }, nil
}

// GCSExtractor reads events from Cloud Storage.
type GCSExtractor struct {
	Client *storage.Client
}

// NewGCSExtractor builds a GCSExtractor with a default client.
func NewGCSExtractor(ctx context.Context) (*GCSExtractor, error) {
	c, err := storage.NewClient(ctx)
	if err != nil {
		return nil, xerrors.Errorf("failed to build storage client: %w", err)
	}

	return &GCSExtractor{Client: c}, nil
}

// Extract opens the object e.Bucket/e.Name.
func (x *GCSExtractor) Extract(ctx context.Context, e Event) (io.Reader, func(), error) {
	obj := x.Client.Bucket(e.Bucket).Object(e.Name)
	r, err := obj.NewReader(ctx)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to initialize object reader")
		return nil, nil, xerrors.Errorf("failed to get reader of %s: %w", e.FullPath(), err)
	}

	return r, func() { r.Close() }, nil
}

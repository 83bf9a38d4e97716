package wqloader

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/rs/zerolog/log"
	"golang.org/x/xerrors"
)

// Archiver disposes of a source file once it has been handled.
type Archiver interface {
	// Archive is called after a successful load or an empty batch.
	Archive(context.Context, Event) error
	// Remove is called for files of excluded sites.
	Remove(context.Context, Event) error
}

// FileArchiver moves loaded files into Dir, tagged with the processing date.
// When Dir is empty they are removed instead.
type FileArchiver struct {
	Dir string
	Now func() time.Time
}

// Archive moves the file to Dir/<stem>_<YYYY-MM-DD><ext>.
func (a *FileArchiver) Archive(ctx context.Context, e Event) error {
	if a.Dir == "" {
		return a.Remove(ctx, e)
	}

	src := e.FullPath()
	dst := filepath.Join(a.Dir, datedName(filepath.Base(src), a.now()))

	if err := os.MkdirAll(a.Dir, 0o755); err != nil {
		return xerrors.Errorf("failed to create %s: %w", a.Dir, err)
	}
	if err := os.Rename(src, dst); err != nil {
		return xerrors.Errorf("failed to move %s: %w", src, err)
	}

	log.Ctx(ctx).Info().Str("to", dst).Msg("archived file")

	return nil
}

// Remove deletes the file.
func (a *FileArchiver) Remove(ctx context.Context, e Event) error {
	if err := os.Remove(e.FullPath()); err != nil {
		return xerrors.Errorf("failed to remove %s: %w", e.FullPath(), err)
	}

	log.Ctx(ctx).Info().Msg("removed file")

	return nil
}

func (a *FileArchiver) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func datedName(base string, t time.Time) string {
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext) + "_" + t.Format("2006-01-02") + ext
}

// GCSArchiver copies loaded objects to Bucket under Prefix, tagged with the
// processing date, and deletes the source. When Bucket is empty objects are
// only deleted.
type GCSArchiver struct {
	Client *storage.Client
	Bucket string
	Prefix string
	Now    func() time.Time
}

// Archive copies the object and deletes the source.
func (a *GCSArchiver) Archive(ctx context.Context, e Event) error {
	if a.Bucket == "" {
		return a.Remove(ctx, e)
	}

	now := time.Now
	if a.Now != nil {
		now = a.Now
	}

	name := path.Join(a.Prefix, datedName(path.Base(e.Name), now()))
	src := a.Client.Bucket(e.Bucket).Object(e.Name)
	dst := a.Client.Bucket(a.Bucket).Object(name)

	if _, err := dst.CopierFrom(src).Run(ctx); err != nil {
		return xerrors.Errorf("failed to copy %s: %w", e.FullPath(), err)
	}

	log.Ctx(ctx).Info().Str("to", "gs://"+a.Bucket+"/"+name).Msg("archived object")

	return a.Remove(ctx, e)
}

// Remove deletes the source object.
func (a *GCSArchiver) Remove(ctx context.Context, e Event) error {
	if err := a.Client.Bucket(e.Bucket).Object(e.Name).Delete(ctx); err != nil {
		return xerrors.Errorf("failed to delete %s: %w", e.FullPath(), err)
	}

	return nil
}

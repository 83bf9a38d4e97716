package snapshot

import (
	"context"
	"io"
	"os"
	"path"
	"path/filepath"

	"cloud.google.com/go/storage"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"golang.org/x/xerrors"
)

// GCSMirror uploads snapshots to gs://Bucket/Prefix/<file>.
type GCSMirror struct {
	Client *storage.Client
	Bucket string
	Prefix string
}

// Upload implements Mirror.
func (m *GCSMirror) Upload(ctx context.Context, p string) error {
	f, err := os.Open(p)
	if err != nil {
		return xerrors.Errorf("failed to open %s: %w", p, err)
	}
	defer f.Close()

	w := m.Client.Bucket(m.Bucket).Object(objectKey(m.Prefix, p)).NewWriter(ctx)
	if _, err := io.Copy(w, f); err != nil {
		w.Close()
		return xerrors.Errorf("failed to upload %s: %w", p, err)
	}

	if err := w.Close(); err != nil {
		return xerrors.Errorf("failed to finish upload of %s: %w", p, err)
	}

	return nil
}

// S3PutObjectAPI is the part of *s3.Client used by S3Mirror.
type S3PutObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Mirror uploads snapshots to s3://Bucket/Prefix/<file>.
type S3Mirror struct {
	Client S3PutObjectAPI
	Bucket string
	Prefix string
}

// Upload implements Mirror.
func (m *S3Mirror) Upload(ctx context.Context, p string) error {
	f, err := os.Open(p)
	if err != nil {
		return xerrors.Errorf("failed to open %s: %w", p, err)
	}
	defer f.Close()

	_, err = m.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(m.Bucket),
		Key:         aws.String(objectKey(m.Prefix, p)),
		Body:        f,
		ContentType: aws.String("application/vnd.apache.parquet"),
	})
	if err != nil {
		return xerrors.Errorf("failed to put s3://%s/%s: %w", m.Bucket, objectKey(m.Prefix, p), err)
	}

	return nil
}

func objectKey(prefix, p string) string {
	return path.Join(prefix, filepath.Base(p))
}

package handlers

import (
	"context"
	"regexp"

	"cloud.google.com/go/storage"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"golang.org/x/xerrors"

	"github.com/kernwater/wqloader"
	"github.com/kernwater/wqloader/config"
	"github.com/kernwater/wqloader/snapshot"
	"github.com/kernwater/wqloader/warehouse"
)

// LabResults builds a handler for laboratory result exports described by c.
func LabResults(ctx context.Context, name string, c *config.Config, cl Clients) (*wqloader.Handler, error) {
	tr, err := c.Transformer()
	if err != nil {
		return nil, xerrors.Errorf("failed to build transformer: %w", err)
	}

	enc, err := c.Encoding()
	if err != nil {
		return nil, err
	}

	if cl.Storage == nil && (c.Paths.Bucket != "" || c.SnapshotMirror.GCSBucket != "") {
		cl.Storage, err = storage.NewClient(ctx)
		if err != nil {
			return nil, xerrors.Errorf("failed to build storage client: %w", err)
		}
	}

	if cl.S3 == nil && c.SnapshotMirror.S3Bucket != "" {
		cfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, xerrors.Errorf("failed to load aws config: %w", err)
		}
		cl.S3 = s3.NewFromConfig(cfg)
	}

	loader, err := Warehouse(c, cl.Connect)
	if err != nil {
		return nil, err
	}

	h := &wqloader.Handler{
		Name:            name,
		Pattern:         regexp.MustCompile(c.Paths.Pattern),
		SkipLeadingRows: c.Source.SkipLeadingRows,

		Encoding:    enc,
		Parser:      parser(c),
		Transformer: tr,
		Snapshotter: Snapshotter(c, cl),
		Loader:      loader,
		Notifier:    cl.Notifier,
	}

	if c.Paths.Bucket != "" {
		h.Extractor = &wqloader.GCSExtractor{Client: cl.Storage}
		a := &wqloader.GCSArchiver{Client: cl.Storage, Prefix: c.Paths.Loaded}
		if c.Paths.Archive == config.ArchiveMove {
			a.Bucket = c.Paths.Bucket
		}
		h.Archiver = a
	} else {
		h.Extractor = &wqloader.FileExtractor{}
		a := &wqloader.FileArchiver{}
		if c.Paths.Archive == config.ArchiveMove {
			a.Dir = c.Paths.Loaded
		}
		h.Archiver = a
	}

	return h, nil
}

// Warehouse returns the loader for the configured warehouse. A nil connect
// reads Postgres credentials from the environment.
func Warehouse(c *config.Config, connect warehouse.Connector) (warehouse.Loader, error) {
	if c.Warehouse == "bigquery" {
		return &warehouse.BigQueryLoader{Table: c.Table}, nil
	}

	if connect == nil {
		creds, err := warehouse.CredentialsFromEnv()
		if err != nil {
			return nil, xerrors.Errorf("failed to read warehouse credentials: %w", err)
		}
		connect = warehouse.PostgresConnector(creds)
	}

	return &warehouse.UpsertLoader{Table: c.Table, Connect: connect}, nil
}

// Snapshotter returns the parquet writer with the configured mirrors.
func Snapshotter(c *config.Config, cl Clients) *snapshot.Writer {
	w := &snapshot.Writer{Dir: c.Paths.Snapshots, Prefix: c.Paths.SnapshotPrefix}

	m := c.SnapshotMirror
	if m.GCSBucket != "" && cl.Storage != nil {
		w.Mirrors = append(w.Mirrors, &snapshot.GCSMirror{Client: cl.Storage, Bucket: m.GCSBucket, Prefix: m.Prefix})
	}
	if m.S3Bucket != "" && cl.S3 != nil {
		w.Mirrors = append(w.Mirrors, &snapshot.S3Mirror{Client: cl.S3, Bucket: m.S3Bucket, Prefix: m.Prefix})
	}

	return w
}

func parser(c *config.Config) wqloader.Parser {
	if c.Source.Format == config.FormatXLS {
		return wqloader.XLSParser(0)
	}
	return wqloader.CSVParser()
}

package main

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"cloud.google.com/go/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/xerrors"
	"google.golang.org/api/iterator"

	"github.com/kernwater/wqloader"
	"github.com/kernwater/wqloader/contrib/handlers"
)

func newRunCmd(root *rootOptions) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Load every file waiting in the inbox",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), root, name)
		},
	}

	cmd.Flags().StringVar(&name, "name", "lab_results", "Handler name used in logs, metrics and notifications")

	return cmd
}

func run(ctx context.Context, root *rootOptions, name string) error {
	c, err := root.config()
	if err != nil {
		return err
	}

	logger, err := root.logger()
	if err != nil {
		return err
	}
	ctx = logger.WithContext(ctx)

	cl := handlers.Clients{Notifier: slackFromEnv()}
	if c.Paths.Bucket != "" {
		cl.Storage, err = storage.NewClient(ctx)
		if err != nil {
			return xerrors.Errorf("failed to build storage client: %w", err)
		}
		defer cl.Storage.Close()
	}

	h, err := handlers.LabResults(ctx, name, c, cl)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	opts := []wqloader.Option{wqloader.WithLogLevel(root.logLevel), wqloader.WithMetrics(reg)}
	if root.pretty {
		opts = append(opts, wqloader.WithPrettyLogging())
	}
	loader, err := wqloader.New(opts...)
	if err != nil {
		return err
	}
	if err := loader.AddHandler(ctx, h); err != nil {
		return err
	}

	var events []wqloader.Event
	if c.Paths.Bucket != "" {
		events, err = listBucket(ctx, cl.Storage, c.Paths.Bucket, c.Paths.Inbox, h.Pattern)
	} else {
		events, err = listInbox(c.Paths.Inbox, h.Pattern)
	}
	if err != nil {
		return err
	}

	failed := 0
	for _, e := range events {
		if err := loader.Handle(ctx, e); err != nil {
			failed++
			logger.Error().Err(err).Str("file", e.FullPath()).Str("kind", string(wqloader.KindOf(err))).
				Msg("file left in the inbox")
		}
	}

	logger.Info().Int("files", len(events)).Int("failed", failed).Msg("run finished")

	if root.pushgateway != "" {
		pushMetrics(logger, root.pushgateway, reg)
	}

	return nil
}

// listInbox returns the inbox files matching pattern in name order.
func listInbox(dir string, pattern *regexp.Regexp) ([]wqloader.Event, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, xerrors.Errorf("failed to read inbox: %w", err)
	}

	var events []wqloader.Event
	for _, e := range entries {
		if e.IsDir() || !pattern.MatchString(e.Name()) {
			continue
		}
		events = append(events, wqloader.Event{Name: filepath.Join(dir, e.Name())})
	}

	sort.Slice(events, func(i, j int) bool { return events[i].Name < events[j].Name })

	return events, nil
}

func listBucket(ctx context.Context, c *storage.Client, bucket, prefix string, pattern *regexp.Regexp) ([]wqloader.Event, error) {
	var events []wqloader.Event

	it := c.Bucket(bucket).Objects(ctx, &storage.Query{Prefix: prefix})
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, xerrors.Errorf("failed to list gs://%s/%s: %w", bucket, prefix, err)
		}
		if pattern.MatchString(attrs.Name) {
			events = append(events, wqloader.Event{Name: attrs.Name, Bucket: bucket})
		}
	}

	return events, nil
}

func slackFromEnv() wqloader.Notifier {
	token := os.Getenv("SLACK_TOKEN")
	if token == "" {
		return nil
	}
	return &wqloader.SlackNotifier{Token: token, Channel: os.Getenv("SLACK_CHANNEL")}
}

func pushMetrics(logger zerolog.Logger, url string, g prometheus.Gatherer) {
	if err := push.New(url, "wqloader").Gatherer(g).Push(); err != nil {
		logger.Warn().Err(err).Msg("failed to push metrics")
	}
}

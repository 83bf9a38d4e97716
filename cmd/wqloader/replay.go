package main

import (
	"context"

	"github.com/spf13/cobra"
	"golang.org/x/xerrors"

	"github.com/kernwater/wqloader/contrib/handlers"
	"github.com/kernwater/wqloader/snapshot"
)

func newReplayCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "replay SNAPSHOT...",
		Short: "Load parquet snapshots into the warehouse again",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return replay(cmd.Context(), root, args)
		},
	}
}

func replay(ctx context.Context, root *rootOptions, paths []string) error {
	c, err := root.config()
	if err != nil {
		return err
	}

	logger, err := root.logger()
	if err != nil {
		return err
	}
	ctx = logger.WithContext(ctx)

	loader, err := handlers.Warehouse(c, nil)
	if err != nil {
		return err
	}

	loc, err := c.Location()
	if err != nil {
		return err
	}

	for _, p := range paths {
		batch, err := snapshot.Read(p, c.TargetSchema(), loc)
		if err != nil {
			return xerrors.Errorf("failed to read snapshot %s: %w", p, err)
		}

		n, err := loader.Load(ctx, batch)
		if err != nil {
			return xerrors.Errorf("failed to replay %s after %d rows: %w", p, n, err)
		}

		logger.Info().Str("snapshot", p).Int("rows", n).Msg("replayed snapshot")
	}

	return nil
}

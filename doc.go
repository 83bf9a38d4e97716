/*
Package wqloader loads laboratory water-quality exports into a warehouse
table.

Each source file is handled as one batch: it is parsed, decoded against the
declared source columns, mapped onto the table's columns, filtered, routed by
site, normalized and coerced. The cleaned batch is written to a parquet
snapshot and upserted row by row, so loading the same file twice leaves the
table unchanged. On success the source file is archived.

# Getting started

Most users describe the export in YAML and use the pre-configured handler.

	package main

	import (
		"context"

		"github.com/kernwater/wqloader"
		"github.com/kernwater/wqloader/config"
		"github.com/kernwater/wqloader/contrib/handlers"
		"github.com/kernwater/wqloader/warehouse"
	)

	func main() {
		ctx := context.Background()

		c, err := config.Load("lab_results.yaml")
		if err != nil {
			panic(err)
		}

		creds, err := warehouse.CredentialsFromEnv()
		if err != nil {
			panic(err)
		}

		h, err := handlers.LabResults(ctx, "lab_results", c, handlers.Clients{Connect: warehouse.PostgresConnector(creds)})
		if err != nil {
			panic(err)
		}

		loader, err := wqloader.New(wqloader.WithPrettyLogging())
		if err != nil {
			panic(err)
		}
		loader.MustAddHandler(ctx, h)

		if err := loader.Handle(ctx, wqloader.Event{Name: "inbox/results.csv"}); err != nil {
			panic(err)
		}
	}

# Cloud Functions

With a GCSExtractor the loader can also run as a Cloud Storage triggered
function; pass the function's event to Handle.
*/
package wqloader

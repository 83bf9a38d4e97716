package handlers_test

import (
	"context"

	"github.com/kernwater/wqloader"
	"github.com/kernwater/wqloader/config"
	"github.com/kernwater/wqloader/contrib/handlers"
	"github.com/kernwater/wqloader/warehouse"
)

func ExampleLabResults() {
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

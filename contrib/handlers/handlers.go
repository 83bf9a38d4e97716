// Package handlers provides pre-configured handlers built from a
// configuration file.
package handlers

import (
	"cloud.google.com/go/storage"

	"github.com/kernwater/wqloader"
	"github.com/kernwater/wqloader/snapshot"
	"github.com/kernwater/wqloader/warehouse"
)

// Clients are the external clients a handler talks to. Nil fields are built
// from the environment when the configuration needs them.
type Clients struct {
	Connect  warehouse.Connector
	Storage  *storage.Client
	S3       snapshot.S3PutObjectAPI
	Notifier wqloader.Notifier
}

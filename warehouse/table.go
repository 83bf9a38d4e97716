// Package warehouse writes cleaned batches into warehouse tables with
// idempotent insert-or-update statements.
package warehouse

import (
	"context"
	"fmt"

	"github.com/kernwater/wqloader/schema"
)

// Table identifies a destination table and how conflicting rows are merged.
// The pipeline never creates or alters it.
type Table struct {
	Database      string   `yaml:"database"`
	Schema        string   `yaml:"schema"`
	Name          string   `yaml:"name"`
	PrimaryKey    []string `yaml:"primary_key"`
	UpdateColumns []string `yaml:"update_columns"`
}

// String returns database:schema.name for logs.
func (t Table) String() string {
	if t.Schema == "" {
		return fmt.Sprintf("%s:%s", t.Database, t.Name)
	}
	return fmt.Sprintf("%s:%s.%s", t.Database, t.Schema, t.Name)
}

// Loader writes a batch and reports how many rows were written.
type Loader interface {
	Load(context.Context, *schema.Batch) (int, error)
}

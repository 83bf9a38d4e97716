package wqloader

import (
	"fmt"
	"io"
	"path/filepath"
)

// Event names one source file: a Cloud Storage object when Bucket is set,
// otherwise a local path.
type Event struct {
	Name   string `json:"name"`
	Bucket string `json:"bucket"`

	// for test
	source io.Reader
}

// FullPath returns gs://bucket/name for objects and the cleaned path for
// local files.
func (e *Event) FullPath() string {
	if e.Bucket == "" {
		return filepath.Clean(e.Name)
	}
	return fmt.Sprintf("gs://%s/%s", e.Bucket, e.Name)
}

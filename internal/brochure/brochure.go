package brochure

import (
	"context"
	"os"
)

// Service of brochure generation.
type Service interface {
	Generate(ctx context.Context, req Request) (*Artifact, error)
}

// Request for a batch of brochures.
type Request struct {
	UUID string
	RU   int
	EN   int
}

// Artifact is the merged PDF of a batch. Close removes it with every working
// file of the batch.
type Artifact struct {
	Path       string
	Pages      int
	Recipients int

	dir string
}

// NewArtifact of merged PDF at path inside batch directory dir.
func NewArtifact(dir, path string, pages, recipients int) *Artifact {
	return &Artifact{
		Path:       path,
		Pages:      pages,
		Recipients: recipients,
		dir:        dir,
	}
}

// Open merged PDF for reading.
func (a *Artifact) Open() (*os.File, error) {
	return os.Open(a.Path)
}

// Close ...
func (a *Artifact) Close() error {
	return os.RemoveAll(a.dir)
}

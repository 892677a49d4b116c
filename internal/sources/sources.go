// Package sources provides the I/O collaborators of the correction
// validator: committed baselines, proposed working-copy tables, changed-file
// listings and directory walks.
//
// Ownership boundary:
// - baseline retrieval (version control, remote mirror, fallback chain)
// - proposed file decoding
// - change enumeration
package sources

import (
	"context"
	"errors"

	"github.com/danmuck/amfiles/internal/corrections"
)

var (
	// ErrRetrievalUnavailable means no baseline could be obtained. Callers
	// treat it as a new file with nothing committed to protect.
	ErrRetrievalUnavailable = errors.New("sources: baseline unavailable")
	ErrMalformedFile        = errors.New("sources: malformed file")
)

// BaselineFetcher returns the last committed version of a correction file.
type BaselineFetcher interface {
	FetchBaseline(ctx context.Context, path string) (corrections.Table, error)
}

// ProposedReader parses the working-copy version of a correction file.
type ProposedReader interface {
	ReadProposed(path string) (corrections.Table, error)
}

// ChangeLister enumerates correction files that differ from the baseline
// revision under dir.
type ChangeLister interface {
	ListChanges(ctx context.Context, dir string) ([]Change, error)
}

// FileWalker enumerates every correction file under dir.
type FileWalker interface {
	Walk(dir string) ([]string, error)
}

// Change is one changed file, relative to the working directory.
type Change struct {
	Path    string
	Deleted bool
}

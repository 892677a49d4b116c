package sources

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/danmuck/amfiles/internal/corrections"
	"github.com/danmuck/amfiles/internal/remote"
	"github.com/rs/zerolog/log"
)

// RemoteBaseline reads committed tables from a raw-content mirror.
type RemoteBaseline struct {
	Client *remote.Client
}

func (r RemoteBaseline) FetchBaseline(ctx context.Context, p string) (corrections.Table, error) {
	if r.Client == nil {
		return nil, fmt.Errorf("%w: %v", ErrRetrievalUnavailable, remote.ErrNotConfigured)
	}
	body, err := r.Client.Fetch(ctx, filepath.ToSlash(p))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRetrievalUnavailable, err)
	}
	table, err := DecodeTable(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRetrievalUnavailable, r.Client.URL(p), err)
	}
	return table, nil
}

// NamedFetcher labels a fetcher for logs and metrics.
type NamedFetcher struct {
	Name    string
	Fetcher BaselineFetcher
}

// ChainBaseline tries each fetcher in order and returns the first table
// obtained. When every fetcher fails the result is ErrRetrievalUnavailable.
type ChainBaseline struct {
	Fetchers []NamedFetcher
	// Observe is called once per attempt with the fetcher name and its error.
	Observe func(name string, err error)
}

func (c ChainBaseline) FetchBaseline(ctx context.Context, p string) (corrections.Table, error) {
	var errs []error
	for _, f := range c.Fetchers {
		if f.Fetcher == nil {
			continue
		}
		table, err := f.Fetcher.FetchBaseline(ctx, p)
		if c.Observe != nil {
			c.Observe(f.Name, err)
		}
		if err == nil {
			log.Debug().Str("path", p).Str("source", f.Name).Msg("sources: baseline found")
			return table, nil
		}
		log.Debug().Str("path", p).Str("source", f.Name).Err(err).Msg("sources: baseline attempt failed")
		errs = append(errs, fmt.Errorf("%s: %w", f.Name, err))
	}
	if len(errs) == 0 {
		return nil, fmt.Errorf("%w: no baseline sources configured", ErrRetrievalUnavailable)
	}
	return nil, fmt.Errorf("%w: %w", ErrRetrievalUnavailable, errors.Join(errs...))
}

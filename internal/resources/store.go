package resources

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/danmuck/amfiles/internal/remote"
	"github.com/rs/zerolog/log"
)

const DefaultDataDir = "data"

// Store resolves named files in a local data directory and, when a remote
// client is configured, falls back to fetching them from the mirror.
type Store struct {
	DataDir string
	// RemotePrefix is prepended to names fetched from Remote.
	RemotePrefix string
	Remote       *remote.Client
}

func (s Store) dir() string {
	if d := strings.TrimSpace(s.DataDir); d != "" {
		return d
	}
	return DefaultDataDir
}

// List returns the file names in the data directory, sorted.
func (s Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir())
	if err != nil {
		return nil, fmt.Errorf("resources: list %s: %w", s.dir(), err)
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		out = append(out, e.Name())
	}
	sort.Strings(out)
	return out, nil
}

// AbsPath returns the absolute local path of name.
func (s Store) AbsPath(name string) (string, error) {
	if err := validName(name); err != nil {
		return "", err
	}
	p, err := filepath.Abs(filepath.Join(s.dir(), name))
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(p); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: cannot find %s", ErrNotFound, name)
		}
		return "", err
	}
	return p, nil
}

// Get decodes name from the data directory. A file missing locally is
// fetched from the remote mirror when one is configured.
func (s Store) Get(ctx context.Context, name string) (any, error) {
	if err := validName(name); err != nil {
		return nil, err
	}
	local, err := ReadFile(filepath.Join(s.dir(), name))
	if err == nil {
		return local, nil
	}
	if !errors.Is(err, ErrNotFound) || s.Remote == nil {
		return nil, err
	}

	remoteName := strings.TrimPrefix(filepath.ToSlash(filepath.Join(s.RemotePrefix, name)), "/")
	log.Info().Str("name", name).Str("url", s.Remote.URL(remoteName)).Msg("resources: not found locally, fetching from remote")
	data, ferr := s.Remote.Fetch(ctx, remoteName)
	if ferr != nil {
		if errors.Is(ferr, remote.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s not found locally or remotely", ErrNotFound, name)
		}
		return nil, fmt.Errorf("resources: %s missing locally and remote failed: %w", name, ferr)
	}
	return Decode(name, data)
}

func validName(name string) error {
	if name == "" || filepath.IsAbs(name) || strings.Contains(filepath.ToSlash(name), "..") {
		return fmt.Errorf("%w: invalid name %q", ErrNotFound, name)
	}
	return nil
}

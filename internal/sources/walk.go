package sources

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// DirWalker lists files with Extension under a directory relative to Root.
type DirWalker struct {
	Root      string
	Extension string
}

// Walk returns matching files under dir, relative to Root and sorted.
func (w DirWalker) Walk(dir string) ([]string, error) {
	ext := w.Extension
	if ext == "" {
		ext = DefaultExtension
	}
	base := filepath.Join(w.Root, dir)

	var out []string
	err := filepath.WalkDir(base, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ext) {
			return nil
		}
		rel, err := filepath.Rel(w.Root, p)
		if err != nil {
			return err
		}
		out = append(out, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}

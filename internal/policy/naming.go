package policy

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/danmuck/amfiles/internal/corrections"
)

// Naming reports whether the file name starts with the name of its
// containing directory, e.g. elife/elife_v0.json.
func Naming(path string) bool {
	dir := filepath.Base(filepath.Dir(filepath.Clean(path)))
	return strings.HasPrefix(filepath.Base(path), dir)
}

// CheckNaming reports every file under root that breaks the naming rule.
// Files sitting directly in root are not checked.
func CheckNaming(root string, files []string) []corrections.Violation {
	root = filepath.Clean(root)
	var out []corrections.Violation
	for _, f := range files {
		if filepath.Dir(filepath.Clean(f)) == root {
			continue
		}
		if Naming(f) {
			continue
		}
		dir := filepath.Base(filepath.Dir(f))
		out = append(out, corrections.Violation{
			Kind:    corrections.KindNaming,
			Keys:    []string{f},
			Message: fmt.Sprintf("file %s does not start with its directory name %q", filepath.Base(f), dir),
		})
	}
	return out
}

package sources

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/danmuck/amfiles/internal/corrections"
	"github.com/danmuck/amfiles/internal/tools"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/go-diff/diff"
)

const (
	DefaultBaseRef   = "origin/master"
	DefaultExtension = ".json"
	devNull          = "/dev/null"
)

// GitBaseline reads committed tables with `git show <ref>:./<path>`.
type GitBaseline struct {
	Runner tools.CommandRunner
	Dir    string
	Ref    string
}

func (g GitBaseline) FetchBaseline(ctx context.Context, p string) (corrections.Table, error) {
	object := fmt.Sprintf("%s:./%s", g.ref(), filepath.ToSlash(p))
	out, err := tools.RunChecked(ctx, runnerOrDefault(g.Runner), g.Dir, "git", "show", object)
	if err != nil {
		return nil, fmt.Errorf("%w: git show %s: %v", ErrRetrievalUnavailable, object, err)
	}
	if len(bytes.TrimSpace(out)) == 0 {
		return nil, fmt.Errorf("%w: git show %s: empty", ErrRetrievalUnavailable, object)
	}
	table, err := DecodeTable(out)
	if err != nil {
		return nil, fmt.Errorf("%w: git show %s: %v", ErrRetrievalUnavailable, object, err)
	}
	return table, nil
}

func (g GitBaseline) ref() string {
	return refOrDefault(g.Ref)
}

func refOrDefault(ref string) string {
	if ref = strings.TrimSpace(ref); ref != "" {
		return ref
	}
	return DefaultBaseRef
}

func runnerOrDefault(r tools.CommandRunner) tools.CommandRunner {
	if r == nil {
		return tools.ExecRunner{}
	}
	return r
}

// GitChangeLister lists files changed between Ref and HEAD by parsing the
// unified diff git prints for dir.
type GitChangeLister struct {
	Runner    tools.CommandRunner
	Dir       string
	Ref       string
	Extension string
}

func (g GitChangeLister) ListChanges(ctx context.Context, dir string) ([]Change, error) {
	args := []string{"diff", "--no-color", "--no-ext-diff", "--no-renames", "--relative", refOrDefault(g.Ref), "HEAD", "--", dir}
	out, err := tools.RunChecked(ctx, runnerOrDefault(g.Runner), g.Dir, "git", args...)
	if err != nil {
		return nil, fmt.Errorf("list changes under %s: %w", dir, err)
	}
	return ParseChanges(out, g.extension())
}

func (g GitChangeLister) extension() string {
	if ext := strings.TrimSpace(g.Extension); ext != "" {
		return ext
	}
	return DefaultExtension
}

// ParseChanges extracts changed paths with extension ext from unified diff
// output. Paths are sorted and unique.
func ParseChanges(patch []byte, ext string) ([]Change, error) {
	if len(bytes.TrimSpace(patch)) == 0 {
		return nil, nil
	}
	fileDiffs, err := diff.NewMultiFileDiffReader(bytes.NewReader(patch)).ReadAllFiles()
	if err != nil {
		return nil, fmt.Errorf("parse diff: %w", err)
	}

	seen := make(map[string]Change, len(fileDiffs))
	for _, fd := range fileDiffs {
		name := fd.NewName
		deleted := name == devNull
		if deleted || name == "" {
			name = fd.OrigName
		}
		name = stripDiffPrefix(name)
		if name == "" || name == devNull || !strings.HasSuffix(name, ext) {
			continue
		}
		seen[name] = Change{Path: filepath.FromSlash(name), Deleted: deleted}
	}

	out := make([]Change, 0, len(seen))
	for _, ch := range seen {
		out = append(out, ch)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	log.Debug().Int("changes", len(out)).Msg("sources: parsed diff")
	return out, nil
}

func stripDiffPrefix(name string) string {
	name = strings.TrimSpace(name)
	for _, prefix := range []string{"a/", "b/"} {
		if strings.HasPrefix(name, prefix) {
			return path.Clean(strings.TrimPrefix(name, prefix))
		}
	}
	return name
}

package policy

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/danmuck/amfiles/internal/corrections"
	"github.com/danmuck/amfiles/internal/sources"
	"github.com/danmuck/amfiles/internal/testutil/testlog"
	"github.com/google/go-cmp/cmp"
)

type fakeLister struct {
	changes []sources.Change
	err     error
}

func (l fakeLister) ListChanges(context.Context, string) ([]sources.Change, error) {
	return l.changes, l.err
}

type fakeWalker struct {
	files []string
}

func (w fakeWalker) Walk(string) ([]string, error) {
	return w.files, nil
}

type fakeBaselines map[string]corrections.Table

func (b fakeBaselines) FetchBaseline(_ context.Context, path string) (corrections.Table, error) {
	table, ok := b[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", sources.ErrRetrievalUnavailable, path)
	}
	return table, nil
}

type fakeReader struct {
	mu     sync.Mutex
	tables map[string]corrections.Table
	reads  []string
}

func (r *fakeReader) ReadProposed(path string) (corrections.Table, error) {
	r.mu.Lock()
	r.reads = append(r.reads, path)
	r.mu.Unlock()
	table, ok := r.tables[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", sources.ErrMalformedFile, path)
	}
	return table, nil
}

var (
	elifePath  = filepath.Join("corrections", "elife", "elife_v1.json")
	gainPath   = filepath.Join("corrections", "gain", "gain_global.json")
	brokenPath = filepath.Join("corrections", "broken", "broken_v0.json")
	newPath    = filepath.Join("corrections", "drift", "drift_v0.json")
	oldPath    = filepath.Join("corrections", "old", "old_v0.json")
)

func batchFixture(changes []sources.Change) *Gate {
	return &Gate{
		Dir:    "corrections",
		Lister: fakeLister{changes: changes},
		Walker: fakeWalker{files: []string{elifePath, gainPath, brokenPath, newPath}},
		Baseline: fakeBaselines{
			elifePath: {"000000-001000": "v1"},
			gainPath:  {"ch1": "cal_v1"},
			oldPath:   {"000000-*": 1},
		},
		Reader: &fakeReader{tables: map[string]corrections.Table{
			elifePath: {"000000-001000": "v2", "001001-*": "v2"},
			gainPath:  {"ch1": "cal_v1_dev"},
			newPath:   {"000000-*": 4.2},
		}},
	}
}

func TestGateEvaluatesEveryFileWithoutShortCircuit(t *testing.T) {
	testlog.Start(t)

	gate := batchFixture([]sources.Change{
		{Path: elifePath},
		{Path: brokenPath},
		{Path: gainPath},
		{Path: newPath},
	})
	report, err := gate.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Pass() {
		t.Fatalf("expected batch failure")
	}
	if len(report.Files) != 4 {
		t.Fatalf("expected all files evaluated, got %+v", report.Files)
	}
	if report.Failed() != 3 {
		t.Fatalf("expected three failing files, got %d", report.Failed())
	}

	byPath := map[string]FileReport{}
	for _, f := range report.Files {
		byPath[f.Path] = f
	}
	if !byPath[elifePath].Verdict.Names("000000-001000") {
		t.Fatalf("expected elife diagnostic naming key: %+v", byPath[elifePath].Verdict)
	}
	if !byPath[brokenPath].Verdict.Has(corrections.KindMalformedFile) {
		t.Fatalf("expected malformed file: %+v", byPath[brokenPath].Verdict)
	}
	if byPath[gainPath].Class != ClassGlobal || !byPath[gainPath].Verdict.Has(corrections.KindDevMarker) {
		t.Fatalf("expected global dev marker failure: %+v", byPath[gainPath])
	}
	if nf := byPath[newPath]; !nf.Verdict.Pass() || nf.BaselineFound {
		t.Fatalf("expected new file to pass without baseline: %+v", nf)
	}
	if !strings.HasPrefix(report.Summary(), "FAIL: 3 of 4") {
		t.Fatalf("unexpected summary: %s", report.Summary())
	}
}

func TestGateReportIsOrderIndependent(t *testing.T) {
	testlog.Start(t)

	forward := []sources.Change{{Path: elifePath}, {Path: gainPath}, {Path: brokenPath}, {Path: newPath}}
	backward := []sources.Change{{Path: newPath}, {Path: brokenPath}, {Path: gainPath}, {Path: elifePath}}

	a, err := batchFixture(forward).Run(context.Background())
	if err != nil {
		t.Fatalf("run forward: %v", err)
	}
	b, err := batchFixture(backward).Run(context.Background())
	if err != nil {
		t.Fatalf("run backward: %v", err)
	}
	if a.Pass() != b.Pass() {
		t.Fatalf("pass differs by order")
	}
	linesA, linesB := a.Lines(), b.Lines()
	sort.Strings(linesA)
	sort.Strings(linesB)
	if diff := cmp.Diff(linesA, linesB); diff != "" {
		t.Fatalf("diagnostics differ by order (-forward +backward):\n%s", diff)
	}
}

func TestGateNamingFailsOtherwiseCleanBatch(t *testing.T) {
	testlog.Start(t)

	misplaced := filepath.Join("corrections", "misc", "elife_v0.json")
	gate := batchFixture([]sources.Change{{Path: newPath}})
	gate.Walker = fakeWalker{files: []string{newPath, misplaced}}

	report, err := gate.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Failed() != 0 {
		t.Fatalf("expected range validation to pass, got %+v", report.Files)
	}
	if report.Pass() {
		t.Fatalf("expected naming violation to fail batch")
	}
	if len(report.Naming) != 1 || report.Naming[0].Keys[0] != misplaced {
		t.Fatalf("unexpected naming violations: %+v", report.Naming)
	}
}

func TestGateFlagsRemovedCommittedFile(t *testing.T) {
	testlog.Start(t)

	gate := batchFixture([]sources.Change{{Path: oldPath, Deleted: true}, {Path: newPath, Deleted: true}})
	report, err := gate.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(report.Files) != 2 {
		t.Fatalf("unexpected files: %+v", report.Files)
	}
	for _, f := range report.Files {
		switch f.Path {
		case oldPath:
			if !f.Verdict.Has(corrections.KindRemoval) {
				t.Fatalf("expected removal violation: %+v", f)
			}
		case newPath:
			if !f.Verdict.Pass() {
				t.Fatalf("expected uncommitted removal to pass: %+v", f)
			}
		}
	}
	if reads := gate.Reader.(*fakeReader).reads; len(reads) != 0 {
		t.Fatalf("expected deleted files not to be read, got %v", reads)
	}
}

func TestGateDedupesChanges(t *testing.T) {
	testlog.Start(t)

	gate := batchFixture([]sources.Change{{Path: newPath}, {Path: newPath}, {Path: ""}})
	report, err := gate.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(report.Files) != 1 || !report.Pass() {
		t.Fatalf("unexpected report: %+v", report)
	}
	if report.Summary() != "PASS: 1 correction file(s) validated" {
		t.Fatalf("unexpected summary: %s", report.Summary())
	}
}

func TestGateListingFailureAborts(t *testing.T) {
	testlog.Start(t)

	gate := batchFixture(nil)
	gate.Lister = fakeLister{err: errors.New("not a git repository")}
	if _, err := gate.Run(context.Background()); err == nil {
		t.Fatalf("expected listing error")
	}

	if _, err := (&Gate{}).Run(context.Background()); !errors.Is(err, ErrGateMisconfigured) {
		t.Fatalf("expected ErrGateMisconfigured, got %v", err)
	}
}

func TestGateWorkersKeepSortedOrder(t *testing.T) {
	testlog.Start(t)

	sequential := batchFixture([]sources.Change{{Path: newPath}, {Path: elifePath}, {Path: gainPath}, {Path: brokenPath}})
	parallel := batchFixture([]sources.Change{{Path: brokenPath}, {Path: gainPath}, {Path: elifePath}, {Path: newPath}})
	parallel.Workers = 4

	want, err := sequential.Run(context.Background())
	if err != nil {
		t.Fatalf("sequential run: %v", err)
	}
	got, err := parallel.Run(context.Background())
	if err != nil {
		t.Fatalf("parallel run: %v", err)
	}
	if diff := cmp.Diff(want.Lines(), got.Lines()); diff != "" {
		t.Fatalf("worker count changed diagnostics (-want +got):\n%s", diff)
	}
	paths := make([]string, 0, len(got.Files))
	for _, f := range got.Files {
		paths = append(paths, f.Path)
	}
	if !sort.StringsAreSorted(paths) {
		t.Fatalf("expected sorted file order, got %v", paths)
	}
	if reads := parallel.Reader.(*fakeReader).reads; len(reads) != 4 {
		t.Fatalf("expected four reads, got %v", reads)
	}
}

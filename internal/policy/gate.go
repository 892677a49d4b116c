package policy

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/danmuck/amfiles/internal/corrections"
	"github.com/danmuck/amfiles/internal/observability"
	"github.com/danmuck/amfiles/internal/sources"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

var ErrGateMisconfigured = errors.New("policy: gate misconfigured")

// Gate validates every changed correction file under Dir.
type Gate struct {
	Dir      string
	Rules    Rules
	Lister   sources.ChangeLister
	Walker   sources.FileWalker
	Baseline sources.BaselineFetcher
	Reader   sources.ProposedReader
	// Workers bounds concurrent file evaluations; values below 1 mean one.
	Workers int
}

// Run evaluates the whole batch. Every file is evaluated even after a
// failure; only a failed listing or walk aborts the run.
func (g *Gate) Run(ctx context.Context) (Report, error) {
	if g.Lister == nil || g.Baseline == nil || g.Reader == nil {
		return Report{}, fmt.Errorf("%w: lister, baseline and reader are required", ErrGateMisconfigured)
	}

	changes, err := g.Lister.ListChanges(ctx, g.Dir)
	if err != nil {
		return Report{}, fmt.Errorf("list changed files: %w", err)
	}
	changes = dedupeChanges(changes)
	logger := log.With().Str("run", uuid.NewString()).Logger()
	logger.Info().Int("files", len(changes)).Str("dir", g.Dir).Msg("policy: validating changed correction files")

	var report Report
	if g.Walker != nil {
		files, err := g.Walker.Walk(g.Dir)
		if err != nil {
			return Report{}, fmt.Errorf("walk %s: %w", g.Dir, err)
		}
		report.Naming = CheckNaming(g.Dir, files)
		for _, v := range report.Naming {
			logger.Warn().Str("file", v.Keys[0]).Msg(v.Message)
			observability.RecordViolation(string(v.Kind))
		}
	}

	// Results land by index so the report keeps the sorted change order.
	report.Files = make([]FileReport, len(changes))
	var eg errgroup.Group
	eg.SetLimit(max(g.Workers, 1))
	for i, ch := range changes {
		eg.Go(func() error {
			report.Files[i] = g.evaluateChange(ctx, logger, ch)
			return nil
		})
	}
	_ = eg.Wait()

	for _, fr := range report.Files {
		for _, v := range fr.Verdict.Violations {
			observability.RecordViolation(string(v.Kind))
		}
		observability.RecordFile(string(fr.Class), fr.Verdict.Pass())
	}
	observability.RecordRun(report.Pass())
	return report, nil
}

func (g *Gate) evaluateChange(ctx context.Context, runLogger zerolog.Logger, ch sources.Change) FileReport {
	fr := FileReport{Path: ch.Path, Class: g.Rules.Classify(ch.Path), Deleted: ch.Deleted}
	logger := runLogger.With().Str("file", ch.Path).Str("class", string(fr.Class)).Logger()

	baseline, err := g.Baseline.FetchBaseline(ctx, ch.Path)
	if err != nil {
		logger.Info().Err(err).Msg("policy: no baseline, treating as new file")
		baseline = corrections.Table{}
	} else {
		fr.BaselineFound = true
	}

	if ch.Deleted {
		if fr.BaselineFound && len(baseline) > 0 && !g.mutable(fr.Class, ch.Path) {
			fr.Verdict.Add(corrections.KindRemoval,
				fmt.Sprintf("proposed change removes committed correction file %s", ch.Path),
				ch.Path)
		}
		return fr
	}

	proposed, err := g.Reader.ReadProposed(ch.Path)
	if err != nil {
		logger.Error().Err(err).Msg("policy: cannot read proposed file")
		fr.Verdict.Add(corrections.KindMalformedFile, err.Error(), ch.Path)
		return fr
	}

	fr.Verdict = g.Rules.Evaluate(fr.Class, ch.Path, baseline, proposed)
	if fr.Verdict.Pass() {
		logger.Info().Bool("baseline", fr.BaselineFound).Msg("policy: validation passed")
	} else {
		logger.Warn().Int("violations", len(fr.Verdict.Violations)).Msg("policy: validation failed")
	}
	return fr
}

// Global ONLINE and dev files carry no immutability guarantee.
func (g *Gate) mutable(class Class, path string) bool {
	return class == ClassGlobal && (g.Rules.Online(path) || g.Rules.Dev(path))
}

func dedupeChanges(in []sources.Change) []sources.Change {
	seen := make(map[string]sources.Change, len(in))
	for _, ch := range in {
		if ch.Path == "" {
			continue
		}
		seen[ch.Path] = ch
	}
	out := make([]sources.Change, 0, len(seen))
	for _, ch := range seen {
		out = append(out, ch)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

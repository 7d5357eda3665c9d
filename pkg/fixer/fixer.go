// Package fixer runs analysis and repair over a batch of files.
//
// Each file is analyzed, planned, optionally backed up and then repaired.
// A failure is recorded on the file's record and the batch continues.
package fixer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/quidome/exify/pkg/backup"
	"github.com/quidome/exify/pkg/logging"
	"github.com/quidome/exify/pkg/plan"
	"github.com/quidome/exify/pkg/reconcile"
)

// ErrTimeout is recorded for files whose analysis exceeded Options.Timeout.
var ErrTimeout = errors.New("analysis timed out")

// Analyzer fills in the timestamps and result of a record.
type Analyzer interface {
	Analyze(ctx context.Context, rec *reconcile.FileRecord) error
}

// Writer persists a repaired timestamp for a record.
type Writer interface {
	Write(rec *reconcile.FileRecord) error
}

// Options configures a Runner.
type Options struct {
	// Workers bounds the number of files processed at once. Values below 1
	// mean 1.
	Workers int

	// Timeout bounds the analysis of a single file. Zero disables it.
	Timeout time.Duration

	// DryRun analyzes and plans without writing.
	DryRun bool

	// Backup, if set, receives a copy of each file before its first write.
	Backup *backup.Store

	Logger logging.Logger
}

// Outcome is what happened to a file during a run.
type Outcome string

const (
	OutcomeOK      Outcome = "ok"
	OutcomeUpdated Outcome = "updated"
	OutcomePlanned Outcome = "planned"
	OutcomeFailed  Outcome = "failed"
)

// Result is the per-file report of a run.
type Result struct {
	Record  *reconcile.FileRecord
	Steps   []plan.Step
	Outcome Outcome
	Backup  string
}

// Summary aggregates the results of a run. Results are ordered by path.
type Summary struct {
	OK      int
	Updated int
	Planned int
	Failed  int
	Results []Result
}

func (s *Summary) String() string {
	return fmt.Sprintf("OK: %d, UPDATED: %d, ERRORS: %d", s.OK, s.Updated, s.Failed)
}

// Failures returns the results of files that could not be processed.
func (s *Summary) Failures() []Result {
	var out []Result
	for _, r := range s.Results {
		if r.Outcome == OutcomeFailed {
			out = append(out, r)
		}
	}
	return out
}

// Runner processes batches of files.
type Runner struct {
	analyzer Analyzer
	exif     Writer
	fileTime Writer
	opts     Options
	log      logging.Logger
}

// New returns a Runner. exif and fileTime are only called outside dry runs.
func New(analyzer Analyzer, exif, fileTime Writer, opts Options) *Runner {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	log := opts.Logger
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Runner{
		analyzer: analyzer,
		exif:     exif,
		fileTime: fileTime,
		opts:     opts,
		log:      log,
	}
}

// Run processes paths and returns the summary. Every path is processed at
// most once. Cancelling ctx fails the files not yet finished; the partial
// summary is returned together with the context error.
func (r *Runner) Run(ctx context.Context, paths []string) (*Summary, error) {
	records := make([]*reconcile.FileRecord, 0, len(paths))
	seen := make(map[string]bool, len(paths))
	for _, p := range paths {
		rec, err := reconcile.NewFileRecord(p)
		if err != nil {
			return nil, err
		}
		if seen[rec.Path()] {
			continue
		}
		seen[rec.Path()] = true
		records = append(records, rec)
	}

	var ok, updated, planned, failed atomic.Int64
	results := make([]Result, len(records))

	var g errgroup.Group
	g.SetLimit(r.opts.Workers)
	for i, rec := range records {
		i, rec := i, rec
		g.Go(func() error {
			res := r.process(ctx, rec)
			results[i] = res

			switch res.Outcome {
			case OutcomeOK:
				ok.Add(1)
			case OutcomeUpdated:
				updated.Add(1)
			case OutcomePlanned:
				planned.Add(1)
			case OutcomeFailed:
				failed.Add(1)
				r.log.Warn("process failed", "file", rec.Path(), "error", rec.Err())
			}
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(results, func(i, j int) bool {
		return results[i].Record.Path() < results[j].Record.Path()
	})

	summary := &Summary{
		OK:      int(ok.Load()),
		Updated: int(updated.Load()),
		Planned: int(planned.Load()),
		Failed:  int(failed.Load()),
		Results: results,
	}
	return summary, ctx.Err()
}

func (r *Runner) process(ctx context.Context, rec *reconcile.FileRecord) Result {
	res := Result{Record: rec}

	if err := r.analyze(ctx, rec); err != nil {
		res.Outcome = OutcomeFailed
		return res
	}

	res.Steps = plan.For(rec.Result)
	if len(res.Steps) == 0 {
		res.Outcome = OutcomeOK
		return res
	}
	if r.opts.DryRun {
		r.log.Info("planned", "file", rec.Path(), "steps", res.Steps)
		res.Outcome = OutcomePlanned
		return res
	}

	if r.opts.Backup != nil {
		dst, _, err := r.opts.Backup.Save(rec.Path())
		if err != nil {
			rec.AddError(fmt.Errorf("backup: %w", err))
			res.Outcome = OutcomeFailed
			return res
		}
		res.Backup = dst
	}

	for _, step := range res.Steps {
		if err := r.apply(step, rec); err != nil {
			rec.AddError(err)
			res.Outcome = OutcomeFailed
			return res
		}
	}

	r.log.Info("updated", "file", rec.Path(), "steps", res.Steps)
	res.Outcome = OutcomeUpdated
	return res
}

func (r *Runner) apply(step plan.Step, rec *reconcile.FileRecord) error {
	switch step {
	case plan.WriteExif:
		return r.exif.Write(rec)
	case plan.WriteFileTime:
		return r.fileTime.Write(rec)
	default:
		return fmt.Errorf("unknown step %q", step)
	}
}

// analyze runs the analyzer on a copy of rec so that an analysis abandoned
// after the timeout cannot touch rec any more.
func (r *Runner) analyze(ctx context.Context, rec *reconcile.FileRecord) error {
	if err := ctx.Err(); err != nil {
		rec.MarkFailed(err)
		return err
	}
	if r.opts.Timeout <= 0 {
		return r.analyzer.Analyze(ctx, rec)
	}

	ctx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()

	work := rec.Clone()
	done := make(chan error, 1)
	go func() {
		done <- r.analyzer.Analyze(ctx, work)
	}()

	select {
	case err := <-done:
		*rec = *work
		return err
	case <-ctx.Done():
		err := ctx.Err()
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w after %s", ErrTimeout, r.opts.Timeout)
		}
		rec.MarkFailed(err)
		return err
	}
}

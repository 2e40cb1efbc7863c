// Tactica - Chess Puzzle Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tactica

package puzzleimport

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/tactica/internal/config"
	"github.com/tomtom215/tactica/internal/logging"
	"github.com/tomtom215/tactica/internal/metrics"
	"github.com/tomtom215/tactica/internal/models"
)

var (
	// ErrImportInProgress is returned when a run is requested while another
	// is still executing.
	ErrImportInProgress = errors.New("import already in progress")

	// ErrNoImportRunning is returned by Stop when nothing is running.
	ErrNoImportRunning = errors.New("no import in progress")

	// errStopped is the cancellation cause set by Stop.
	errStopped = errors.New("import stopped")
)

// Store is the catalog surface the pipelines write through.
type Store interface {
	InsertPuzzlesBatch(ctx context.Context, puzzles []*models.Puzzle) (inserted, duplicates int, err error)
	UpsertTheme(ctx context.Context, slug, name string) (created bool, err error)
	ResolvePuzzleIDs(ctx context.Context, fens []string) (map[string]string, error)
	ResolveThemeIDs(ctx context.Context, slugs []string) (map[string]string, error)
	AttachThemes(ctx context.Context, links []models.ThemeLink) (linked int, err error)
}

// Options override configuration for a single run.
type Options struct {
	ArchivePath string
	DryRun      bool
}

// CompletionFunc is called after each pipeline that finishes without error.
type CompletionFunc func(p Pipeline, stats *ImportStats)

// Runner executes import pipelines one at a time.
type Runner struct {
	cfg        *config.ImportConfig
	store      Store
	progress   ProgressTracker
	normalizer Normalizer
	onComplete CompletionFunc

	mu      sync.RWMutex
	running bool
	current *ImportStats
	last    map[Pipeline]*ImportStats
	cancel  context.CancelCauseFunc
}

// NewRunner creates a Runner. progress may be nil.
func NewRunner(cfg *config.ImportConfig, store Store, progress ProgressTracker) *Runner {
	return &Runner{
		cfg:        cfg,
		store:      store,
		progress:   progress,
		normalizer: Normalizer{ValidateFEN: cfg.ValidateFEN},
		last:       make(map[Pipeline]*ImportStats),
	}
}

// OnComplete registers fn to run after every successful, non-dry pipeline.
func (r *Runner) OnComplete(fn CompletionFunc) {
	r.mu.Lock()
	r.onComplete = fn
	r.mu.Unlock()
}

// Run executes pipeline p and blocks until it ends. PipelineAll runs every
// pipeline in order and stops at the first failure, returning the stats of
// the last pipeline it started.
func (r *Runner) Run(ctx context.Context, p Pipeline, opts Options) (*ImportStats, error) {
	ctx, err := r.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer r.release()

	return r.runSequence(ctx, p, opts)
}

// Start launches pipeline p in the background and returns at once.
func (r *Runner) Start(p Pipeline, opts Options) error {
	ctx, err := r.acquire(context.Background())
	if err != nil {
		return err
	}
	go func() {
		defer r.release()
		if _, err := r.runSequence(ctx, p, opts); err != nil {
			logging.Error().Err(err).Str("pipeline", string(p)).Msg("Background import failed")
		}
	}()
	return nil
}

// Stop cancels the running import. The run ends before its next batch.
func (r *Runner) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.running || r.cancel == nil {
		return ErrNoImportRunning
	}
	r.cancel(errStopped)
	return nil
}

// IsRunning reports whether a run is in progress.
func (r *Runner) IsRunning() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.running
}

// GetStats returns a copy of the current run's stats, or of the most recent
// run when idle. It returns nil before the first run.
func (r *Runner) GetStats() *ImportStats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.current == nil {
		return nil
	}
	s := *r.current
	return &s
}

// LastStats returns a copy of the final stats of each pipeline run since
// startup.
func (r *Runner) LastStats() map[Pipeline]*ImportStats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[Pipeline]*ImportStats, len(r.last))
	for p, s := range r.last {
		c := *s
		out[p] = &c
	}
	return out
}

// ClearProgress removes persisted progress. It fails while a run is active.
func (r *Runner) ClearProgress(ctx context.Context) error {
	if r.IsRunning() {
		return ErrImportInProgress
	}
	if r.progress == nil {
		return nil
	}
	return r.progress.Clear(ctx)
}

func (r *Runner) acquire(parent context.Context) (context.Context, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return nil, ErrImportInProgress
	}
	ctx, cancel := context.WithCancelCause(parent)
	r.running = true
	r.cancel = cancel
	return ctx, nil
}

func (r *Runner) release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.cancel(nil)
		r.cancel = nil
	}
	r.running = false
}

func (r *Runner) runSequence(ctx context.Context, p Pipeline, opts Options) (*ImportStats, error) {
	if p != PipelineAll {
		return r.runPipeline(ctx, p, opts)
	}
	var stats *ImportStats
	for _, step := range Pipelines {
		var err error
		if stats, err = r.runPipeline(ctx, step, opts); err != nil {
			return stats, err
		}
	}
	return stats, nil
}

func (r *Runner) runPipeline(ctx context.Context, p Pipeline, opts Options) (stats *ImportStats, err error) {
	runID := logging.GenerateRunID()
	ctx = logging.ContextWithRunID(ctx, runID)
	log := logging.Ctx(ctx).With().Str("pipeline", string(p)).Logger()

	dryRun := r.cfg.DryRun || opts.DryRun
	stats = &ImportStats{
		Pipeline:  p,
		RunID:     runID,
		StartTime: time.Now(),
		DryRun:    dryRun,
	}
	r.mu.Lock()
	r.current = stats
	r.mu.Unlock()

	archivePath := opts.ArchivePath
	if archivePath == "" {
		archivePath = r.cfg.ArchivePath
	}
	log.Info().Str("archive", archivePath).Bool("dry_run", dryRun).Msg("Starting import")

	defer func() {
		r.finish(ctx, &log, stats, err)
	}()

	rc, err := OpenArchiveEntry(archivePath, r.cfg.EntryName)
	if err != nil {
		return stats, err
	}
	defer func() {
		if closeErr := rc.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("Error closing archive")
		}
	}()

	rows := DecodeRows(rc)
	w := &pipelineRun{r: r, ctx: ctx, log: &log, stats: stats, dryRun: dryRun}

	switch p {
	case PipelinePuzzles:
		err = w.puzzles(rows)
	case PipelineThemes:
		err = w.themes(rows)
	case PipelineConnect:
		err = w.connect(rows)
	default:
		err = fmt.Errorf("unknown pipeline %q", p)
	}
	return stats, err
}

func (r *Runner) finish(ctx context.Context, log *zerolog.Logger, stats *ImportStats, err error) {
	r.mu.Lock()
	stats.EndTime = time.Now()
	if err != nil {
		stats.Error = err.Error()
	}
	final := *stats
	r.last[stats.Pipeline] = &final
	onComplete := r.onComplete
	r.mu.Unlock()

	metrics.RecordImportRun(string(stats.Pipeline), err)
	r.saveProgress(context.WithoutCancel(ctx), log, &final)

	event := log.Info()
	if err != nil {
		event = log.Error().Err(err)
	}
	event.
		Int64("rows", final.Rows).
		Int64("processed", final.Processed).
		Int64("skipped", final.Skipped).
		Int64("inserted", final.Inserted).
		Int64("duplicates", final.Duplicates).
		Int64("linked", final.Linked).
		Int64("unresolved_puzzles", final.UnresolvedPuzzles).
		Int64("unresolved_themes", final.UnresolvedThemes).
		Int64("failed", final.Failed).
		Dur("duration", final.Duration()).
		Msg("Import finished")

	if err == nil && !final.DryRun && onComplete != nil {
		onComplete(stats.Pipeline, &final)
	}
}

func (r *Runner) saveProgress(ctx context.Context, log *zerolog.Logger, stats *ImportStats) {
	if r.progress == nil || stats.DryRun {
		return
	}
	if err := r.progress.Save(ctx, stats); err != nil {
		log.Warn().Err(err).Msg("Failed to save progress")
	}
}

// pipelineRun carries the per-run state shared by the pipeline bodies.
type pipelineRun struct {
	r      *Runner
	ctx    context.Context
	log    *zerolog.Logger
	stats  *ImportStats
	dryRun bool
}

// update applies fn to the live stats under the runner lock.
func (w *pipelineRun) update(fn func(s *ImportStats)) ImportStats {
	w.r.mu.Lock()
	defer w.r.mu.Unlock()
	fn(w.stats)
	return *w.stats
}

func (w *pipelineRun) checkStopped() error {
	if err := w.ctx.Err(); err != nil {
		if cause := context.Cause(w.ctx); cause != nil {
			return cause
		}
		return err
	}
	return nil
}

// committed records a finished batch and emits cumulative progress.
func (w *pipelineRun) committed(size int, started time.Time, outcomes map[string]int, fn func(s *ImportStats)) {
	snapshot := w.update(func(s *ImportStats) {
		s.Processed += int64(size)
		s.Batches++
		if fn != nil {
			fn(s)
		}
	})
	metrics.RecordImportBatch(string(snapshot.Pipeline), time.Since(started), outcomes)
	w.r.saveProgress(w.ctx, w.log, &snapshot)

	w.log.Info().
		Int64("batch", snapshot.Batches).
		Int64("processed", snapshot.Processed).
		Int64("rows", snapshot.Rows).
		Float64("records_per_second", snapshot.RecordsPerSecond()).
		Msg("Import progress")
}

func (w *pipelineRun) puzzles(rows iter.Seq2[Row, error]) error {
	batcher := NewBatcher[*models.Puzzle](w.r.cfg.ImportBatchSize)

	for row, err := range rows {
		if err != nil {
			return err
		}
		if err := w.checkStopped(); err != nil {
			return err
		}
		w.update(func(s *ImportStats) { s.Rows++ })

		puzzle, ok := w.r.normalizer.Puzzle(row)
		if !ok {
			w.update(func(s *ImportStats) { s.Skipped++ })
			continue
		}
		if batch, full := batcher.Add(puzzle); full {
			if err := w.commitPuzzles(batch); err != nil {
				return err
			}
		}
	}
	if batch := batcher.Flush(); batch != nil {
		return w.commitPuzzles(batch)
	}
	return nil
}

func (w *pipelineRun) commitPuzzles(batch []*models.Puzzle) error {
	started := time.Now()
	if w.dryRun {
		w.committed(len(batch), started, nil, nil)
		return nil
	}

	inserted, duplicates, err := w.r.store.InsertPuzzlesBatch(w.ctx, batch)
	if err != nil {
		return fmt.Errorf("insert puzzle batch: %w", err)
	}
	w.committed(len(batch), started,
		map[string]int{"inserted": inserted, "duplicate": duplicates},
		func(s *ImportStats) {
			s.Inserted += int64(inserted)
			s.Duplicates += int64(duplicates)
		})
	return nil
}

func (w *pipelineRun) themes(rows iter.Seq2[Row, error]) error {
	seen := make(map[string]struct{})
	for row, err := range rows {
		if err != nil {
			return err
		}
		if err := w.checkStopped(); err != nil {
			return err
		}
		w.update(func(s *ImportStats) { s.Rows++ })
		for _, token := range w.r.normalizer.ThemeTokens(row) {
			seen[token] = struct{}{}
		}
	}

	slugs := make([]string, 0, len(seen))
	for slug := range seen {
		slugs = append(slugs, slug)
	}
	slices.Sort(slugs)
	w.log.Info().Int("distinct_themes", len(slugs)).Msg("Theme vocabulary collected")

	batcher := NewBatcher[string](w.r.cfg.ImportBatchSize)
	for _, slug := range slugs {
		if batch, full := batcher.Add(slug); full {
			if err := w.upsertThemes(batch); err != nil {
				return err
			}
		}
	}
	if batch := batcher.Flush(); batch != nil {
		return w.upsertThemes(batch)
	}
	return nil
}

// upsertThemes issues one insert-if-absent per slug. Grouping only paces
// progress reporting; each upsert commits on its own.
func (w *pipelineRun) upsertThemes(slugs []string) error {
	started := time.Now()
	if w.dryRun {
		w.committed(len(slugs), started, nil, nil)
		return nil
	}

	var created, existing int
	for _, slug := range slugs {
		if err := w.checkStopped(); err != nil {
			return err
		}
		ok, err := w.r.store.UpsertTheme(w.ctx, slug, ThemeDisplayName(slug))
		if err != nil {
			return fmt.Errorf("upsert theme %q: %w", slug, err)
		}
		if ok {
			created++
		} else {
			existing++
		}
	}
	w.committed(len(slugs), started,
		map[string]int{"inserted": created, "duplicate": existing},
		func(s *ImportStats) {
			s.Inserted += int64(created)
			s.Duplicates += int64(existing)
		})
	return nil
}

func (w *pipelineRun) connect(rows iter.Seq2[Row, error]) error {
	batcher := NewBatcher[ConnectRecord](w.r.cfg.ConnectBatchSize)

	for row, err := range rows {
		if err != nil {
			return err
		}
		if err := w.checkStopped(); err != nil {
			return err
		}
		w.update(func(s *ImportStats) { s.Rows++ })

		rec, ok := w.r.normalizer.Connect(row)
		if !ok {
			w.update(func(s *ImportStats) { s.Skipped++ })
			continue
		}
		if batch, full := batcher.Add(rec); full {
			if err := w.commitConnect(batch); err != nil {
				return err
			}
		}
	}
	if batch := batcher.Flush(); batch != nil {
		return w.commitConnect(batch)
	}
	return nil
}

// linkPlan is the resolved form of one connect batch.
type linkPlan struct {
	// byPuzzle holds the links of each resolved puzzle, in batch order.
	byPuzzle          [][]models.ThemeLink
	unresolvedPuzzles int
	unresolvedThemes  int
}

func (p *linkPlan) all() []models.ThemeLink {
	var links []models.ThemeLink
	for _, group := range p.byPuzzle {
		links = append(links, group...)
	}
	return links
}

// planLinks resolves the batch's distinct FENs and slugs with one lookup
// each and keeps only links whose ends both resolved.
func (w *pipelineRun) planLinks(batch []ConnectRecord) (*linkPlan, error) {
	fens := make([]string, 0, len(batch))
	var slugs []string
	for _, rec := range batch {
		fens = append(fens, rec.FEN)
		slugs = append(slugs, rec.Themes...)
	}

	puzzleIDs, err := w.r.store.ResolvePuzzleIDs(w.ctx, fens)
	if err != nil {
		return nil, fmt.Errorf("resolve puzzles: %w", err)
	}
	themeIDs, err := w.r.store.ResolveThemeIDs(w.ctx, slugs)
	if err != nil {
		return nil, fmt.Errorf("resolve themes: %w", err)
	}

	plan := &linkPlan{}
	seen := make(map[models.ThemeLink]struct{})
	for _, rec := range batch {
		puzzleID, ok := puzzleIDs[rec.FEN]
		if !ok {
			plan.unresolvedPuzzles++
			continue
		}
		var group []models.ThemeLink
		for _, slug := range rec.Themes {
			themeID, ok := themeIDs[slug]
			if !ok {
				plan.unresolvedThemes++
				continue
			}
			link := models.ThemeLink{PuzzleID: puzzleID, ThemeID: themeID}
			if _, dup := seen[link]; dup {
				continue
			}
			seen[link] = struct{}{}
			group = append(group, link)
		}
		if len(group) > 0 {
			plan.byPuzzle = append(plan.byPuzzle, group)
		}
	}
	return plan, nil
}

func (w *pipelineRun) commitConnect(batch []ConnectRecord) error {
	started := time.Now()
	if w.dryRun {
		w.committed(len(batch), started, nil, nil)
		return nil
	}

	plan, err := w.planLinks(batch)
	if err != nil {
		return err
	}

	var linked, failed int
	if w.r.cfg.ConnectPolicy == config.ConnectPolicyPerRecord {
		for _, group := range plan.byPuzzle {
			n, err := w.r.store.AttachThemes(w.ctx, group)
			if err != nil {
				if stopErr := w.checkStopped(); stopErr != nil {
					return stopErr
				}
				failed++
				w.log.Warn().Err(err).Str("puzzle_id", group[0].PuzzleID).Msg("Failed to link puzzle themes")
				continue
			}
			linked += n
		}
	} else {
		linked, err = w.r.store.AttachThemes(w.ctx, plan.all())
		if err != nil {
			return fmt.Errorf("attach themes: %w", err)
		}
	}

	w.committed(len(batch), started,
		map[string]int{
			"linked":            linked,
			"failed":            failed,
			"unresolved_puzzle": plan.unresolvedPuzzles,
			"unresolved_theme":  plan.unresolvedThemes,
		},
		func(s *ImportStats) {
			s.Linked += int64(linked)
			s.Failed += int64(failed)
			s.UnresolvedPuzzles += int64(plan.unresolvedPuzzles)
			s.UnresolvedThemes += int64(plan.unresolvedThemes)
		})
	return nil
}

// Package pipeline runs acquisition and reconstruction over many games with a
// bounded worker pool. A failing game never stops the others.
package pipeline

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"github.com/pable/go-clutch-metrics/internal/aggregator"
	"github.com/pable/go-clutch-metrics/internal/feb"
	"github.com/pable/go-clutch-metrics/internal/logging"
	"github.com/pable/go-clutch-metrics/internal/metrics"
	"github.com/pable/go-clutch-metrics/internal/model"
	"github.com/pable/go-clutch-metrics/internal/parser"
	"github.com/pable/go-clutch-metrics/internal/snapshot"
)

// Fetcher returns the raw play-by-play widget HTML of a game.
type Fetcher interface {
	FetchKeyfacts(ctx context.Context, gameID string) (string, error)
}

// Sink persists per-game results.
type Sink interface {
	GameExists(gameID string) (bool, error)
	StoreGameResult(res *model.GameResult) error
	InsertFetchFailure(f model.FetchFailure) error
}

// Options configures a run.
type Options struct {
	Workers     int
	Retry       feb.RetryPolicy
	Force       bool
	SnapshotDir string
	Engine      aggregator.Config
	Recorder    *metrics.Recorder
	Logger      *logging.Logger
}

// Status of a single game in a run.
type Status string

const (
	StatusStored  Status = "stored"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Outcome is the result of one game.
type Outcome struct {
	GameID   string
	Status   Status
	Attempts int
	Summary  *model.GameSummary
	Err      error
}

// Report collects the outcomes of a run, each list in input order.
type Report struct {
	RunID   string
	Stored  []model.GameSummary
	Failed  []model.FetchFailure
	Skipped []string
}

// Run processes every game id and returns the per-game report. It returns an
// error only when the run itself cannot proceed.
func Run(ctx context.Context, ids []string, fetcher Fetcher, sink Sink, opts Options) (*Report, error) {
	log := opts.Logger
	if log == nil {
		log = logging.Default()
	}
	if err := opts.Engine.Validate(); err != nil {
		return nil, errors.Wrap(err, "engine config")
	}

	runID := uuid.NewString()
	log = log.With("run_id", runID)
	report := &Report{RunID: runID}
	if len(ids) == 0 {
		return report, nil
	}

	workers := max(opts.Workers, 1)
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, errors.Wrap(err, "create worker pool")
	}
	defer pool.Release()

	type indexed struct {
		pos int
		out Outcome
	}
	results := make(chan indexed, len(ids))

	log.Info("run started", "games", len(ids), "workers", workers)
	var wg sync.WaitGroup
	for pos, id := range ids {
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			results <- indexed{pos: pos, out: processGame(ctx, runID, id, fetcher, sink, opts, log.With("game_id", id))}
		}); err != nil {
			wg.Done()
			wg.Wait()
			return nil, errors.Wrap(err, "submit game to worker pool")
		}
	}
	wg.Wait()
	close(results)

	all := make([]indexed, 0, len(ids))
	for r := range results {
		all = append(all, r)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].pos < all[j].pos })

	for _, r := range all {
		switch r.out.Status {
		case StatusStored:
			report.Stored = append(report.Stored, *r.out.Summary)
		case StatusSkipped:
			report.Skipped = append(report.Skipped, r.out.GameID)
		default:
			report.Failed = append(report.Failed, model.FetchFailure{
				GameID:   r.out.GameID,
				RunID:    runID,
				Attempts: r.out.Attempts,
				Error:    r.out.Err.Error(),
			})
		}
	}
	log.Info("run finished", "stored", len(report.Stored), "failed", len(report.Failed), "skipped", len(report.Skipped))

	if err := ctx.Err(); err != nil {
		return report, errors.Wrap(err, "run cancelled")
	}
	return report, nil
}

func processGame(ctx context.Context, runID, gameID string, fetcher Fetcher, sink Sink, opts Options, log *logging.Logger) Outcome {
	out := Outcome{GameID: gameID}
	fail := func(err error) Outcome {
		out.Status = StatusFailed
		out.Err = err
		opts.Recorder.GameFailed()
		log.Error("game failed", "attempts", out.Attempts, "error", err)
		if ferr := sink.InsertFetchFailure(model.FetchFailure{
			GameID:   gameID,
			RunID:    runID,
			Attempts: out.Attempts,
			Error:    err.Error(),
		}); ferr != nil {
			log.Warn("record fetch failure", "error", ferr)
		}
		return out
	}

	if !opts.Force {
		exists, err := sink.GameExists(gameID)
		if err != nil {
			return fail(errors.Wrap(err, "check stored game"))
		}
		if exists {
			out.Status = StatusSkipped
			opts.Recorder.GameSkipped()
			log.Info("game already stored, skipping")
			return out
		}
	}

	policy := opts.Retry
	policy.Notify = func(attempt int, err error, wait time.Duration) {
		log.Warn("fetch failed, retrying", "attempt", attempt, "wait", wait, "error", err)
	}
	var html string
	attempts, err := feb.Retry(ctx, policy, func(ctx context.Context, _ int) error {
		opts.Recorder.FetchAttempt()
		var ferr error
		html, ferr = fetcher.FetchKeyfacts(ctx, gameID)
		return ferr
	})
	out.Attempts = attempts
	if err != nil {
		return fail(err)
	}

	if opts.SnapshotDir != "" {
		path, err := snapshot.Save(opts.SnapshotDir, gameID, html)
		if err != nil {
			log.Warn("save snapshot", "error", err)
		} else {
			log.Debug("snapshot saved", "path", path)
		}
	}

	// Parsing is deterministic, so a failure here is not retried.
	res, err := ProcessHTML(gameID, html, opts.Engine, log)
	if err != nil {
		return fail(err)
	}
	res.Summary.RunID = runID
	res.Summary.StoredAt = time.Now().UTC().Format(time.RFC3339)

	if err := sink.StoreGameResult(res); err != nil {
		return fail(errors.Wrap(err, "store game"))
	}
	opts.Recorder.GameStored(res.Summary)
	log.Info("game stored",
		"clutch_seconds", res.Summary.ClutchSeconds,
		"players", len(res.Players),
		"lineups", len(res.Lineups),
		"invalid_segments", res.Summary.InvalidSegments,
	)
	out.Status = StatusStored
	out.Summary = &res.Summary
	return out
}

// ProcessHTML parses a keyfacts widget and reconstructs the game's clutch
// metrics. Unattributed rows are logged at debug level with their raw text.
func ProcessHTML(gameID, html string, cfg aggregator.Config, log *logging.Logger) (*model.GameResult, error) {
	if log == nil {
		log = logging.Default()
	}
	rows, err := parser.ParseKeyfactsString(html)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "parse game %s", gameID), snapshot.ErrParse)
	}
	game := parser.Normalize(gameID, rows, cfg.Clock)
	for i := range game.Events {
		if ev := &game.Events[i]; ev.Player == "" {
			log.Debug("unattributed row", "seq", ev.Seq, "raw", ev.RawText)
		}
	}
	res, err := aggregator.Aggregate(game, cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "aggregate game %s", gameID)
	}
	return res, nil
}

package pipeline

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/pfrederiksen/cricket-results/internal/logger"
	"github.com/pfrederiksen/cricket-results/internal/match"
	"github.com/pfrederiksen/cricket-results/internal/report"
	"github.com/sourcegraph/conc/pool"
)

// Stage names one step of a run.
type Stage string

const (
	StageFetch     Stage = "fetch"
	StageParse     Stage = "parse"
	StageAggregate Stage = "aggregate"
	StagePersist   Stage = "persist"
	StageRender    Stage = "render"
)

// Counter names recorded on the run's Metrics.
const (
	CounterMatches    = "matches"
	CounterTeams      = "teams"
	CounterScorecards = "scorecards"
	CounterWarnings   = "similar_names"
	CounterNew        = "new_matches"
	CounterChanged    = "changed_matches"
)

// StageError reports which stage stopped the run.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return string(e.Stage) + ": " + e.Err.Error()
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Fetcher returns the raw results page.
type Fetcher interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// ExtractFunc turns a results page into matches in page order.
type ExtractFunc func(r io.Reader) ([]match.Match, error)

// Store persists the run's intermediate data.
type Store interface {
	PreviousMatches() ([]match.Match, error)
	SaveMatches(matches []match.Match) error
	SaveTeams(teams []match.Team) error
}

// Pipeline wires the stages of one run together.
type Pipeline struct {
	Fetcher  Fetcher
	Extract  ExtractFunc
	Store    Store
	Emitters []report.Emitter

	// SimilarityThreshold is the Jaro-Winkler score for near-duplicate team
	// name warnings; 0 leaves only the normalized-name check.
	SimilarityThreshold float64

	Logger  *logger.Logger
	Metrics *logger.Metrics
}

// Result is everything a successful run produced.
type Result struct {
	Matches      []match.Match     `json:"matches"`
	Teams        []match.Team      `json:"teams"`
	Artifacts    []report.Artifact `json:"artifacts"`
	SimilarNames []match.NamePair  `json:"similar_names,omitempty"`
	// Diff is relative to the previous snapshot; nil when no Store is set.
	Diff *match.DiffResult `json:"diff,omitempty"`
}

// Run executes fetch, parse, aggregate, persist and render in order. Emitters
// run concurrently; the first one to fail cancels the others.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	if p.Fetcher == nil || p.Extract == nil {
		return nil, errors.AssertionFailedf("pipeline needs a fetcher and an extractor")
	}
	log := p.Logger
	if log == nil {
		log = logger.Default()
	}
	metrics := p.Metrics
	if metrics == nil {
		metrics = logger.NewMetrics()
	}

	result := &Result{}

	var body []byte
	err := p.stage(ctx, StageFetch, metrics, func(ctx context.Context) error {
		var err error
		body, err = p.Fetcher.Fetch(ctx)
		if err == nil {
			log.Info("Fetched results page", logger.Fields{"bytes": len(body)})
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	err = p.stage(ctx, StageParse, metrics, func(ctx context.Context) error {
		var err error
		result.Matches, err = p.Extract(bytes.NewReader(body))
		if err == nil {
			metrics.AddCounter(CounterMatches, int64(len(result.Matches)))
			log.Info("Extracted matches", logger.Fields{"matches": len(result.Matches)})
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	err = p.stage(ctx, StageAggregate, metrics, func(ctx context.Context) error {
		var err error
		result.Teams, err = match.Aggregate(result.Matches)
		if err != nil {
			return err
		}
		metrics.AddCounter(CounterTeams, int64(len(result.Teams)))
		log.Info("Aggregated teams", logger.Fields{
			"teams":    len(result.Teams),
			"fixtures": match.FixtureCount(result.Teams),
		})

		result.SimilarNames = match.SimilarNames(result.Teams, p.SimilarityThreshold)
		for _, pair := range result.SimilarNames {
			metrics.IncrCounter(CounterWarnings)
			log.Warn("Team names look alike; they are kept as separate teams", logger.Fields{
				"a":     pair.A,
				"b":     pair.B,
				"kind":  string(pair.Kind),
				"score": pair.Score,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if p.Store != nil {
		err = p.stage(ctx, StagePersist, metrics, func(ctx context.Context) error {
			previous, err := p.Store.PreviousMatches()
			if err != nil {
				log.Warn("Previous snapshot unreadable; reporting every match as new", logger.Fields{
					"error": err.Error(),
				})
				previous = nil
			}
			result.Diff = match.Diff(previous, result.Matches)
			log.Info("Compared with previous snapshot", logger.Fields{
				"previous": len(previous),
				"new":      len(result.Diff.NewMatches),
				"changed":  len(result.Diff.Changes),
			})
			metrics.AddCounter(CounterNew, int64(len(result.Diff.NewMatches)))
			metrics.AddCounter(CounterChanged, int64(len(result.Diff.Changes)))

			if err := p.Store.SaveMatches(result.Matches); err != nil {
				return err
			}
			return p.Store.SaveTeams(result.Teams)
		})
		if err != nil {
			return nil, err
		}
	}

	err = p.stage(ctx, StageRender, metrics, func(ctx context.Context) error {
		var err error
		result.Artifacts, err = p.render(ctx, result.Teams)
		if err == nil {
			for _, a := range result.Artifacts {
				if a.Kind == report.KindScorecard {
					metrics.IncrCounter(CounterScorecards)
				}
			}
			log.Info("Rendered outputs", logger.Fields{"artifacts": len(result.Artifacts)})
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (p *Pipeline) stage(ctx context.Context, name Stage, metrics *logger.Metrics, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return &StageError{Stage: name, Err: err}
	}

	start := time.Now()
	err := fn(ctx)
	metrics.RecordTiming("stage."+string(name), time.Since(start))

	if err != nil {
		return &StageError{Stage: name, Err: err}
	}
	return nil
}

func (p *Pipeline) render(ctx context.Context, teams []match.Team) ([]report.Artifact, error) {
	perEmitter := make([][]report.Artifact, len(p.Emitters))

	wg := pool.New().WithContext(ctx).WithCancelOnError().WithFirstError()
	for i, em := range p.Emitters {
		i, em := i, em
		wg.Go(func(ctx context.Context) error {
			artifacts, err := em.Emit(ctx, teams)
			if err != nil {
				return err
			}
			perEmitter[i] = artifacts
			return nil
		})
	}
	if err := wg.Wait(); err != nil {
		return nil, err
	}

	artifacts := []report.Artifact{}
	for _, a := range perEmitter {
		artifacts = append(artifacts, a...)
	}
	return artifacts, nil
}

package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/jengzang/trip-eval-backend-go/internal/config"
	"github.com/jengzang/trip-eval-backend-go/internal/datastore"
	"github.com/jengzang/trip-eval-backend-go/internal/evalspec"
	"github.com/jengzang/trip-eval-backend-go/internal/monitoring"
	"github.com/jengzang/trip-eval-backend-go/internal/phoneview"
	"github.com/jengzang/trip-eval-backend-go/internal/timeutil"
)

// Analyzer names
const (
	AnalyzerTripSegmentation    = "trip_segmentation"
	AnalyzerReferenceTrajectory = "reference_trajectory"
)

// DefaultAnalyzers is the order analyzers run in when none are requested
var DefaultAnalyzers = []string{AnalyzerTripSegmentation, AnalyzerReferenceTrajectory}

// Pipeline builds the phone view of an experiment and runs analyzers over it
type Pipeline struct {
	Store    datastore.Retriever
	Tuning   *config.TuningConfig
	Clock    timeutil.Clock
	Progress ProgressFunc // optional
}

// NewPipeline creates a new pipeline
func NewPipeline(store datastore.Retriever, tuning *config.TuningConfig, clock timeutil.Clock) *Pipeline {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &Pipeline{Store: store, Tuning: tuning, Clock: clock}
}

// Evaluate runs the named analyzers in order. An empty list runs
// DefaultAnalyzers.
func (p *Pipeline) Evaluate(ctx context.Context, spec *evalspec.Details, names []string) (*Run, error) {
	if len(names) == 0 {
		names = DefaultAnalyzers
	}
	analyzers := make([]Analyzer, 0, len(names))
	for _, name := range names {
		a := GetAnalyzer(name)
		if a == nil {
			return nil, fmt.Errorf("unknown analyzer: %s", name)
		}
		analyzers = append(analyzers, a)
	}

	total := len(analyzers) + 1
	startTime := time.Now()

	view, err := phoneview.NewBuilder(p.Store, spec, p.Tuning, p.Clock).Build(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build phone view: %w", err)
	}
	p.report("phone_view", 1, total)

	run := &Run{Spec: spec, Tuning: p.Tuning, View: view}
	for i, a := range analyzers {
		// Check context cancellation
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if err := a.Analyze(ctx, run); err != nil {
			return nil, fmt.Errorf("%s failed: %w", a.GetName(), err)
		}
		p.report(a.GetName(), i+2, total)
	}

	monitoring.Logf("[Pipeline] %s evaluated with %v in %v", spec.Spec.ID, names, time.Since(startTime).Round(time.Millisecond))
	return run, nil
}

func (p *Pipeline) report(stage string, done, total int) {
	if p.Progress == nil {
		return
	}
	p.Progress(Progress{
		Stage:   stage,
		Done:    done,
		Total:   total,
		Percent: done * 100 / total,
	})
}

package analysis

import (
	"context"
	"sort"

	"github.com/jengzang/trip-eval-backend-go/internal/config"
	"github.com/jengzang/trip-eval-backend-go/internal/evalspec"
	"github.com/jengzang/trip-eval-backend-go/internal/models"
)

// Analyzer is the interface that all evaluation stages must implement
type Analyzer interface {
	// Analyze enriches run.View in place
	Analyze(ctx context.Context, run *Run) error

	// GetName returns the name of the analyzer
	GetName() string
}

// Run is the state shared by the analyzers of one evaluation
type Run struct {
	Spec   *evalspec.Details
	Tuning *config.TuningConfig
	View   *models.PhoneView
}

// Progress represents the progress of an evaluation run
type Progress struct {
	Stage   string // analyzer name or "phone_view"
	Done    int    // finished stages
	Total   int    // all stages
	Percent int    // 0-100
}

// ProgressFunc receives progress updates of a run
type ProgressFunc func(Progress)

// BaseAnalyzer provides common functionality for all analyzers
type BaseAnalyzer struct {
	Name string
}

// NewBaseAnalyzer creates a new base analyzer
func NewBaseAnalyzer(name string) *BaseAnalyzer {
	return &BaseAnalyzer{Name: name}
}

// GetName returns the analyzer name
func (a *BaseAnalyzer) GetName() string {
	return a.Name
}

// AnalyzerFactory is a function that creates an analyzer instance
type AnalyzerFactory func() Analyzer

// AnalyzerRegistry maps analyzer names to analyzer factories
var AnalyzerRegistry = make(map[string]AnalyzerFactory)

// RegisterAnalyzer registers an analyzer factory for a name
func RegisterAnalyzer(name string, factory AnalyzerFactory) {
	AnalyzerRegistry[name] = factory
}

// GetAnalyzer retrieves an analyzer instance for a name
func GetAnalyzer(name string) Analyzer {
	factory, ok := AnalyzerRegistry[name]
	if !ok {
		return nil
	}
	return factory()
}

// IsRegistered checks if an analyzer with the name exists
func IsRegistered(name string) bool {
	_, ok := AnalyzerRegistry[name]
	return ok
}

// RegisteredAnalyzers returns the registered names in sorted order
func RegisteredAnalyzers() []string {
	names := make([]string, 0, len(AnalyzerRegistry))
	for name := range AnalyzerRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

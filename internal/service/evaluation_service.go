package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb/geojson"

	"github.com/jengzang/trip-eval-backend-go/internal/analysis"
	"github.com/jengzang/trip-eval-backend-go/internal/config"
	"github.com/jengzang/trip-eval-backend-go/internal/datastore"
	"github.com/jengzang/trip-eval-backend-go/internal/evalspec"
	"github.com/jengzang/trip-eval-backend-go/internal/models"
	"github.com/jengzang/trip-eval-backend-go/internal/monitoring"
	"github.com/jengzang/trip-eval-backend-go/internal/phoneview"
	"github.com/jengzang/trip-eval-backend-go/internal/repository"
	"github.com/jengzang/trip-eval-backend-go/internal/timeutil"
)

var (
	// ErrTaskNotCompleted is returned when the result of an unfinished task
	// is requested
	ErrTaskNotCompleted = errors.New("task has not completed")

	// ErrInvalidRequest is returned for requests that fail validation
	ErrInvalidRequest = errors.New("invalid request")
)

// CreateEvaluationRequest describes one evaluation run
type CreateEvaluationRequest struct {
	SpecID      string   `json:"spec_id" binding:"required"`
	AuthorEmail string   `json:"author_email"`
	Analyzers   []string `json:"analyzers"`
}

// EvaluationService handles evaluation task business logic
type EvaluationService struct {
	repo          *repository.EvaluationTaskRepository
	store         datastore.Retriever
	tuning        *config.TuningConfig
	clock         timeutil.Clock
	defaultAuthor string

	wg sync.WaitGroup
}

// NewEvaluationService creates a new evaluation service
func NewEvaluationService(repo *repository.EvaluationTaskRepository, store datastore.Retriever, tuning *config.TuningConfig, clock timeutil.Clock, defaultAuthor string) *EvaluationService {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &EvaluationService{
		repo:          repo,
		store:         store,
		tuning:        tuning,
		clock:         clock,
		defaultAuthor: defaultAuthor,
	}
}

// CreateTask validates the request, records a pending task and starts the
// evaluation in the background
func (s *EvaluationService) CreateTask(ctx context.Context, req CreateEvaluationRequest, createdBy string) (*models.EvaluationTask, error) {
	names := req.Analyzers
	if len(names) == 0 {
		names = analysis.DefaultAnalyzers
	}
	for _, name := range names {
		if !analysis.IsRegistered(name) {
			return nil, fmt.Errorf("%w: unknown analyzer %s", ErrInvalidRequest, name)
		}
	}

	author := req.AuthorEmail
	if author == "" {
		author = s.defaultAuthor
	}
	if author == "" {
		return nil, fmt.Errorf("%w: author_email is required", ErrInvalidRequest)
	}

	spec, err := evalspec.Load(ctx, s.store, author, req.SpecID, timeutil.UnixSeconds(s.clock))
	if err != nil {
		return nil, err
	}

	task := &models.EvaluationTask{
		RunID:           uuid.NewString(),
		SpecID:          req.SpecID,
		AuthorEmail:     author,
		Analyzers:       strings.Join(names, ","),
		Status:          models.TaskStatusPending,
		ProgressPercent: 0,
		CreatedBy:       createdBy,
	}
	if err := s.repo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	// Start evaluation asynchronously
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.execute(task.ID, spec, names)
	}()

	return task, nil
}

// Wait blocks until every started evaluation has finished
func (s *EvaluationService) Wait() {
	s.wg.Wait()
}

// execute runs the pipeline for a task and stores the outcome
func (s *EvaluationService) execute(taskID int64, spec *evalspec.Details, names []string) {
	monitoring.Logf("[EvaluationService] Executing task %d (spec: %s, analyzers: %v)", taskID, spec.Spec.ID, names)

	if err := s.repo.MarkAsRunning(taskID); err != nil {
		monitoring.Logf("[EvaluationService] Failed to mark task %d as running: %v", taskID, err)
		return
	}

	pipeline := analysis.NewPipeline(s.store, s.tuning, s.clock)
	pipeline.Progress = func(p analysis.Progress) {
		if err := s.repo.UpdateProgress(taskID, p.Percent); err != nil {
			monitoring.Logf("[EvaluationService] Failed to update progress of task %d: %v", taskID, err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	run, err := pipeline.Evaluate(ctx, spec, names)
	if err != nil {
		monitoring.Logf("[EvaluationService] Task %d failed: %v", taskID, err)
		s.fail(taskID, fmt.Sprintf("Evaluation failed: %v", err))
		return
	}

	summary, err := json.Marshal(phoneview.Summarize(run.View))
	if err != nil {
		s.fail(taskID, fmt.Sprintf("failed to encode summary: %v", err))
		return
	}
	result, err := json.Marshal(run.View)
	if err != nil {
		s.fail(taskID, fmt.Sprintf("failed to encode result: %v", err))
		return
	}

	if err := s.repo.MarkAsCompleted(taskID, string(summary), string(result)); err != nil {
		monitoring.Logf("[EvaluationService] Failed to store result of task %d: %v", taskID, err)
		return
	}
	monitoring.Logf("[EvaluationService] Task %d completed", taskID)
}

func (s *EvaluationService) fail(taskID int64, msg string) {
	if err := s.repo.MarkAsFailed(taskID, msg); err != nil {
		monitoring.Logf("[EvaluationService] Failed to mark task %d as failed: %v", taskID, err)
	}
}

// GetTask retrieves a task by ID
func (s *EvaluationService) GetTask(id int64) (*models.EvaluationTask, error) {
	return s.repo.GetByID(id)
}

// ListTasks retrieves tasks matching the filter
func (s *EvaluationService) ListTasks(filter models.TaskFilter) ([]*models.EvaluationTask, error) {
	return s.repo.List(filter)
}

// GetResult returns the evaluated phone view of a completed task
func (s *EvaluationService) GetResult(id int64) (*models.PhoneView, error) {
	task, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if task.Status != models.TaskStatusCompleted {
		return nil, fmt.Errorf("%w (status: %s)", ErrTaskNotCompleted, task.Status)
	}

	data, err := s.repo.GetResult(id)
	if err != nil {
		return nil, err
	}
	var view models.PhoneView
	if err := json.Unmarshal([]byte(data), &view); err != nil {
		return nil, fmt.Errorf("failed to decode result of task %d: %w", id, err)
	}
	return &view, nil
}

// GetReferenceFeatures returns the reference trajectories of a completed
// task as GeoJSON
func (s *EvaluationService) GetReferenceFeatures(id int64, os string) (*geojson.FeatureCollection, error) {
	view, err := s.GetResult(id)
	if err != nil {
		return nil, err
	}
	return phoneview.ReferenceFeatures(view, os), nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"backlog-planner/internal/model"
	"backlog-planner/internal/repository"
)

// ErrInvalidInput wraps every validation failure of user input.
var ErrInvalidInput = errors.New("invalid input")

const (
	defaultPriority = model.PriorityP1
	defaultEnergy   = model.EnergyMed
	defaultEstimate = 30
	defaultGoalTag  = "default"
)

// TaskInput represents data required to create a task.
type TaskInput struct {
	Title       string
	Priority    model.Priority
	EnergyNeed  model.Energy
	EstimateMin int
	DueDate     *time.Time
	GoalTag     string
}

// QuickInput is the low-friction capture used for one-line adds.
func QuickInput(title string) TaskInput {
	return TaskInput{
		Title:       title,
		Priority:    model.PriorityP2,
		EnergyNeed:  model.EnergyLow,
		EstimateMin: 15,
	}
}

// TaskService wraps task-related business logic.
type TaskService struct {
	tasks *repository.TaskCollection
	now   func() time.Time
}

func NewTaskService(tasks *repository.TaskCollection, now func() time.Time) *TaskService {
	if now == nil {
		now = time.Now
	}
	return &TaskService{tasks: tasks, now: now}
}

func (s *TaskService) CreateTask(ctx context.Context, input TaskInput) (*model.Task, error) {
	task, err := input.build()
	if err != nil {
		return nil, err
	}
	stored, err := s.tasks.Insert(ctx, task)
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

func (in TaskInput) build() (model.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return model.Task{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}

	priority := in.Priority
	if priority == "" {
		priority = defaultPriority
	}
	if !priority.Valid() {
		return model.Task{}, fmt.Errorf("%w: unknown priority %q", ErrInvalidInput, priority)
	}

	energy := in.EnergyNeed
	if energy == "" {
		energy = defaultEnergy
	}
	if !energy.Valid() {
		return model.Task{}, fmt.Errorf("%w: unknown energy %q", ErrInvalidInput, energy)
	}

	estimate := in.EstimateMin
	if estimate == 0 {
		estimate = defaultEstimate
	}
	if estimate < 0 {
		return model.Task{}, fmt.Errorf("%w: estimate must be positive", ErrInvalidInput)
	}

	goal := strings.TrimSpace(in.GoalTag)
	if goal == "" {
		goal = defaultGoalTag
	}

	return model.Task{
		Title:       title,
		Priority:    priority,
		EnergyNeed:  energy,
		EstimateMin: estimate,
		DueDate:     in.DueDate,
		GoalTag:     goal,
	}, nil
}

// ListTasks returns every task, newest first.
func (s *TaskService) ListTasks(ctx context.Context) ([]model.Task, error) {
	tasks, err := s.tasks.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
	return tasks, nil
}

// ListPending returns the backlog: tasks not completed yet, oldest first.
func (s *TaskService) ListPending(ctx context.Context) ([]model.Task, error) {
	tasks, err := s.tasks.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	pending := tasks[:0]
	for _, t := range tasks {
		if !t.Completed {
			pending = append(pending, t)
		}
	}
	return pending, nil
}

func (s *TaskService) GetTask(ctx context.Context, id string) (*model.Task, error) {
	task, err := s.tasks.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// SetCompleted marks a task done or not done.
func (s *TaskService) SetCompleted(ctx context.Context, id string, done bool) (*model.Task, error) {
	now := s.now()
	task, err := s.tasks.Update(ctx, id, model.TaskPatch{Completed: &done, CompletedAt: &now})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (s *TaskService) CompleteTask(ctx context.Context, id string) (*model.Task, error) {
	return s.SetCompleted(ctx, id, true)
}

// ToggleTask flips the completion flag.
func (s *TaskService) ToggleTask(ctx context.Context, id string) (*model.Task, error) {
	task, err := s.tasks.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.SetCompleted(ctx, id, !task.Completed)
}

func (s *TaskService) UpdateTask(ctx context.Context, id string, patch model.TaskPatch) (*model.Task, error) {
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if patch.Priority != nil && !patch.Priority.Valid() {
		return nil, fmt.Errorf("%w: unknown priority %q", ErrInvalidInput, *patch.Priority)
	}
	if patch.EnergyNeed != nil && !patch.EnergyNeed.Valid() {
		return nil, fmt.Errorf("%w: unknown energy %q", ErrInvalidInput, *patch.EnergyNeed)
	}
	if patch.EstimateMin != nil && *patch.EstimateMin <= 0 {
		return nil, fmt.Errorf("%w: estimate must be positive", ErrInvalidInput)
	}
	task, err := s.tasks.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// DeleteTask removes a task and reports whether it existed.
func (s *TaskService) DeleteTask(ctx context.Context, id string) (bool, error) {
	return s.tasks.Remove(ctx, id)
}

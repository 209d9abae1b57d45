package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"backlog-planner/internal/model"
	"backlog-planner/internal/planner"
	"backlog-planner/internal/repository"
)

// ErrNoPlan is returned when accepting a plan while none is shown.
var ErrNoPlan = errors.New("no plan")

// acceptedRating is the rating a history entry gets when the main task is accepted.
const acceptedRating = 5

type PlanState int

const (
	PlanIdle PlanState = iota
	PlanPlanned
)

func (s PlanState) String() string {
	if s == PlanPlanned {
		return "planned"
	}
	return "idle"
}

// PlanSession holds the last computed plan for display. The task collection
// stays the source of truth; the plan is only ever replaced, never edited.
type PlanSession struct {
	mu      sync.Mutex
	tasks   *repository.TaskCollection
	history *repository.HistoryCollection
	now     func() time.Time
	state   PlanState
	plan    planner.Plan
}

func NewPlanSession(tasks *repository.TaskCollection, history *repository.HistoryCollection, now func() time.Time) *PlanSession {
	if now == nil {
		now = time.Now
	}
	return &PlanSession{tasks: tasks, history: history, now: now}
}

// Generate scores the current backlog and shows the resulting plan.
func (s *PlanSession) Generate(ctx context.Context, energy model.Energy) (planner.Plan, error) {
	tasks, err := s.tasks.ListAll(ctx)
	if err != nil {
		return planner.Plan{}, fmt.Errorf("load backlog: %w", err)
	}
	plan := planner.Compute(tasks, energy, s.now())

	s.mu.Lock()
	defer s.mu.Unlock()
	s.plan = plan
	s.state = PlanPlanned
	log.Printf("[info] plan generated energy=%s entries=%d", energy, len(plan.Entries))
	return plan, nil
}

// Current returns the shown plan, if any.
func (s *PlanSession) Current() (planner.Plan, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != PlanPlanned {
		return planner.Plan{}, false
	}
	return s.plan, true
}

func (s *PlanSession) State() PlanState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Reset drops the shown plan.
func (s *PlanSession) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = PlanIdle
	s.plan = planner.Plan{}
}

// Invalidate drops the plan after the backlog changed under it.
func (s *PlanSession) Invalidate() {
	if s.State() == PlanPlanned {
		log.Printf("[info] plan invalidated by backlog change")
	}
	s.Reset()
}

// AcceptMain completes the plan's main task, logs it to history and returns
// the session to idle. If the main task no longer exists the session is reset
// and the not-found error returned. A main task completed since the plan was
// shown resets the session with ErrNoPlan and leaves history alone.
func (s *PlanSession) AcceptMain(ctx context.Context) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	main, ok := s.plan.Main()
	if s.state != PlanPlanned || !ok {
		return model.Task{}, ErrNoPlan
	}

	stored, err := s.tasks.Get(ctx, main.Task.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.state, s.plan = PlanIdle, planner.Plan{}
		}
		return model.Task{}, fmt.Errorf("complete main task: %w", err)
	}
	if stored.Completed {
		s.state, s.plan = PlanIdle, planner.Plan{}
		return stored, fmt.Errorf("%w: main task %s is already completed", ErrNoPlan, stored.ID)
	}

	now := s.now()
	done := true
	task, err := s.tasks.Update(ctx, main.Task.ID, model.TaskPatch{Completed: &done, CompletedAt: &now})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.state, s.plan = PlanIdle, planner.Plan{}
		}
		return model.Task{}, fmt.Errorf("complete main task: %w", err)
	}
	s.state, s.plan = PlanIdle, planner.Plan{}

	entry := model.HistoryEntry{TaskID: task.ID, Title: task.Title, Rating: acceptedRating}
	if _, err := s.history.Insert(ctx, entry); err != nil {
		return task, fmt.Errorf("record history: %w", err)
	}
	log.Printf("[info] main task accepted id=%s", task.ID)
	return task, nil
}

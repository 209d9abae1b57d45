package model

import (
	"strings"
	"time"
)

// Priority orders tasks from P0 (most important) to P3.
type Priority string

const (
	PriorityP0 Priority = "P0"
	PriorityP1 Priority = "P1"
	PriorityP2 Priority = "P2"
	PriorityP3 Priority = "P3"
)

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityP0, PriorityP1, PriorityP2, PriorityP3:
		return true
	}
	return false
}

// ParsePriority accepts "p1", "P1" or "1".
func ParsePriority(raw string) (Priority, bool) {
	value := strings.ToUpper(strings.TrimSpace(raw))
	if len(value) == 1 {
		value = "P" + value
	}
	p := Priority(value)
	return p, p.Valid()
}

// Energy is both the user's self-reported capacity and a task's demand.
type Energy string

const (
	EnergyLow  Energy = "Low"
	EnergyMed  Energy = "Med"
	EnergyHigh Energy = "High"
)

// Level maps the energy onto the 1..3 scale. Unknown values count as Med.
func (e Energy) Level() int {
	switch e {
	case EnergyLow:
		return 1
	case EnergyHigh:
		return 3
	default:
		return 2
	}
}

// Valid reports whether e is one of the known energy values.
func (e Energy) Valid() bool {
	return e == EnergyLow || e == EnergyMed || e == EnergyHigh
}

// ParseEnergy is case-insensitive and understands "medium".
func ParseEnergy(raw string) (Energy, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "low", "l", "1":
		return EnergyLow, true
	case "med", "medium", "m", "2":
		return EnergyMed, true
	case "high", "h", "3":
		return EnergyHigh, true
	default:
		return "", false
	}
}

// Task represents a single backlog item.
type Task struct {
	Base
	Title       string     `gorm:"not null" json:"title"`
	Priority    Priority   `json:"priority"`
	EnergyNeed  Energy     `json:"energyNeed"`
	EstimateMin int        `json:"estimateMin"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Completed   bool       `gorm:"index" json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	GoalTag     string     `json:"goalTag,omitempty"`
}

func (Task) TableName() string { return CollectionTasks }

// TaskPatch lists the task fields a partial update may touch.
type TaskPatch struct {
	Title        *string
	Priority     *Priority
	EnergyNeed   *Energy
	EstimateMin  *int
	DueDate      *time.Time
	ClearDueDate bool
	Completed    *bool
	CompletedAt  *time.Time
	GoalTag      *string
}

// Apply merges the set fields onto t.
func (p TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.EnergyNeed != nil {
		t.EnergyNeed = *p.EnergyNeed
	}
	if p.EstimateMin != nil {
		t.EstimateMin = *p.EstimateMin
	}
	if p.ClearDueDate {
		t.DueDate = nil
	} else if p.DueDate != nil {
		due := *p.DueDate
		t.DueDate = &due
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
		if !t.Completed {
			t.CompletedAt = nil
		}
	}
	if p.CompletedAt != nil && t.Completed {
		at := *p.CompletedAt
		t.CompletedAt = &at
	}
	if p.GoalTag != nil {
		t.GoalTag = *p.GoalTag
	}
}

// Package planner ranks a backlog against the user's energy level and picks
// the day's plan: one main task plus up to two small fillers.
//
// Everything here is a pure function of its inputs; callers pass the
// backlog snapshot and the current time explicitly.
package planner

import (
	"sort"
	"time"

	"backlog-planner/internal/model"
)

const (
	overdueBonus     = 200
	dueSoonBonus     = 80
	dueSoonWindow    = 2 * 24 * time.Hour
	mismatchPenalty  = -50
	matchBonus       = 30
	longTaskPenalty  = -30
	longTaskMinutes  = 60
	fillerMaxMinutes = 30
	maxFillers       = 2
)

var priorityScores = map[model.Priority]int{
	model.PriorityP0: 100,
	model.PriorityP1: 50,
	model.PriorityP2: 20,
	model.PriorityP3: 0,
}

// Slot tells the main task apart from fillers.
type Slot string

const (
	SlotMain   Slot = "main"
	SlotFiller Slot = "filler"
)

// Breakdown holds the components of a task's score.
type Breakdown struct {
	Priority int
	Due      int
	Mismatch int
	Match    int
	LongTask int
}

func (b Breakdown) Total() int {
	return b.Priority + b.Due + b.Mismatch + b.Match + b.LongTask
}

// Score rates one task for the given energy level at time now.
func Score(task model.Task, energy model.Energy, now time.Time) Breakdown {
	var b Breakdown
	b.Priority = priorityScores[task.Priority]

	if task.DueDate != nil {
		left := task.DueDate.Sub(now)
		switch {
		case left < 0:
			b.Due = overdueBonus
		case left < dueSoonWindow:
			b.Due = dueSoonBonus
		}
	}

	userE := energy.Level()
	taskE := task.EnergyNeed.Level()
	if userE < taskE {
		b.Mismatch = mismatchPenalty
	}
	if userE == 3 && taskE == 3 {
		b.Match = matchBonus
	}
	if userE == 1 && task.EstimateMin > longTaskMinutes {
		b.LongTask = longTaskPenalty
	}
	return b
}

// Entry is one scored task placed in a plan.
type Entry struct {
	Task  model.Task
	Score Breakdown
	Slot  Slot
}

// Plan is the ordered daily plan: the main task first, then fillers.
type Plan struct {
	Energy      model.Energy
	GeneratedAt time.Time
	Entries     []Entry
}

func (p Plan) Empty() bool {
	return len(p.Entries) == 0
}

// Main returns the main task entry, if the plan has one.
func (p Plan) Main() (Entry, bool) {
	if len(p.Entries) == 0 {
		return Entry{}, false
	}
	return p.Entries[0], true
}

func (p Plan) Fillers() []Entry {
	if len(p.Entries) <= 1 {
		return nil
	}
	return p.Entries[1:]
}

// Compute builds the plan for tasks at the given energy level. Completed
// tasks are ignored; ties keep the backlog order.
func Compute(tasks []model.Task, energy model.Energy, now time.Time) Plan {
	plan := Plan{Energy: energy, GeneratedAt: now}

	scored := make([]Entry, 0, len(tasks))
	for _, task := range tasks {
		if task.Completed {
			continue
		}
		scored = append(scored, Entry{Task: task, Score: Score(task, energy, now)})
	}
	if len(scored) == 0 {
		return plan
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score.Total() > scored[j].Score.Total()
	})

	main := scored[0]
	main.Slot = SlotMain
	plan.Entries = append(plan.Entries, main)

	for _, e := range scored[1:] {
		if len(plan.Entries) > maxFillers {
			break
		}
		if e.Task.EstimateMin <= fillerMaxMinutes || e.Task.EnergyNeed == model.EnergyLow {
			e.Slot = SlotFiller
			plan.Entries = append(plan.Entries, e)
		}
	}
	return plan
}

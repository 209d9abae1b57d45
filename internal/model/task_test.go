package model

import (
	"testing"
	"time"
)

func TestParsePriority(t *testing.T) {
	tests := []struct {
		raw  string
		want Priority
		ok   bool
	}{
		{"P0", PriorityP0, true},
		{"p2", PriorityP2, true},
		{" 3 ", PriorityP3, true},
		{"P4", "", false},
		{"high", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParsePriority(tt.raw)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Fatalf("ParsePriority(%q)=%q,%v want %q,%v", tt.raw, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParseEnergy(t *testing.T) {
	tests := []struct {
		raw  string
		want Energy
		ok   bool
	}{
		{"low", EnergyLow, true},
		{"MEDIUM", EnergyMed, true},
		{"Med", EnergyMed, true},
		{"h", EnergyHigh, true},
		{"3", EnergyHigh, true},
		{"tired", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseEnergy(tt.raw)
		if ok != tt.ok || got != tt.want {
			t.Fatalf("ParseEnergy(%q)=%q,%v want %q,%v", tt.raw, got, ok, tt.want, tt.ok)
		}
	}
}

func TestEnergyLevel(t *testing.T) {
	if EnergyLow.Level() != 1 || EnergyMed.Level() != 2 || EnergyHigh.Level() != 3 {
		t.Fatal("unexpected energy levels")
	}
	if Energy("weird").Level() != 2 {
		t.Fatal("unknown energy should count as Med")
	}
}

func TestTaskPatchApply(t *testing.T) {
	due := time.Date(2026, 6, 3, 0, 0, 0, 0, time.UTC)
	doneAt := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	task := Task{Base: Base{ID: "t1"}, Title: "old", Priority: PriorityP3, EstimateMin: 10, DueDate: &due}

	title := "new"
	done := true
	TaskPatch{Title: &title, Completed: &done, CompletedAt: &doneAt}.Apply(&task)
	if task.Title != "new" || !task.Completed || task.CompletedAt == nil || !task.CompletedAt.Equal(doneAt) {
		t.Fatalf("task=%+v", task)
	}
	if task.Priority != PriorityP3 || task.EstimateMin != 10 || task.ID != "t1" {
		t.Fatalf("undeclared fields changed: %+v", task)
	}

	undone := false
	TaskPatch{Completed: &undone, CompletedAt: &doneAt, ClearDueDate: true}.Apply(&task)
	if task.Completed || task.CompletedAt != nil {
		t.Fatalf("completion not cleared: %+v", task)
	}
	if task.DueDate != nil {
		t.Fatalf("due date not cleared: %v", task.DueDate)
	}
}

package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"backlog-planner/internal/model"
	"backlog-planner/internal/repository"
)

func TestDueStatus(t *testing.T) {
	now := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	at := func(d time.Duration) *time.Time {
		v := now.Add(d)
		return &v
	}

	tests := []struct {
		name string
		due  *time.Time
		want Due
	}{
		{"no date", nil, DueNone},
		{"yesterday", at(-24 * time.Hour), DueOverdue},
		{"tomorrow", at(24 * time.Hour), DueSoon},
		{"edge of window", at(48 * time.Hour), DueSoon},
		{"next week", at(7 * 24 * time.Hour), DueLater},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DueStatus(model.Task{DueDate: tt.due}, now)
			if got != tt.want {
				t.Fatalf("DueStatus=%d, want %d", got, tt.want)
			}
		})
	}
}

func TestDigestGroupsTasks(t *testing.T) {
	ctx := context.Background()
	clock := newClock()
	store := newTestStore(t, clock)
	tasks := NewTaskService(repository.Tasks(store), clock.Now)

	past := clock.Now().Add(-2 * time.Hour)
	soon := clock.Now().Add(5 * time.Hour)
	if _, err := tasks.CreateTask(ctx, TaskInput{Title: "late <report>", DueDate: &past}); err != nil {
		t.Fatal(err)
	}
	if _, err := tasks.CreateTask(ctx, TaskInput{Title: "soon", DueDate: &soon}); err != nil {
		t.Fatal(err)
	}
	open, err := tasks.CreateTask(ctx, TaskInput{Title: "someday"})
	if err != nil {
		t.Fatal(err)
	}
	done, err := tasks.CreateTask(ctx, TaskInput{Title: "done"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tasks.CompleteTask(ctx, done.ID); err != nil {
		t.Fatal(err)
	}

	reminders := NewReminderService(repository.Tasks(store))
	d, err := reminders.Digest(ctx, clock.Now())
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}
	if len(d.Overdue) != 1 || len(d.DueSoon) != 1 || len(d.Open) != 1 || d.Open[0].ID != open.ID {
		t.Fatalf("digest=%+v", d)
	}
	if d.CompletedToday != 1 || d.Pending() != 3 {
		t.Fatalf("CompletedToday=%d Pending=%d", d.CompletedToday, d.Pending())
	}

	summary, err := reminders.DailySummary(ctx, clock.Now())
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Overdue", "Due soon", "late &lt;report&gt;", "Done today: 1"} {
		if !strings.Contains(summary, want) {
			t.Fatalf("summary missing %q:\n%s", want, summary)
		}
	}
}

func TestDailySummaryEmptyBacklog(t *testing.T) {
	clock := newClock()
	reminders := NewReminderService(repository.Tasks(newTestStore(t, clock)))

	summary, err := reminders.DailySummary(context.Background(), clock.Now())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(summary, "backlog is empty") {
		t.Fatalf("summary=%q", summary)
	}
}

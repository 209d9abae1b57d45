package service

import (
	"context"
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"backlog-planner/internal/model"
	"backlog-planner/internal/repository"
)

const dueSoonWindow = 48 * time.Hour

// Digest groups the backlog by deadline urgency.
type Digest struct {
	Date           time.Time
	Overdue        []model.Task
	DueSoon        []model.Task
	Open           []model.Task
	CompletedToday int
}

// Pending counts every open task in the digest.
func (d Digest) Pending() int {
	return len(d.Overdue) + len(d.DueSoon) + len(d.Open)
}

// ReminderService builds human-readable summaries for daily notifications.
type ReminderService struct {
	tasks *repository.TaskCollection
}

func NewReminderService(tasks *repository.TaskCollection) *ReminderService {
	return &ReminderService{tasks: tasks}
}

func (s *ReminderService) Digest(ctx context.Context, now time.Time) (Digest, error) {
	tasks, err := s.tasks.ListAll(ctx)
	if err != nil {
		return Digest{}, err
	}

	d := Digest{Date: now}
	var pending []model.Task
	for _, task := range tasks {
		if task.Completed {
			if task.CompletedAt != nil && sameDay(*task.CompletedAt, now) {
				d.CompletedToday++
			}
			continue
		}
		pending = append(pending, task)
	}

	sort.SliceStable(pending, func(i, j int) bool {
		switch {
		case pending[i].DueDate == nil && pending[j].DueDate == nil:
			return pending[i].CreatedAt.After(pending[j].CreatedAt)
		case pending[i].DueDate == nil:
			return false
		case pending[j].DueDate == nil:
			return true
		default:
			return pending[i].DueDate.Before(*pending[j].DueDate)
		}
	})

	for _, task := range pending {
		switch DueStatus(task, now) {
		case DueOverdue:
			d.Overdue = append(d.Overdue, task)
		case DueSoon:
			d.DueSoon = append(d.DueSoon, task)
		default:
			d.Open = append(d.Open, task)
		}
	}
	return d, nil
}

// DailySummary renders the digest as Telegram HTML.
func (s *ReminderService) DailySummary(ctx context.Context, now time.Time) (string, error) {
	d, err := s.Digest(ctx, now)
	if err != nil {
		return "", err
	}

	var builder strings.Builder
	builder.WriteString("📋 <b>Daily digest</b>\n")
	builder.WriteString(fmt.Sprintf("🗓 %s\n\n", now.Format("2006-01-02")))

	if d.Pending() == 0 {
		builder.WriteString("— backlog is empty\n")
	}
	writeSection(&builder, "⚠️ <b>Overdue</b>", d.Overdue, now)
	writeSection(&builder, "⏳ <b>Due soon</b>", d.DueSoon, now)
	writeSection(&builder, "🟢 <b>Backlog</b>", d.Open, now)

	if d.CompletedToday > 0 {
		builder.WriteString(fmt.Sprintf("\n✅ Done today: %d\n", d.CompletedToday))
	}
	return strings.TrimSpace(builder.String()), nil
}

func writeSection(sb *strings.Builder, title string, tasks []model.Task, now time.Time) {
	if len(tasks) == 0 {
		return
	}
	sb.WriteString(title)
	sb.WriteByte('\n')
	for _, task := range tasks {
		sb.WriteString(FormatTaskHTML(task, now))
	}
	sb.WriteByte('\n')
}

// Due classifies a task's deadline.
type Due int

const (
	DueNone Due = iota
	DueLater
	DueSoon
	DueOverdue
)

func DueStatus(task model.Task, now time.Time) Due {
	if task.DueDate == nil {
		return DueNone
	}
	d := task.DueDate.In(now.Location())
	switch {
	case now.After(d):
		return DueOverdue
	case d.Sub(now) <= dueSoonWindow:
		return DueSoon
	default:
		return DueLater
	}
}

// FormatTaskHTML renders one task line with its tags and deadline.
func FormatTaskHTML(task model.Task, now time.Time) string {
	var sb strings.Builder

	icon := "🟢"
	switch DueStatus(task, now) {
	case DueOverdue:
		icon = "⚠️"
	case DueSoon:
		icon = "⏳"
	}
	if task.Completed {
		icon = "✅"
	}

	title := html.EscapeString(strings.TrimSpace(task.Title))
	sb.WriteString(fmt.Sprintf("%s %s <i>(%s · %s · %dm)</i>", icon, title, task.Priority, task.EnergyNeed, task.EstimateMin))

	if task.DueDate != nil {
		d := task.DueDate.In(now.Location())
		if now.After(d) {
			sb.WriteString(fmt.Sprintf("\n   ⏰ due %s — <b>overdue</b>", d.Format("2006-01-02")))
		} else {
			daysLeft := int(d.Sub(now).Hours()/24) + 1
			sb.WriteString(fmt.Sprintf("\n   ⏰ due %s · ≈%d d left", d.Format("2006-01-02"), daysLeft))
		}
	}

	sb.WriteByte('\n')
	return sb.String()
}

func sameDay(a, b time.Time) bool {
	a = a.In(b.Location())
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

package service

import (
	"context"
	"testing"
	"time"
)

func TestBuildDailySpec(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"03:00", "0 0 3 * * *", false},
		{" 21:45 ", "0 45 21 * * *", false},
		{"24:00", "", true},
		{"12:60", "", true},
		{"noon", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := buildDailySpec(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("buildDailySpec(%q) err=%v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Fatalf("buildDailySpec(%q)=%q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestScheduleDailyNext(t *testing.T) {
	s := NewSchedulerService(time.UTC, 0)
	id, err := s.ScheduleDaily("backup", "03:00", func(context.Context) error { return nil })
	if err != nil {
		t.Fatalf("ScheduleDaily: %v", err)
	}
	if _, err := s.ScheduleDaily("bad", "3pm", func(context.Context) error { return nil }); err == nil {
		t.Fatal("expected error for malformed time")
	}

	s.Start()
	defer s.Stop()

	next := s.Next(id)
	if next.IsZero() {
		t.Fatal("next run not scheduled")
	}
	if next.Hour() != 3 || next.Minute() != 0 || next.Second() != 0 {
		t.Fatalf("next=%v, want 03:00:00", next)
	}
}

func TestScheduleIntervalRejectsNonPositive(t *testing.T) {
	s := NewSchedulerService(time.UTC, time.Second)
	if _, err := s.ScheduleInterval("tick", 0, func(context.Context) error { return nil }); err == nil {
		t.Fatal("expected error for zero interval")
	}
}

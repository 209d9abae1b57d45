package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"backlog-planner/internal/model"
	"backlog-planner/internal/repository"
)

func TestSearchTerms(t *testing.T) {
	ctx := context.Background()
	clock := newClock()
	svc := NewJournalService(newTestStore(t, clock))

	for _, term := range []string{"Wabi-sabi", "Hygge", "Japandi"} {
		if _, err := svc.AddTerm(ctx, term, "definition of "+term); err != nil {
			t.Fatalf("AddTerm(%q): %v", term, err)
		}
		clock.Advance(time.Second)
	}

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"Hygge", "Japandi", "Wabi-sabi"}},
		{"JA", []string{"Japandi"}},
		{"a", []string{"Japandi", "Wabi-sabi"}},
		{"zen", nil},
	}
	for _, tt := range tests {
		got, err := svc.SearchTerms(ctx, tt.query)
		if err != nil {
			t.Fatalf("SearchTerms(%q): %v", tt.query, err)
		}
		var names []string
		for _, term := range got {
			names = append(names, term.Term)
		}
		if len(names) != len(tt.want) {
			t.Fatalf("SearchTerms(%q)=%v, want %v", tt.query, names, tt.want)
		}
		for i := range names {
			if names[i] != tt.want[i] {
				t.Fatalf("SearchTerms(%q)=%v, want %v", tt.query, names, tt.want)
			}
		}
	}

	if _, err := svc.AddTerm(ctx, " ", "x"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err=%v, want ErrInvalidInput", err)
	}
}

func TestRemoveTerm(t *testing.T) {
	ctx := context.Background()
	clock := newClock()
	svc := NewJournalService(newTestStore(t, clock))

	term, err := svc.AddTerm(ctx, "Patina", "surface aged by use")
	if err != nil {
		t.Fatal(err)
	}
	removed, err := svc.RemoveTerm(ctx, term.ID)
	if err != nil || !removed {
		t.Fatalf("RemoveTerm=%v, %v", removed, err)
	}
	terms, _ := svc.SearchTerms(ctx, "")
	if len(terms) != 0 {
		t.Fatalf("terms=%+v", terms)
	}
}

func TestUpdateTerm(t *testing.T) {
	ctx := context.Background()
	clock := newClock()
	svc := NewJournalService(newTestStore(t, clock))

	term, err := svc.AddTerm(ctx, "Patina", "old")
	if err != nil {
		t.Fatal(err)
	}
	def := "  surface aged by use "
	updated, err := svc.UpdateTerm(ctx, term.ID, model.TermPatch{Definition: &def})
	if err != nil {
		t.Fatalf("UpdateTerm: %v", err)
	}
	if updated.Term != "Patina" || updated.Definition != "surface aged by use" {
		t.Fatalf("term=%+v", updated)
	}

	blank := " "
	if _, err := svc.UpdateTerm(ctx, term.ID, model.TermPatch{Term: &blank}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err=%v, want ErrInvalidInput", err)
	}
	if _, err := svc.UpdateTerm(ctx, "missing", model.TermPatch{Definition: &def}); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("err=%v, want ErrNotFound", err)
	}
}

func TestEmotions(t *testing.T) {
	ctx := context.Background()
	clock := newClock()
	svc := NewJournalService(newTestStore(t, clock))

	if _, err := svc.LogEmotion(ctx, 11, nil, ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err=%v, want ErrInvalidInput", err)
	}
	if _, err := svc.LogEmotion(ctx, 3, []string{"work"}, "long meeting"); err != nil {
		t.Fatal(err)
	}
	clock.Advance(time.Minute)
	if _, err := svc.LogEmotion(ctx, 8, []string{"family", "rest"}, "walk"); err != nil {
		t.Fatal(err)
	}

	all, err := svc.Emotions(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 || all[0].Event != "walk" {
		t.Fatalf("all=%+v", all)
	}

	work, err := svc.Emotions(ctx, "work")
	if err != nil {
		t.Fatal(err)
	}
	if len(work) != 1 || work[0].Temperature != 3 {
		t.Fatalf("work=%+v", work)
	}
}

func TestDesignCasesByStyle(t *testing.T) {
	ctx := context.Background()
	clock := newClock()
	svc := NewJournalService(newTestStore(t, clock))

	if _, err := svc.AddDesignCase(ctx, model.DesignCase{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err=%v, want ErrInvalidInput", err)
	}
	if _, err := svc.AddDesignCase(ctx, model.DesignCase{Name: "loft", Styles: []string{"industrial"}}); err != nil {
		t.Fatal(err)
	}
	clock.Advance(time.Minute)
	if _, err := svc.AddDesignCase(ctx, model.DesignCase{Name: "cabin", Styles: []string{"rustic", "nordic"}}); err != nil {
		t.Fatal(err)
	}

	all, err := svc.DesignCases(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 || all[0].Name != "cabin" {
		t.Fatalf("all=%+v", all)
	}
	nordic, err := svc.DesignCases(ctx, "nordic")
	if err != nil {
		t.Fatal(err)
	}
	if len(nordic) != 1 || nordic[0].Name != "cabin" {
		t.Fatalf("nordic=%+v", nordic)
	}
}

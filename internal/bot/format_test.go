package bot

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"backlog-planner/internal/backup"
	"backlog-planner/internal/model"
	"backlog-planner/internal/planner"
)

func TestParseDueDate(t *testing.T) {
	now := time.Date(2026, 6, 1, 9, 30, 0, 0, time.UTC)
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{"2026-06-10", time.Date(2026, 6, 10, 23, 59, 0, 0, time.UTC), false},
		{"today", time.Date(2026, 6, 1, 23, 59, 0, 0, time.UTC), false},
		{"Tomorrow", time.Date(2026, 6, 2, 23, 59, 0, 0, time.UTC), false},
		{"10.06.2026", time.Time{}, true},
		{"", time.Time{}, true},
	}
	for _, tt := range tests {
		got, err := parseDueDate(tt.in, now)
		if (err != nil) != tt.wantErr {
			t.Fatalf("parseDueDate(%q) err=%v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if !got.Equal(tt.want) {
			t.Fatalf("parseDueDate(%q)=%v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseTermArgs(t *testing.T) {
	tests := []struct {
		in   string
		name string
		def  string
		ok   bool
	}{
		{"Wabi-sabi - beauty in imperfection", "Wabi-sabi", "beauty in imperfection", true},
		{"Patina", "Patina", "", true},
		{" - orphan definition", "", "", false},
		{"", "", "", false},
	}
	for _, tt := range tests {
		name, def, ok := parseTermArgs(tt.in)
		if name != tt.name || def != tt.def || ok != tt.ok {
			t.Fatalf("parseTermArgs(%q)=%q,%q,%v want %q,%q,%v", tt.in, name, def, ok, tt.name, tt.def, tt.ok)
		}
	}
}

func TestParseCaseArgs(t *testing.T) {
	c, ok := parseCaseArgs(" Kyoto tea room | living | Japandi, wabi-sabi ,, | calm | light is a material ")
	if !ok {
		t.Fatal("parseCaseArgs rejected a full case")
	}
	if c.Name != "Kyoto tea room" || c.RoomType != "living" || c.PrimaryMood != "calm" || c.GoldenSentence != "light is a material" {
		t.Fatalf("case=%+v", c)
	}
	if strings.Join(c.Styles, ",") != "japandi,wabi-sabi" {
		t.Fatalf("styles=%v", c.Styles)
	}

	c, ok = parseCaseArgs("Loft")
	if !ok || c.Name != "Loft" || len(c.Styles) != 0 || c.RoomType != "" {
		t.Fatalf("name only: case=%+v ok=%v", c, ok)
	}

	for _, in := range []string{"", "  ", " | living | modern"} {
		if _, ok := parseCaseArgs(in); ok {
			t.Fatalf("parseCaseArgs(%q) accepted a case without a name", in)
		}
	}
}

func TestFormatCase(t *testing.T) {
	c := model.DesignCase{Name: "Tea & light", RoomType: "living", PrimaryMood: "calm", Styles: []string{"japandi"}, GoldenSentence: "less <is> more"}
	got := formatCase(c)
	want := "• <b>Tea &amp; light</b> (living, calm) #japandi\n  <i>less &lt;is&gt; more</i>"
	if got != want {
		t.Fatalf("formatCase=%q, want %q", got, want)
	}
	if got := formatCase(model.DesignCase{Name: "Loft"}); got != "• <b>Loft</b>" {
		t.Fatalf("formatCase=%q", got)
	}
}

func TestParseMoodArgs(t *testing.T) {
	temp, tags, event, err := parseMoodArgs("7 Work #focus - shipped the release")
	if err != nil {
		t.Fatalf("parseMoodArgs: %v", err)
	}
	if temp != 7 || event != "shipped the release" {
		t.Fatalf("temp=%d event=%q", temp, event)
	}
	if strings.Join(tags, ",") != "work,focus" {
		t.Fatalf("tags=%v", tags)
	}

	for _, bad := range []string{"", "hot", "11", "-1 sad"} {
		if _, _, _, err := parseMoodArgs(bad); !errors.Is(err, errBadMood) {
			t.Fatalf("parseMoodArgs(%q) err=%v, want errBadMood", bad, err)
		}
	}
}

func TestFormatPlan(t *testing.T) {
	if got := formatPlan(planner.Plan{}); !strings.Contains(got, "Nothing open") {
		t.Fatalf("empty plan=%q", got)
	}

	now := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	yesterday := now.Add(-24 * time.Hour)
	tasks := []model.Task{
		{Base: model.Base{ID: "a"}, Title: "file <taxes>", Priority: model.PriorityP0, EnergyNeed: model.EnergyHigh, EstimateMin: 90, DueDate: &yesterday},
		{Base: model.Base{ID: "b"}, Title: "reply to mail", Priority: model.PriorityP2, EnergyNeed: model.EnergyLow, EstimateMin: 10},
	}
	got := formatPlan(planner.Compute(tasks, model.EnergyMed, now))
	for _, want := range []string{"Main task", "File &lt;taxes&gt;", "overdue", "Fillers", "Reply to mail"} {
		if !strings.Contains(got, want) {
			t.Fatalf("plan text missing %q:\n%s", want, got)
		}
	}
}

func TestFormatImportReport(t *testing.T) {
	report := backup.Report{
		Results: []backup.Result{
			{Collection: "tasks", Restored: 3},
			{Collection: "history", Err: errors.New("disk full")},
		},
		Skipped: []string{"legacy"},
	}
	got := formatImportReport(report)
	for _, want := range []string{"partly restored", "tasks: 3 records", "history: failed, disk full", "legacy"} {
		if !strings.Contains(got, want) {
			t.Fatalf("report missing %q:\n%s", want, got)
		}
	}
}

func TestSummarizeBundle(t *testing.T) {
	b := backup.Bundle{Collections: map[string]json.RawMessage{
		"tasks":   json.RawMessage(`[{"id":"1"},{"id":"2"}]`),
		"history": json.RawMessage(`[]`),
	}}
	if got := summarizeBundle(b); got != "history 0, tasks 2" {
		t.Fatalf("summarizeBundle=%q", got)
	}
	if got := summarizeBundle(backup.Bundle{}); got != "empty backup" {
		t.Fatalf("summarizeBundle=%q", got)
	}
}

func TestSortForDisplay(t *testing.T) {
	d1 := time.Date(2026, 6, 2, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2026, 6, 5, 0, 0, 0, 0, time.UTC)
	tasks := []model.Task{
		{Title: "p3", Priority: model.PriorityP3},
		{Title: "late", Priority: model.PriorityP3, DueDate: &d2},
		{Title: "p0", Priority: model.PriorityP0},
		{Title: "soon", Priority: model.PriorityP3, DueDate: &d1},
	}
	sortForDisplay(tasks)
	var got []string
	for _, task := range tasks {
		got = append(got, task.Title)
	}
	if strings.Join(got, ",") != "soon,late,p0,p3" {
		t.Fatalf("order=%v", got)
	}
}

func TestShortTitleAndStars(t *testing.T) {
	if got := shortTitle("buy light bulbs for the hallway", 10); got != "Buy light…" {
		t.Fatalf("shortTitle=%q", got)
	}
	if got := ratingStars(3); got != "★★★☆☆" {
		t.Fatalf("ratingStars(3)=%q", got)
	}
	if got := ratingStars(9); got != "★★★★★" {
		t.Fatalf("ratingStars(9)=%q", got)
	}
}

func TestInputMatchers(t *testing.T) {
	if !isSkipInput(" Skip ") || !isSkipInput(btnSkip) || isSkipInput("later") {
		t.Fatal("isSkipInput")
	}
	if !isConfirmInput(btnConfirm) || isConfirmInput(btnCancel) {
		t.Fatal("isConfirmInput")
	}
	if !isCancelInput(btnCancel) || !isCancelDialogInput(btnCancelDialog) {
		t.Fatal("cancel matchers")
	}
}

package service

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"

	"backlog-planner/internal/model"
	"backlog-planner/internal/repository"
)

// JournalService provides helpers around the non-task collections:
// history, design cases, glossary terms and emotion logs.
type JournalService struct {
	history  *repository.HistoryCollection
	cases    *repository.DesignCaseCollection
	terms    *repository.TermCollection
	emotions *repository.EmotionLogCollection
}

func NewJournalService(store *repository.Store) *JournalService {
	return &JournalService{
		history:  repository.History(store),
		cases:    repository.DesignCases(store),
		terms:    repository.Terms(store),
		emotions: repository.EmotionLogs(store),
	}
}

// History returns finished main tasks, newest first.
func (s *JournalService) History(ctx context.Context) ([]model.HistoryEntry, error) {
	entries, err := s.history.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	slices.Reverse(entries)
	return entries, nil
}

func (s *JournalService) AddDesignCase(ctx context.Context, c model.DesignCase) (*model.DesignCase, error) {
	if strings.TrimSpace(c.Name) == "" {
		return nil, fmt.Errorf("%w: case name is required", ErrInvalidInput)
	}
	stored, err := s.cases.Insert(ctx, c)
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

// DesignCases lists cases, newest first, keeping only those tagged with style
// when style is not empty.
func (s *JournalService) DesignCases(ctx context.Context, style string) ([]model.DesignCase, error) {
	cases, err := s.cases.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.DesignCase, 0, len(cases))
	for _, c := range cases {
		if style == "" || slices.Contains(c.Styles, style) {
			out = append(out, c)
		}
	}
	slices.Reverse(out)
	return out, nil
}

func (s *JournalService) AddTerm(ctx context.Context, term, definition string) (*model.Term, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, fmt.Errorf("%w: term is required", ErrInvalidInput)
	}
	stored, err := s.terms.Insert(ctx, model.Term{Term: term, Definition: strings.TrimSpace(definition)})
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

// SearchTerms matches query as a case-insensitive substring of the term.
// An empty query returns every term. Results are sorted by term.
func (s *JournalService) SearchTerms(ctx context.Context, query string) ([]model.Term, error) {
	terms, err := s.terms.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	query = strings.ToLower(strings.TrimSpace(query))
	out := make([]model.Term, 0, len(terms))
	for _, t := range terms {
		if query == "" || strings.Contains(strings.ToLower(t.Term), query) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Term) < strings.ToLower(out[j].Term)
	})
	return out, nil
}

// UpdateTerm applies patch to the term with id. A patch may not blank the name.
func (s *JournalService) UpdateTerm(ctx context.Context, id string, patch model.TermPatch) (*model.Term, error) {
	if patch.Term != nil {
		name := strings.TrimSpace(*patch.Term)
		if name == "" {
			return nil, fmt.Errorf("%w: term is required", ErrInvalidInput)
		}
		patch.Term = &name
	}
	if patch.Definition != nil {
		def := strings.TrimSpace(*patch.Definition)
		patch.Definition = &def
	}
	stored, err := s.terms.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

func (s *JournalService) RemoveTerm(ctx context.Context, id string) (bool, error) {
	return s.terms.Remove(ctx, id)
}

func (s *JournalService) LogEmotion(ctx context.Context, temperature int, tags []string, event string) (*model.EmotionLog, error) {
	if temperature < 0 || temperature > 10 {
		return nil, fmt.Errorf("%w: temperature must be between 0 and 10", ErrInvalidInput)
	}
	entry := model.EmotionLog{Temperature: temperature, Tags: tags, Event: strings.TrimSpace(event)}
	stored, err := s.emotions.Insert(ctx, entry)
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

// Emotions lists logs newest first. With tags set, a log matches when it
// carries any of them.
func (s *JournalService) Emotions(ctx context.Context, tags ...string) ([]model.EmotionLog, error) {
	logs, err := s.emotions.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.EmotionLog, 0, len(logs))
	for _, l := range logs {
		if len(tags) == 0 || slices.ContainsFunc(l.Tags, func(t string) bool { return slices.Contains(tags, t) }) {
			out = append(out, l)
		}
	}
	slices.Reverse(out)
	return out, nil
}

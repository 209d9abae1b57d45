package model

import "gorm.io/datatypes"

// HistoryEntry records a finished main task.
type HistoryEntry struct {
	Base
	TaskID string `gorm:"index" json:"taskId,omitempty"`
	Title  string `json:"title"`
	Rating int    `json:"rating"`
}

func (HistoryEntry) TableName() string { return CollectionHistory }

// DesignCase is a logged interior design study.
type DesignCase struct {
	Base
	Name           string                      `json:"name"`
	RoomType       string                      `json:"roomType,omitempty"`
	Styles         datatypes.JSONSlice[string] `json:"styles,omitempty"`
	PrimaryMood    string                      `json:"primaryMood,omitempty"`
	GoldenSentence string                      `json:"goldenSentence,omitempty"`
	Analysis       string                      `json:"analysis,omitempty"`
}

func (DesignCase) TableName() string { return CollectionDesignCases }

// Term is a glossary entry.
type Term struct {
	Base
	Term       string                      `gorm:"index" json:"term"`
	Definition string                      `json:"def"`
	Tags       datatypes.JSONSlice[string] `json:"tags,omitempty"`
}

func (Term) TableName() string { return CollectionTerms }

// TermPatch renames a term or replaces its definition or tags.
type TermPatch struct {
	Term       *string
	Definition *string
	Tags       []string
}

func (p TermPatch) Apply(t *Term) {
	if p.Term != nil {
		t.Term = *p.Term
	}
	if p.Definition != nil {
		t.Definition = *p.Definition
	}
	if p.Tags != nil {
		t.Tags = datatypes.NewJSONSlice(p.Tags)
	}
}

// EmotionLog is a mood check-in. Temperature runs from 0 (calm) to 10.
type EmotionLog struct {
	Base
	Temperature int                         `json:"temp"`
	Tags        datatypes.JSONSlice[string] `json:"tags,omitempty"`
	Event       string                      `json:"event,omitempty"`
}

func (EmotionLog) TableName() string { return CollectionEmotionLogs }

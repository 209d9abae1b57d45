package model

import "time"

// Collection names double as table names and backup bundle keys.
const (
	CollectionTasks       = "tasks"
	CollectionHistory     = "history"
	CollectionDesignCases = "design_logs"
	CollectionTerms       = "design_terms"
	CollectionEmotionLogs = "emotion_logs"
)

// Collections lists every persisted collection in export order.
var Collections = []string{
	CollectionTasks,
	CollectionHistory,
	CollectionDesignCases,
	CollectionTerms,
	CollectionEmotionLogs,
}

// Base carries the fields every stored record shares.
type Base struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}

// Meta exposes the shared fields to the store.
func (b *Base) Meta() *Base { return b }

// Record is implemented by pointers to every stored record type.
type Record interface {
	Meta() *Base
	TableName() string
}

package domain

import (
	"errors"
	"time"
)

// SyncStatus — статус синхронизации манускрипта.
type SyncStatus string

const (
	// SyncStatusSynced — манускрипт синхронизирован.
	SyncStatusSynced SyncStatus = "synced"
)

// PendingTraceID — значение trace_id в ответе.
// Реальный trace id наружу пока не отдаётся.
const PendingTraceID = "TODO-extract-trace-id"

// ErrInvalidManuscript — манускрипт не прошёл проверку.
var ErrInvalidManuscript = errors.New("invalid manuscript")

// Manuscript — содержимое проекта, присланное на синхронизацию.
type Manuscript struct {
	ProjectID string
	Content   string
}

// SyncResult — результат синхронизации.
type SyncResult struct {
	Status  SyncStatus
	TraceID string
}

// SyncEvent — событие о синхронизированном манускрипте.
// Само содержимое в событие не попадает, только его длина.
type SyncEvent struct {
	ProjectID     string    `json:"project_id"`
	ContentLength int       `json:"content_length"`
	SyncedAt      time.Time `json:"synced_at"`
}

// NewSyncEvent создаёт событие для манускрипта.
func NewSyncEvent(m Manuscript, at time.Time) SyncEvent {
	return SyncEvent{
		ProjectID:     m.ProjectID,
		ContentLength: len(m.Content),
		SyncedAt:      at.UTC(),
	}
}

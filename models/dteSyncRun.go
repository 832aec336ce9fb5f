package models

import "time"

// DteSyncRun is the audit row for one sync invocation. The batch summary
// returned to the caller is ephemeral; this row is what the run-history
// endpoints read back.
type DteSyncRun struct {
	ID             uint         `gorm:"primary_key" json:"id"`
	Direction      DteDirection `gorm:"index;size:10;not null" json:"direction"`
	Status         string       `gorm:"size:20;not null" json:"status"`
	TotalDocuments int          `json:"total_documents"`
	RecordsCreated int          `json:"records_created"`
	RecordsUpdated int          `json:"records_updated"`
	ErrorCount     int          `json:"error_count"`
	Message        string       `gorm:"type:text" json:"message"`
	StartedAt      *time.Time   `json:"started_at"`
	FinishedAt     *time.Time   `json:"finished_at"`
	DurationMs     int64        `json:"duration_ms"`
	CreatedAt      time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}

type DteSyncRunError struct {
	ID         uint      `gorm:"primary_key" json:"id"`
	SyncRunId  uint      `gorm:"index;not null" json:"sync_run_id"`
	DocumentId string    `gorm:"size:64" json:"document_id"`
	Message    string    `gorm:"type:text" json:"message"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

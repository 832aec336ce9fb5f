package siisync

import "bitbucket.org/australdata/gestion_backend/models"

type SyncInput struct {
	Direction models.DteDirection
	Rut       string
	Clave     string
	ProjectId *int
}

// SyncSummary is the ephemeral result of one sync invocation. TotalDocuments
// counts every document seen in the envelope, including the ones skipped
// before reaching the reconciler.
type SyncSummary struct {
	Message        string              `json:"message"`
	CreatedCount   int                 `json:"createdCount"`
	UpdatedCount   int                 `json:"updatedCount"`
	Errors         []SyncDocumentError `json:"errors"`
	TotalDocuments int                 `json:"totalDocuments"`
}

type SyncRequest struct {
	Direction string `json:"direction" binding:"required,dtedirection"`
	Rut       string `json:"rut" binding:"required"`
	Clave     string `json:"clave" binding:"required"`
	ProjectId *int   `json:"projectId"`
}

type SyncRunResponse struct {
	ID             uint    `json:"id"`
	Direction      string  `json:"direction"`
	Status         string  `json:"status"`
	TotalDocuments int     `json:"totalDocuments"`
	RecordsCreated int     `json:"recordsCreated"`
	RecordsUpdated int     `json:"recordsUpdated"`
	ErrorCount     int     `json:"errorCount"`
	Message        string  `json:"message,omitempty"`
	StartedAt      *string `json:"startedAt"`
	FinishedAt     *string `json:"finishedAt"`
	DurationMs     int64   `json:"durationMs"`
}

type SyncRunDetailResponse struct {
	SyncRunResponse
	Errors []SyncRunErrorResponse `json:"errors"`
}

type SyncRunErrorResponse struct {
	ID         uint   `json:"id"`
	DocumentId string `json:"documentId"`
	Message    string `json:"message"`
}

type SyncHistoryResponse struct {
	Items []SyncRunResponse `json:"items"`
}

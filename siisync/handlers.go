package siisync

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"bitbucket.org/australdata/gestion_backend/config"
	"bitbucket.org/australdata/gestion_backend/models"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// RegisterValidations installs the request-level validators used by the sync
// handlers. Call once from main before the router starts serving.
func RegisterValidations() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("dtedirection", func(fl validator.FieldLevel) bool {
			return models.DteDirection(fl.Field().String()).Valid()
		})
	}
}

func SyncHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SyncRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}

		engine := NewEngine(config.GetDB(), config.GetRedisLock(), NewScrapeClient(), config.GetLogger())
		summary, err := engine.Sync(c.Request.Context(), SyncInput{
			Direction: models.DteDirection(req.Direction),
			Rut:       req.Rut,
			Clave:     req.Clave,
			ProjectId: req.ProjectId,
		})
		if err != nil {
			status := statusForSyncError(err)
			payload := gin.H{"error": err.Error()}
			var credErr *CredentialValidationError
			if errors.As(err, &credErr) {
				payload["problems"] = credErr.Problems
			}
			c.JSON(status, payload)
			return
		}

		c.JSON(http.StatusOK, summary)
	}
}

func statusForSyncError(err error) int {
	var credErr *CredentialValidationError
	if errors.As(err, &credErr) {
		return http.StatusBadRequest
	}
	var remoteErr *RemoteServiceError
	var formatErr *InvalidResponseFormatError
	if errors.As(err, &remoteErr) || errors.As(err, &formatErr) {
		return http.StatusBadGateway
	}
	if errors.Is(err, ErrSyncInProgress) {
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func SyncHistoryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		db := config.GetDB().WithContext(c.Request.Context())

		var runs []models.DteSyncRun
		if err := db.Order("id DESC").Limit(50).Find(&runs).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		resp := SyncHistoryResponse{Items: make([]SyncRunResponse, 0, len(runs))}
		for i := range runs {
			resp.Items = append(resp.Items, toSyncRunResponse(&runs[i]))
		}
		c.JSON(http.StatusOK, resp)
	}
}

func SyncRunDetailHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid run id"})
			return
		}
		db := config.GetDB().WithContext(c.Request.Context())

		var run models.DteSyncRun
		if err := db.Take(&run, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "sync run not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		var runErrors []models.DteSyncRunError
		if err := db.Where("sync_run_id = ?", run.ID).Order("id").Find(&runErrors).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		detail := SyncRunDetailResponse{SyncRunResponse: toSyncRunResponse(&run)}
		for _, e := range runErrors {
			detail.Errors = append(detail.Errors, SyncRunErrorResponse{
				ID:         e.ID,
				DocumentId: e.DocumentId,
				Message:    e.Message,
			})
		}
		c.JSON(http.StatusOK, detail)
	}
}

func toSyncRunResponse(run *models.DteSyncRun) SyncRunResponse {
	return SyncRunResponse{
		ID:             run.ID,
		Direction:      string(run.Direction),
		Status:         run.Status,
		TotalDocuments: run.TotalDocuments,
		RecordsCreated: run.RecordsCreated,
		RecordsUpdated: run.RecordsUpdated,
		ErrorCount:     run.ErrorCount,
		Message:        run.Message,
		StartedAt:      formatTime(run.StartedAt),
		FinishedAt:     formatTime(run.FinishedAt),
		DurationMs:     run.DurationMs,
	}
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

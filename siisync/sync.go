package siisync

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"bitbucket.org/australdata/gestion_backend/config"
	"bitbucket.org/australdata/gestion_backend/models"
	"github.com/bsm/redislock"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const syncLockTTL = 5 * time.Minute

// Engine runs the whole pipeline: credentials, per-direction lock, scrape,
// parse, collect, reconcile inside one transaction, summary. Stages before
// the document loop abort with no ledger effect; failures inside the loop
// are isolated per document and the transaction still commits.
type Engine struct {
	db     *gorm.DB
	locker *redislock.Client
	client *ScrapeClient
	logger *logrus.Logger

	standardTaxRate decimal.Decimal
	storeFor        func(tx *gorm.DB, direction models.DteDirection) DocumentStore
}

func NewEngine(db *gorm.DB, locker *redislock.Client, client *ScrapeClient, logger *logrus.Logger) *Engine {
	return &Engine{
		db:              db,
		locker:          locker,
		client:          client,
		logger:          logger,
		standardTaxRate: standardTaxRateFromEnv(),
		storeFor:        NewGormDocumentStore,
	}
}

// Standard VAT rate applied when TasaIVA is absent from a document.
func standardTaxRateFromEnv() decimal.Decimal {
	raw := strings.TrimSpace(os.Getenv("SII_STANDARD_TAX_RATE"))
	if raw != "" {
		if d, err := decimal.NewFromString(raw); err == nil {
			return d
		}
	}
	return decimal.RequireFromString("19.00")
}

func (e *Engine) Sync(ctx context.Context, input SyncInput) (*SyncSummary, error) {
	if check := ValidateCredentials(input.Rut, input.Clave); !check.Valid {
		return nil, &CredentialValidationError{Problems: check.Problems}
	}

	// Concurrent syncs for the same direction would race on the natural
	// key, so they are serialized through redis.
	if e.locker != nil {
		lock, err := e.locker.Obtain(ctx, "sii-sync:"+string(input.Direction), syncLockTTL, nil)
		if err != nil {
			if errors.Is(err, redislock.ErrNotObtained) {
				return nil, ErrSyncInProgress
			}
			return nil, err
		}
		defer lock.Release(context.Background())
	}

	run := e.startRun(ctx, input.Direction)

	raw, err := e.client.Fetch(ctx, input.Direction, Credentials{Rut: input.Rut, Clave: input.Clave})
	if err != nil {
		e.finishRunFailed(ctx, run, err)
		return nil, err
	}

	envelope, err := parseMarkup(raw)
	if err != nil {
		e.finishRunFailed(ctx, run, err)
		return nil, err
	}

	docs := CollectDocuments(envelope)

	var summary *SyncSummary
	err = e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		store := e.storeFor(tx, input.Direction)
		summary = SyncDocuments(store, docs, input.Direction, input.ProjectId, e.standardTaxRate, e.logger)
		return nil
	})
	if err != nil {
		e.finishRunFailed(ctx, run, err)
		return nil, err
	}

	summary.Message = fmt.Sprintf("synchronized %d of %d documents",
		summary.CreatedCount+summary.UpdatedCount, summary.TotalDocuments)
	e.finishRun(ctx, run, summary)
	return summary, nil
}

// SyncDocuments maps and reconciles an already-collected batch against the
// store. Mapper skips count toward the total only; reconciler failures are
// recorded in the summary and never stop the loop. Documents are processed in
// source order, which makes the first write win when a natural key repeats
// inside one batch.
func SyncDocuments(store DocumentStore, docs []map[string]interface{}, direction models.DteDirection, projectId *int, standardTaxRate decimal.Decimal, logger *logrus.Logger) *SyncSummary {
	reconciler := NewReconciler(store, logger)

	for _, doc := range docs {
		record, err := MapDocument(doc, direction, projectId, standardTaxRate)
		if err != nil {
			if errors.Is(err, ErrDocumentSkip) {
				if logger != nil {
					logger.WithFields(logrus.Fields{
						"module":    "siisync",
						"direction": direction,
					}).Info(err.Error())
				}
				continue
			}
			continue
		}
		reconciler.Process(record)
	}

	return &SyncSummary{
		CreatedCount:   reconciler.Created,
		UpdatedCount:   reconciler.Updated,
		Errors:         reconciler.Errors,
		TotalDocuments: len(docs),
	}
}

// Audit trail rows live outside the batch transaction so a failed batch still
// leaves a record behind. Best effort: a broken audit write never fails the
// sync itself.

func (e *Engine) startRun(ctx context.Context, direction models.DteDirection) *models.DteSyncRun {
	if e.db == nil {
		return nil
	}
	now := time.Now()
	run := &models.DteSyncRun{
		Direction: direction,
		Status:    models.SyncRunStatusRunning,
		StartedAt: &now,
	}
	if err := e.db.WithContext(ctx).Create(run).Error; err != nil {
		config.LogError(e.logger, "siisync", "startRun", "create sync run", nil, err)
		return nil
	}
	return run
}

func (e *Engine) finishRun(ctx context.Context, run *models.DteSyncRun, summary *SyncSummary) {
	if run == nil {
		return
	}
	status := models.SyncRunStatusSuccess
	if len(summary.Errors) > 0 {
		status = models.SyncRunStatusPartial
	}
	finishedAt := time.Now()
	updates := map[string]interface{}{
		"status":          status,
		"total_documents": summary.TotalDocuments,
		"records_created": summary.CreatedCount,
		"records_updated": summary.UpdatedCount,
		"error_count":     len(summary.Errors),
		"message":         summary.Message,
		"finished_at":     finishedAt,
		"duration_ms":     finishedAt.Sub(*run.StartedAt).Milliseconds(),
	}
	if err := e.db.WithContext(ctx).Model(run).Updates(updates).Error; err != nil {
		config.LogError(e.logger, "siisync", "finishRun", "update sync run", nil, err)
	}
	for _, docErr := range summary.Errors {
		record := models.DteSyncRunError{
			SyncRunId:  run.ID,
			DocumentId: docErr.DocumentId,
			Message:    docErr.Message,
		}
		if err := e.db.WithContext(ctx).Create(&record).Error; err != nil {
			config.LogError(e.logger, "siisync", "finishRun", "create sync run error", nil, err)
		}
	}
}

func (e *Engine) finishRunFailed(ctx context.Context, run *models.DteSyncRun, cause error) {
	if run == nil {
		return
	}
	finishedAt := time.Now()
	updates := map[string]interface{}{
		"status":      models.SyncRunStatusFailed,
		"message":     cause.Error(),
		"finished_at": finishedAt,
		"duration_ms": finishedAt.Sub(*run.StartedAt).Milliseconds(),
	}
	if err := e.db.WithContext(ctx).Model(run).Updates(updates).Error; err != nil {
		config.LogError(e.logger, "siisync", "finishRunFailed", "update sync run", nil, err)
	}
}

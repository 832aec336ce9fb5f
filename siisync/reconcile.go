package siisync

import (
	"errors"

	"bitbucket.org/australdata/gestion_backend/config"
	"bitbucket.org/australdata/gestion_backend/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReconcileAction string

const (
	ReconcileActionCreated ReconcileAction = "created"
	ReconcileActionUpdated ReconcileAction = "updated"
)

// DocumentStore is the transaction-scoped persistence surface the reconciler
// consumes. A store is bound to one direction's ledger.
type DocumentStore interface {
	// FindByKey returns the existing row for the natural key, or nil when
	// no such row exists.
	FindByKey(documentType string, documentNumber int64) (*models.TaxDocument, error)
	Insert(doc *models.TaxDocument) error
	// Update full-replaces the mapped fields of existing, keeping the row's
	// identity.
	Update(existing *models.TaxDocument, mapped *models.TaxDocument) error
}

type gormDocumentStore struct {
	tx        *gorm.DB
	direction models.DteDirection
}

func NewGormDocumentStore(tx *gorm.DB, direction models.DteDirection) DocumentStore {
	return &gormDocumentStore{tx: tx, direction: direction}
}

func (s *gormDocumentStore) FindByKey(documentType string, documentNumber int64) (*models.TaxDocument, error) {
	var doc models.TaxDocument
	err := s.tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("direction = ? AND document_type = ? AND document_number = ?",
			s.direction, documentType, documentNumber).
		Take(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &doc, nil
}

func (s *gormDocumentStore) Insert(doc *models.TaxDocument) error {
	return s.tx.Create(doc).Error
}

func (s *gormDocumentStore) Update(existing *models.TaxDocument, mapped *models.TaxDocument) error {
	// Map form so zero values (amount 0, nil project) overwrite too: the
	// lifecycle is full replace, not merge.
	updates := map[string]interface{}{
		"issue_date":          mapped.IssueDate,
		"counterparty_tax_id": mapped.CounterpartyTaxId,
		"counterparty_name":   mapped.CounterpartyName,
		"issuer_tax_id":       mapped.IssuerTaxId,
		"issuer_name":         mapped.IssuerName,
		"net_amount":          mapped.NetAmount,
		"exempt_amount":       mapped.ExemptAmount,
		"tax_amount":          mapped.TaxAmount,
		"tax_rate":            mapped.TaxRate,
		"total_amount":        mapped.TotalAmount,
		"status":              mapped.Status,
		"project_id":          mapped.ProjectId,
		"source_filename":     mapped.SourceFilename,
	}
	return s.tx.Model(existing).Updates(updates).Error
}

// ReconcileDocument upserts one canonical record by its natural key.
func ReconcileDocument(store DocumentStore, doc *models.TaxDocument) (ReconcileAction, error) {
	existing, err := store.FindByKey(doc.DocumentType, doc.DocumentNumber)
	if err != nil {
		return "", err
	}
	if existing != nil {
		if err := store.Update(existing, doc); err != nil {
			return "", err
		}
		return ReconcileActionUpdated, nil
	}
	if err := store.Insert(doc); err != nil {
		return "", err
	}
	return ReconcileActionCreated, nil
}

// Reconciler accumulates per-batch counters and isolated failures. One bad
// document must never stop the rest of the batch, so Process records the
// error and moves on instead of returning it.
type Reconciler struct {
	store  DocumentStore
	logger *logrus.Logger

	Created int
	Updated int
	Failed  int
	Errors  []SyncDocumentError
}

func NewReconciler(store DocumentStore, logger *logrus.Logger) *Reconciler {
	return &Reconciler{store: store, logger: logger}
}

func (r *Reconciler) Process(doc *models.TaxDocument) {
	action, err := ReconcileDocument(r.store, doc)
	if err != nil {
		r.Failed++
		r.Errors = append(r.Errors, SyncDocumentError{
			DocumentId: doc.DocumentKey(),
			Message:    err.Error(),
		})
		if r.logger != nil {
			config.LogError(r.logger, "siisync", "Process", "reconcile document "+doc.DocumentKey(), nil, err)
		}
		return
	}
	if action == ReconcileActionCreated {
		r.Created++
	} else {
		r.Updated++
	}
}

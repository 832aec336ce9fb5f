// Package banksync reconciles parsed bank-statement movements against the
// ledger. It is the reduced-scope sibling of siisync: same idempotent upsert
// keyed by a natural key, same per-row fault isolation, no remote fetch (the
// statement rows arrive already parsed from the upload surface).
package banksync

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/australdata/gestion_backend/config"
	"bitbucket.org/australdata/gestion_backend/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const movementDateLayout = "2006-01-02"

type MovementInput struct {
	MovementDate   string          `json:"movementDate" binding:"required"`
	DocumentNumber string          `json:"documentNumber" binding:"required"`
	Description    string          `json:"description"`
	Branch         *string         `json:"branch"`
	Deposit        decimal.Decimal `json:"deposit"`
	Withdrawal     decimal.Decimal `json:"withdrawal"`
}

type MovementError struct {
	MovementId string `json:"movementId"`
	Message    string `json:"message"`
}

type Summary struct {
	Message        string          `json:"message"`
	CreatedCount   int             `json:"createdCount"`
	UpdatedCount   int             `json:"updatedCount"`
	Errors         []MovementError `json:"errors"`
	TotalMovements int             `json:"totalMovements"`
}

// MovementStore is the transaction-scoped persistence surface, bound to one
// bank account.
type MovementStore interface {
	FindByKey(date time.Time, documentNumber string) (*models.BankMovement, error)
	Insert(movement *models.BankMovement) error
	Update(existing *models.BankMovement, mapped *models.BankMovement) error
}

type gormMovementStore struct {
	tx        *gorm.DB
	accountId int
}

func NewGormMovementStore(tx *gorm.DB, accountId int) MovementStore {
	return &gormMovementStore{tx: tx, accountId: accountId}
}

func (s *gormMovementStore) FindByKey(date time.Time, documentNumber string) (*models.BankMovement, error) {
	var movement models.BankMovement
	err := s.tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("bank_account_id = ? AND movement_date = ? AND document_number = ?",
			s.accountId, date, documentNumber).
		Take(&movement).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &movement, nil
}

func (s *gormMovementStore) Insert(movement *models.BankMovement) error {
	return s.tx.Create(movement).Error
}

func (s *gormMovementStore) Update(existing *models.BankMovement, mapped *models.BankMovement) error {
	updates := map[string]interface{}{
		"description": mapped.Description,
		"branch":      mapped.Branch,
		"deposit":     mapped.Deposit,
		"withdrawal":  mapped.Withdrawal,
	}
	return s.tx.Model(existing).Updates(updates).Error
}

// Reconcile upserts the rows one at a time in input order. A row with an
// unparseable date is skipped (counted in the total only); a store failure is
// recorded and the loop continues.
func Reconcile(store MovementStore, accountId int, inputs []MovementInput, logger *logrus.Logger) *Summary {
	summary := &Summary{TotalMovements: len(inputs)}

	for _, input := range inputs {
		date, err := time.Parse(movementDateLayout, input.MovementDate)
		if err != nil {
			if logger != nil {
				logger.WithFields(logrus.Fields{
					"module":         "banksync",
					"documentNumber": input.DocumentNumber,
				}).Info("movement skipped: bad date " + input.MovementDate)
			}
			continue
		}

		mapped := &models.BankMovement{
			BankAccountId:  accountId,
			MovementDate:   date,
			DocumentNumber: input.DocumentNumber,
			Description:    input.Description,
			Branch:         input.Branch,
			Deposit:        input.Deposit,
			Withdrawal:     input.Withdrawal,
		}

		created, err := reconcileMovement(store, mapped)
		if err != nil {
			summary.Errors = append(summary.Errors, MovementError{
				MovementId: mapped.MovementKey(),
				Message:    err.Error(),
			})
			if logger != nil {
				config.LogError(logger, "banksync", "Reconcile", "reconcile movement "+mapped.MovementKey(), nil, err)
			}
			continue
		}
		if created {
			summary.CreatedCount++
		} else {
			summary.UpdatedCount++
		}
	}
	return summary
}

func reconcileMovement(store MovementStore, mapped *models.BankMovement) (bool, error) {
	existing, err := store.FindByKey(mapped.MovementDate, mapped.DocumentNumber)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, store.Update(existing, mapped)
	}
	return true, store.Insert(mapped)
}

// SyncMovements runs the reconciliation in one transaction. Isolated row
// failures survive the commit; only an error escaping the loop rolls back.
func SyncMovements(ctx context.Context, db *gorm.DB, accountId int, inputs []MovementInput, logger *logrus.Logger) (*Summary, error) {
	var summary *Summary
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		store := NewGormMovementStore(tx, accountId)
		summary = Reconcile(store, accountId, inputs, logger)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

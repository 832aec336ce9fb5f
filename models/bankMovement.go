package models

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// BankMovement is one reconciled bank-statement line. The natural key is
// (bank_account_id, movement_date, document_number); re-importing an
// overlapping statement updates rows instead of duplicating them.
type BankMovement struct {
	ID             uint      `gorm:"primary_key" json:"id"`
	BankAccountId  int       `gorm:"uniqueIndex:idx_bank_movement_key,priority:1;not null" json:"bank_account_id"`
	MovementDate   time.Time `gorm:"uniqueIndex:idx_bank_movement_key,priority:2;not null" json:"movement_date"`
	DocumentNumber string    `gorm:"uniqueIndex:idx_bank_movement_key,priority:3;size:30;not null" json:"document_number"`

	Description string          `gorm:"size:255" json:"description"`
	Branch      *string         `gorm:"size:100" json:"branch"`
	Deposit     decimal.Decimal `gorm:"type:decimal(18,2);default:0" json:"deposit"`
	Withdrawal  decimal.Decimal `gorm:"type:decimal(18,2);default:0" json:"withdrawal"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (m *BankMovement) MovementKey() string {
	return strconv.Itoa(m.BankAccountId) + "-" + m.MovementDate.Format("2006-01-02") + "-" + m.DocumentNumber
}

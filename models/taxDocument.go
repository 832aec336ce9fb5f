package models

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// TaxDocument is the canonical ledger record for one synchronized DTE.
// The pair (document_type, document_number) is unique within a direction;
// re-running a sync with overlapping documents updates rows in place.
//
// The signed total column (total_amount negated for outgoing documents) is
// generated by the database and deliberately has no field here: the mapper
// must never write it.
type TaxDocument struct {
	ID             uint         `gorm:"primary_key" json:"id"`
	Direction      DteDirection `gorm:"uniqueIndex:idx_tax_document_key,priority:1;size:10;not null" json:"direction"`
	DocumentType   string       `gorm:"uniqueIndex:idx_tax_document_key,priority:2;size:10;not null" json:"document_type"`
	DocumentNumber int64        `gorm:"uniqueIndex:idx_tax_document_key,priority:3;not null" json:"document_number"`

	IssueDate *time.Time `json:"issue_date"`

	CounterpartyTaxId *string `gorm:"size:20" json:"counterparty_tax_id"`
	CounterpartyName  *string `gorm:"size:255" json:"counterparty_name"`
	IssuerTaxId       *string `gorm:"size:20" json:"issuer_tax_id"`
	IssuerName        *string `gorm:"size:255" json:"issuer_name"`

	NetAmount    decimal.Decimal `gorm:"type:decimal(18,2);default:0" json:"net_amount"`
	ExemptAmount decimal.Decimal `gorm:"type:decimal(18,2);default:0" json:"exempt_amount"`
	TaxAmount    decimal.Decimal `gorm:"type:decimal(18,2);default:0" json:"tax_amount"`
	TaxRate      decimal.Decimal `gorm:"type:decimal(5,2);default:0" json:"tax_rate"`
	TotalAmount  decimal.Decimal `gorm:"type:decimal(18,2);default:0" json:"total_amount"`

	Status TaxDocumentStatus `gorm:"size:20;not null" json:"status"`

	// ProjectId is caller supplied, never derived from the document.
	ProjectId *int `gorm:"index" json:"project_id"`

	// SourceFilename is synthesized from type + number + direction for
	// traceability; it is never parsed out of the scraped payload.
	SourceFilename string `gorm:"size:100" json:"source_filename"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// DocumentKey identifies a document for summaries and error reporting.
func (d *TaxDocument) DocumentKey() string {
	return d.DocumentType + "-" + strconv.FormatInt(d.DocumentNumber, 10)
}

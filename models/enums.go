package models

import (
	"database/sql/driver"
	"errors"
	"fmt"
)

// DteDirection tells which flow a tax document belongs to: incoming documents
// are received from suppliers (recibidos), outgoing documents were issued by
// the local entity (emitidos). The direction selects the remote scraper
// endpoint and decides which party of the document is the counterparty.
type DteDirection string

const (
	DteDirectionIncoming DteDirection = "incoming"
	DteDirectionOutgoing DteDirection = "outgoing"
)

func (d DteDirection) Valid() bool {
	return d == DteDirectionIncoming || d == DteDirectionOutgoing
}

func (d *DteDirection) Scan(value interface{}) error {
	switch v := value.(type) {
	case string:
		*d = DteDirection(v)
	case []byte:
		*d = DteDirection(v)
	default:
		return fmt.Errorf("cannot scan %T into DteDirection", value)
	}
	if !d.Valid() {
		return errors.New("invalid dte direction")
	}
	return nil
}

func (d DteDirection) Value() (driver.Value, error) {
	if !d.Valid() {
		return nil, errors.New("invalid dte direction")
	}
	return string(d), nil
}

type TaxDocumentStatus string

const (
	// TaxDocumentStatusAccepted is the default for every synchronized
	// document; rejection detection is not implemented.
	TaxDocumentStatusAccepted TaxDocumentStatus = "accepted"
)

const (
	SyncRunStatusQueued  = "queued"
	SyncRunStatusRunning = "running"
	SyncRunStatusSuccess = "success"
	SyncRunStatusFailed  = "failed"
	SyncRunStatusPartial = "partial"
)

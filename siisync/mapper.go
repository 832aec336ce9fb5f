package siisync

import (
	"fmt"
	"time"

	"bitbucket.org/australdata/gestion_backend/models"
	"github.com/shopspring/decimal"
)

const issueDateLayout = "2006-01-02"

// MapDocument maps one document node into a canonical TaxDocument. A document
// without TipoDTE or Folio never reaches the reconciler: the returned error
// wraps ErrDocumentSkip and the caller only counts it in the envelope total.
//
// The record deliberately carries no signed-total value; that column is
// generated by the database and writing it from here would conflict with the
// storage layer's own computation.
func MapDocument(doc map[string]interface{}, direction models.DteDirection, projectId *int, standardTaxRate decimal.Decimal) (*models.TaxDocument, error) {
	header := childMap(childMap(doc, documentWrapperKey), documentHeaderKey)
	idDoc := childMap(header, "IdDoc")

	docType := ExtractValue(idDoc["TipoDTE"])
	docNumber := ExtractInt(idDoc["Folio"])
	if docType == nil || *docType == "" {
		return nil, fmt.Errorf("%w: missing TipoDTE", ErrDocumentSkip)
	}
	if docNumber == nil {
		return nil, fmt.Errorf("%w: missing Folio", ErrDocumentSkip)
	}

	record := &models.TaxDocument{
		Direction:      direction,
		DocumentType:   *docType,
		DocumentNumber: *docNumber,
		IssueDate:      parseIssueDate(ExtractValue(idDoc["FchEmis"])),
		Status:         models.TaxDocumentStatusAccepted,
		ProjectId:      projectId,
		SourceFilename: sourceFilename(*docType, *docNumber, direction),
	}

	// For incoming documents the remote party is the issuer (Emisor, the
	// supplier) and the counterparty is the local buyer; for outgoing ones
	// the local entity issued the document and the remote party is the
	// receiving counterparty. Both roles map off the same header blocks.
	emisor := childMap(header, "Emisor")
	receptor := childMap(header, "Receptor")
	record.IssuerTaxId = ExtractValue(emisor["RUTEmisor"])
	record.IssuerName = ExtractValue(emisor["RznSoc"])
	record.CounterpartyTaxId = ExtractValue(receptor["RUTRecep"])
	record.CounterpartyName = ExtractValue(receptor["RznSocRecep"])

	totals := childMap(header, "Totales")
	record.NetAmount = numberOrZero(ExtractNumber(totals["MntNeto"]))
	record.ExemptAmount = numberOrZero(ExtractNumber(totals["MntExe"]))
	record.TaxAmount = numberOrZero(ExtractNumber(totals["IVA"]))
	record.TotalAmount = numberOrZero(ExtractNumber(totals["MntTotal"]))
	if rate := ExtractNumber(totals["TasaIVA"]); rate != nil {
		record.TaxRate = *rate
	} else {
		record.TaxRate = standardTaxRate
	}

	return record, nil
}

func sourceFilename(docType string, docNumber int64, direction models.DteDirection) string {
	suffix := "recibido"
	if direction == models.DteDirectionOutgoing {
		suffix = "emitido"
	}
	return fmt.Sprintf("DTE_%s_%d_%s.xml", docType, docNumber, suffix)
}

func parseIssueDate(value *string) *time.Time {
	if value == nil || *value == "" {
		return nil
	}
	t, err := time.Parse(issueDateLayout, *value)
	if err != nil {
		return nil
	}
	return &t
}

func numberOrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}

func childMap(node map[string]interface{}, key string) map[string]interface{} {
	if node == nil {
		return nil
	}
	child, _ := node[key].(map[string]interface{})
	return child
}

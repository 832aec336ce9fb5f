package siisync

import (
	"errors"
	"testing"

	"bitbucket.org/australdata/gestion_backend/models"
	"github.com/shopspring/decimal"
)

var testStandardRate = decimal.RequireFromString("19.00")

func fullDocNode() map[string]interface{} {
	return map[string]interface{}{
		"Documento": map[string]interface{}{
			"Encabezado": map[string]interface{}{
				"IdDoc": map[string]interface{}{
					"TipoDTE": "33",
					"Folio":   "1234",
					"FchEmis": "2025-06-12",
				},
				"Emisor": map[string]interface{}{
					"RUTEmisor": "76543210-8",
					"RznSoc":    "Proveedor SpA",
				},
				"Receptor": map[string]interface{}{
					"RUTRecep":    "96874030-K",
					"RznSocRecep": "Cliente Ltda",
				},
				"Totales": map[string]interface{}{
					"MntNeto":  "1000",
					"MntExe":   "0",
					"TasaIVA":  "19",
					"IVA":      "190",
					"MntTotal": "1190",
				},
			},
		},
	}
}

func TestMapDocument_FullDocument(t *testing.T) {
	projectId := 7
	record, err := MapDocument(fullDocNode(), models.DteDirectionIncoming, &projectId, testStandardRate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if record.DocumentType != "33" || record.DocumentNumber != 1234 {
		t.Fatalf("bad natural key: %s-%d", record.DocumentType, record.DocumentNumber)
	}
	if record.Direction != models.DteDirectionIncoming {
		t.Fatalf("bad direction: %s", record.Direction)
	}
	if record.IssueDate == nil || record.IssueDate.Format("2006-01-02") != "2025-06-12" {
		t.Fatalf("bad issue date: %v", record.IssueDate)
	}
	if record.IssuerTaxId == nil || *record.IssuerTaxId != "76543210-8" {
		t.Fatalf("bad issuer tax id: %v", record.IssuerTaxId)
	}
	if record.IssuerName == nil || *record.IssuerName != "Proveedor SpA" {
		t.Fatalf("bad issuer name: %v", record.IssuerName)
	}
	if record.CounterpartyTaxId == nil || *record.CounterpartyTaxId != "96874030-K" {
		t.Fatalf("bad counterparty tax id: %v", record.CounterpartyTaxId)
	}
	if !record.NetAmount.Equal(decimal.RequireFromString("1000")) ||
		!record.TaxAmount.Equal(decimal.RequireFromString("190")) ||
		!record.TotalAmount.Equal(decimal.RequireFromString("1190")) {
		t.Fatalf("bad totals: net=%s tax=%s total=%s", record.NetAmount, record.TaxAmount, record.TotalAmount)
	}
	if !record.TaxRate.Equal(decimal.RequireFromString("19")) {
		t.Fatalf("bad tax rate: %s", record.TaxRate)
	}
	if record.Status != models.TaxDocumentStatusAccepted {
		t.Fatalf("bad status: %s", record.Status)
	}
	if record.ProjectId == nil || *record.ProjectId != 7 {
		t.Fatalf("bad project id: %v", record.ProjectId)
	}
	if record.SourceFilename != "DTE_33_1234_recibido.xml" {
		t.Fatalf("bad source filename: %s", record.SourceFilename)
	}
}

func TestMapDocument_OutgoingFilenameSuffix(t *testing.T) {
	record, err := MapDocument(fullDocNode(), models.DteDirectionOutgoing, nil, testStandardRate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.SourceFilename != "DTE_33_1234_emitido.xml" {
		t.Fatalf("bad source filename: %s", record.SourceFilename)
	}
}

func TestMapDocument_DefaultsForMissingTotals(t *testing.T) {
	record, err := MapDocument(docNode("33", "1"), models.DteDirectionIncoming, nil, testStandardRate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !record.NetAmount.IsZero() || !record.ExemptAmount.IsZero() ||
		!record.TaxAmount.IsZero() || !record.TotalAmount.IsZero() {
		t.Fatal("missing monetary fields must default to zero")
	}
	if !record.TaxRate.Equal(testStandardRate) {
		t.Fatalf("missing TasaIVA must default to the standard rate, got %s", record.TaxRate)
	}
	if record.IssueDate != nil {
		t.Fatalf("missing FchEmis must map to nil, got %v", record.IssueDate)
	}
	if record.CounterpartyTaxId != nil || record.IssuerTaxId != nil {
		t.Fatal("missing parties must map to nil")
	}
}

func TestMapDocument_SkipsWithoutIdentifyingFields(t *testing.T) {
	missingFolio := map[string]interface{}{
		"Documento": map[string]interface{}{
			"Encabezado": map[string]interface{}{
				"IdDoc": map[string]interface{}{"TipoDTE": "33"},
			},
		},
	}
	if _, err := MapDocument(missingFolio, models.DteDirectionIncoming, nil, testStandardRate); !errors.Is(err, ErrDocumentSkip) {
		t.Fatalf("expected skip for missing Folio, got %v", err)
	}

	missingTipo := map[string]interface{}{
		"Documento": map[string]interface{}{
			"Encabezado": map[string]interface{}{
				"IdDoc": map[string]interface{}{"Folio": "1"},
			},
		},
	}
	if _, err := MapDocument(missingTipo, models.DteDirectionIncoming, nil, testStandardRate); !errors.Is(err, ErrDocumentSkip) {
		t.Fatalf("expected skip for missing TipoDTE, got %v", err)
	}
}

func TestMapDocument_WrappedValueNodes(t *testing.T) {
	doc := map[string]interface{}{
		"Documento": map[string]interface{}{
			"Encabezado": map[string]interface{}{
				"IdDoc": map[string]interface{}{
					"TipoDTE": map[string]interface{}{"#text": " 33 "},
					"Folio":   map[string]interface{}{"#text": "77"},
				},
			},
		},
	}
	record, err := MapDocument(doc, models.DteDirectionIncoming, nil, testStandardRate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.DocumentType != "33" || record.DocumentNumber != 77 {
		t.Fatalf("bad natural key from wrapped nodes: %s-%d", record.DocumentType, record.DocumentNumber)
	}
}

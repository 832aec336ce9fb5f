package siisync

import (
	"context"
	"errors"
	"testing"

	"bitbucket.org/australdata/gestion_backend/models"
)

func batchOf(folios ...string) []map[string]interface{} {
	docs := make([]map[string]interface{}, 0, len(folios))
	for _, folio := range folios {
		docs = append(docs, docNode("33", folio))
	}
	return docs
}

func TestSyncDocuments_IdempotentAcrossRuns(t *testing.T) {
	store := newFakeDocumentStore()
	docs := batchOf("1", "2", "3")

	first := SyncDocuments(store, docs, models.DteDirectionIncoming, nil, testStandardRate, nil)
	if first.CreatedCount != 3 || first.UpdatedCount != 0 {
		t.Fatalf("first run: expected 3 created / 0 updated, got %d / %d", first.CreatedCount, first.UpdatedCount)
	}

	second := SyncDocuments(store, docs, models.DteDirectionIncoming, nil, testStandardRate, nil)
	if second.CreatedCount != 0 || second.UpdatedCount != 3 {
		t.Fatalf("second run: expected 0 created / 3 updated, got %d / %d", second.CreatedCount, second.UpdatedCount)
	}
	if len(store.rows) != 3 {
		t.Fatalf("expected at most one row per natural key, got %d rows", len(store.rows))
	}
}

func TestSyncDocuments_DuplicateKeyWithinOneBatch(t *testing.T) {
	store := newFakeDocumentStore()
	docs := batchOf("1", "1")

	summary := SyncDocuments(store, docs, models.DteDirectionIncoming, nil, testStandardRate, nil)
	// Source order: the first occurrence creates, the second reconciles
	// against it as an update.
	if summary.CreatedCount != 1 || summary.UpdatedCount != 1 {
		t.Fatalf("expected 1 created / 1 updated, got %d / %d", summary.CreatedCount, summary.UpdatedCount)
	}
	if len(store.rows) != 1 {
		t.Fatalf("expected a single row, got %d", len(store.rows))
	}
}

func TestSyncDocuments_SkippedDocumentCountsInTotalOnly(t *testing.T) {
	store := newFakeDocumentStore()
	noFolio := map[string]interface{}{
		"Documento": map[string]interface{}{
			"Encabezado": map[string]interface{}{
				"IdDoc": map[string]interface{}{"TipoDTE": "33"},
			},
		},
	}
	docs := append(batchOf("1", "2"), noFolio)

	summary := SyncDocuments(store, docs, models.DteDirectionIncoming, nil, testStandardRate, nil)
	if summary.TotalDocuments != 3 {
		t.Fatalf("expected 3 documents seen, got %d", summary.TotalDocuments)
	}
	if summary.CreatedCount != 2 || summary.UpdatedCount != 0 || len(summary.Errors) != 0 {
		t.Fatalf("skip must not count as created/updated/failed: %+v", summary)
	}
}

func TestSyncDocuments_FaultIsolation(t *testing.T) {
	store := newFakeDocumentStore()
	store.failKeys["33-3"] = true
	docs := batchOf("1", "2", "3", "4", "5")

	summary := SyncDocuments(store, docs, models.DteDirectionIncoming, nil, testStandardRate, nil)
	if summary.CreatedCount != 4 {
		t.Fatalf("expected 4 created, got %d", summary.CreatedCount)
	}
	if len(summary.Errors) != 1 || summary.Errors[0].DocumentId != "33-3" {
		t.Fatalf("expected one isolated error for 33-3, got %+v", summary.Errors)
	}
	if summary.TotalDocuments != 5 {
		t.Fatalf("expected 5 documents seen, got %d", summary.TotalDocuments)
	}
}

func TestEngineSync_RejectsCredentialsBeforeAnyOtherStage(t *testing.T) {
	// No db, no lock client, no scrape client: bad credentials must abort
	// before any of them is touched.
	engine := NewEngine(nil, nil, nil, nil)

	_, err := engine.Sync(context.Background(), SyncInput{
		Direction: models.DteDirectionIncoming,
		Rut:       "123",
		Clave:     "abc",
	})

	var credErr *CredentialValidationError
	if !errors.As(err, &credErr) {
		t.Fatalf("expected CredentialValidationError, got %v", err)
	}
	if len(credErr.Problems) != 2 {
		t.Fatalf("expected 2 problems, got %v", credErr.Problems)
	}
}

func TestSyncDocuments_AppliesProjectAssociation(t *testing.T) {
	store := newFakeDocumentStore()
	projectId := 42

	SyncDocuments(store, batchOf("1"), models.DteDirectionOutgoing, &projectId, testStandardRate, nil)

	row := store.rows["33-1"]
	if row == nil {
		t.Fatal("expected row for 33-1")
	}
	if row.ProjectId == nil || *row.ProjectId != 42 {
		t.Fatalf("caller-supplied project id must be carried through, got %v", row.ProjectId)
	}
	if row.Direction != models.DteDirectionOutgoing {
		t.Fatalf("bad direction: %s", row.Direction)
	}
}

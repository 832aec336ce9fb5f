package siisync

import (
	"errors"
	"fmt"
	"strings"
)

// ErrDocumentSkip marks a document that is missing one of its identifying
// fields. Skips are not failures: the document is counted in the envelope
// total and nowhere else.
var ErrDocumentSkip = errors.New("document skipped")

// ErrSyncInProgress is returned when another sync for the same direction
// holds the redis lock.
var ErrSyncInProgress = errors.New("a sync for this direction is already running")

// CredentialValidationError aborts the batch before any network call.
type CredentialValidationError struct {
	Problems []string
}

func (e *CredentialValidationError) Error() string {
	return "invalid credentials: " + strings.Join(e.Problems, "; ")
}

// RemoteServiceError is any non-success answer from the scraping service,
// including transport failures (StatusCode 0).
type RemoteServiceError struct {
	StatusCode int
	Reason     string
}

func (e *RemoteServiceError) Error() string {
	return fmt.Sprintf("scraper error %d: %s", e.StatusCode, e.Reason)
}

// InvalidResponseFormatError means the scraper answered 2xx but the body does
// not look like markup. Carrying a preview keeps scraper misbehavior
// distinguishable from genuine parse errors.
type InvalidResponseFormatError struct {
	Preview string
}

func (e *InvalidResponseFormatError) Error() string {
	return "scraper response is not markup: " + e.Preview
}

// MarkupParseError is a body that passed the shape check but failed the
// structural parse. Batch aborting.
type MarkupParseError struct {
	Cause error
}

func (e *MarkupParseError) Error() string {
	return "cannot parse scraper response: " + e.Cause.Error()
}

func (e *MarkupParseError) Unwrap() error {
	return e.Cause
}

// SyncDocumentError is one isolated per-document persistence failure inside
// a batch summary.
type SyncDocumentError struct {
	DocumentId string `json:"documentId"`
	Message    string `json:"message"`
}

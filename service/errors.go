package service

import "errors"

var (
	// ErrAlreadyProcessed is returned when a document name is already in the
	// workspace; re-uploads under the same name are not overwritten.
	ErrAlreadyProcessed = errors.New("document already processed")

	// ErrDeleted is returned for names the user deleted this session; a
	// deleted name is never reprocessed until the workspace resets.
	ErrDeleted = errors.New("document was deleted this session")

	// ErrIngestInProgress is returned when another ingestion for the same
	// name holds the reservation; the first writer wins.
	ErrIngestInProgress = errors.New("ingestion already in progress")

	// ErrNotFound is returned for operations on unknown document names.
	ErrNotFound = errors.New("document not found")

	// ErrDeadlinesAttached is returned when deadline extraction is triggered
	// for a record that already carries deadlines.
	ErrDeadlinesAttached = errors.New("deadlines already attached")

	// ErrWorkspaceFull is returned when the configured document cap is hit.
	ErrWorkspaceFull = errors.New("workspace document limit reached")

	// ErrMissingCredentials indicates calendar sync is not configured.
	ErrMissingCredentials = errors.New("missing calendar credentials")

	// ErrInvalidFile indicates the uploaded bytes are not a readable document.
	ErrInvalidFile = errors.New("invalid file")
)

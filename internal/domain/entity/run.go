package entity

import (
	"time"

	"github.com/google/uuid"
)

type RunStatus string

const (
	RunStatusCompleted           RunStatus = "COMPLETED"
	RunStatusCompletedWithErrors RunStatus = "COMPLETED_WITH_ERRORS"
	RunStatusAllFailed           RunStatus = "ALL_FAILED"
	RunStatusCancelled           RunStatus = "CANCELLED"
)

type ErrorKind string

const (
	ErrorKindFileOpen  ErrorKind = "file_open"
	ErrorKindDecode    ErrorKind = "decode"
	ErrorKindResize    ErrorKind = "resize"
	ErrorKindWrite     ErrorKind = "write"
	ErrorKindCancelled ErrorKind = "cancelled"
)

// NoScan marks an ItemError that concerns a whole capture file rather
// than a single scan.
const NoScan = -1

// ItemError records one skipped or failed item. Per-file and per-scan
// failures are collected as data, never raised out of the pipeline.
type ItemError struct {
	File      string
	ScanIndex int
	Kind      ErrorKind
	Message   string
}

// RunReport is the result of one batch run: the accumulated metadata
// table, every per-item error, and enough counters for a completion
// summary.
type RunReport struct {
	RunID          uuid.UUID
	Status         RunStatus
	Table          *MetadataTable
	Errors         []ItemError
	FilesTotal     int
	FilesOpened    int
	ScansAttempted int
	ScansSucceeded int
	StartedAt      time.Time
	FinishedAt     time.Time
}

func NewRunReport(filesTotal int) *RunReport {
	return &RunReport{
		RunID:      uuid.New(),
		Table:      NewMetadataTable(),
		FilesTotal: filesTotal,
		StartedAt:  time.Now().UTC(),
	}
}

func (r *RunReport) RecordError(file string, scanIndex int, kind ErrorKind, msg string) {
	r.Errors = append(r.Errors, ItemError{
		File:      file,
		ScanIndex: scanIndex,
		Kind:      kind,
		Message:   msg,
	})
}

// Finish stamps the end time and resolves the terminal status. The batch
// counts as ALL_FAILED only when no input file could be opened at all;
// otherwise partial progress wins and errors demote the run to
// COMPLETED_WITH_ERRORS.
func (r *RunReport) Finish(cancelled bool) {
	r.FinishedAt = time.Now().UTC()

	switch {
	case cancelled:
		r.Status = RunStatusCancelled
	case r.FilesTotal > 0 && r.FilesOpened == 0 && len(r.Errors) > 0:
		r.Status = RunStatusAllFailed
	case len(r.Errors) > 0:
		r.Status = RunStatusCompletedWithErrors
	default:
		r.Status = RunStatusCompleted
	}
}

func (r *RunReport) Elapsed() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

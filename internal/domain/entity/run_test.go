package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunReportStatusResolution(t *testing.T) {
	t.Run("clean run completes", func(t *testing.T) {
		r := NewRunReport(2)
		r.FilesOpened = 2
		r.Finish(false)
		assert.Equal(t, RunStatusCompleted, r.Status)
	})

	t.Run("errors demote to completed with errors", func(t *testing.T) {
		r := NewRunReport(2)
		r.FilesOpened = 1
		r.RecordError("b", NoScan, ErrorKindFileOpen, "corrupt")
		r.Finish(false)
		assert.Equal(t, RunStatusCompletedWithErrors, r.Status)
	})

	t.Run("no file opened means all failed", func(t *testing.T) {
		r := NewRunReport(2)
		r.RecordError("a", NoScan, ErrorKindFileOpen, "corrupt")
		r.RecordError("b", NoScan, ErrorKindFileOpen, "corrupt")
		r.Finish(false)
		assert.Equal(t, RunStatusAllFailed, r.Status)
	})

	t.Run("empty batch completes", func(t *testing.T) {
		r := NewRunReport(0)
		r.Finish(false)
		assert.Equal(t, RunStatusCompleted, r.Status)
	})

	t.Run("cancellation wins over errors", func(t *testing.T) {
		r := NewRunReport(2)
		r.FilesOpened = 1
		r.RecordError("a", 3, ErrorKindDecode, "bad payload")
		r.Finish(true)
		assert.Equal(t, RunStatusCancelled, r.Status)
	})
}

func TestRunReportRecordError(t *testing.T) {
	r := NewRunReport(1)
	r.RecordError("scanA", 2, ErrorKindWrite, "disk full")

	assert.Len(t, r.Errors, 1)
	assert.Equal(t, ItemError{
		File:      "scanA",
		ScanIndex: 2,
		Kind:      ErrorKindWrite,
		Message:   "disk full",
	}, r.Errors[0])
}

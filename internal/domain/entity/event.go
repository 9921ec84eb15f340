package entity

type ProgressPhase string

const (
	PhaseStarted   ProgressPhase = "started"
	PhaseFileBegin ProgressPhase = "file_begin"
	PhaseScanDone  ProgressPhase = "scan_done"
	PhaseFileDone  ProgressPhase = "file_done"
	PhaseError     ProgressPhase = "error"
	PhaseCompleted ProgressPhase = "completed"
	PhaseCancelled ProgressPhase = "cancelled"
)

// ProgressEvent is pushed to the caller's sink as the pipeline advances.
// Delivery is best-effort; the pipeline never blocks on a slow consumer.
type ProgressEvent struct {
	Phase          ProgressPhase
	File           string
	ScanIndex      int
	FilesProcessed int
	FilesTotal     int
	Status         RunStatus
	Error          *ItemError
}

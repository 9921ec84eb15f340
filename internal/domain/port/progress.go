package port

import (
	"github.com/MundaneSoftware/e57-Image-Extractor/internal/domain/entity"
)

// ProgressSink receives progress events from a running batch. Publish is
// best-effort: implementations must not block, and nothing a sink does
// can abort the run.
type ProgressSink interface {
	Publish(event entity.ProgressEvent)
}

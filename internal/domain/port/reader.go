package port

import (
	"context"

	"github.com/MundaneSoftware/e57-Image-Extractor/internal/domain/entity"
)

// ScanData is one scan's extracted content. Image holds the still-encoded
// panoramic payload (JPEG or PNG bytes) and is nil for scans without an
// embedded image.
type ScanData struct {
	Index int
	Image []byte
	Pose  entity.Pose
}

// Capture is an open capture file.
type Capture interface {
	ScanCount() int
	Scan(ctx context.Context, index int) (*ScanData, error)
	Close() error
}

// CaptureReader opens .e57 containers. Parsing the on-disk format is
// delegated entirely to the implementation.
type CaptureReader interface {
	Open(ctx context.Context, path string) (Capture, error)
}

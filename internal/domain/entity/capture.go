package entity

import (
	"fmt"
	"path/filepath"
	"strings"
)

// CaptureFile is one input .e57 container supplied by the caller.
// It is read-only to the pipeline.
type CaptureFile struct {
	Path string
}

func NewCaptureFile(path string) CaptureFile {
	return CaptureFile{Path: path}
}

// DisplayName is the file name without directory or extension, used both
// for logging and as the base of output image names.
func (c CaptureFile) DisplayName() string {
	base := filepath.Base(c.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// HasCaptureExtension reports whether the path carries the .e57 suffix.
// Inputs without it are skipped with a warning rather than treated as errors.
func (c CaptureFile) HasCaptureExtension() bool {
	return strings.EqualFold(filepath.Ext(c.Path), ".e57")
}

// ImageFileName is the deterministic output name for one scan of this
// capture: "<base>_<index>.jpeg". Unique within a capture, but two inputs
// sharing a base name will collide; callers that batch such inputs must
// use separate output directories.
func (c CaptureFile) ImageFileName(scanIndex int) string {
	return fmt.Sprintf("%s_%d.jpeg", c.DisplayName(), scanIndex)
}

// Translation is a scan position in the capture file's native units.
type Translation struct {
	X float64
	Y float64
	Z float64
}

// Rotation is a scan orientation quaternion. Unit length is assumed, not
// validated; values are copied verbatim from the source container.
type Rotation struct {
	X float64
	Y float64
	Z float64
	W float64
}

// Pose is the 6-DoF placement of one scan.
type Pose struct {
	Translation Translation
	Rotation    Rotation
}

// Package e57 reads capture files by delegating to an external export
// tool, the same way the processing pipeline this grew out of shells out
// to ffmpeg: the container format is never parsed in-process.
//
// The tool is invoked as
//
//	<tool> -json -out <dir> <file.e57>
//
// and must print a manifest to stdout:
//
//	{"scans": [{"index": 0, "name": "...", "guid": "...",
//	            "translation": [x, y, z],
//	            "rotation": [w, x, y, z],
//	            "image": "pano_000.jpg"}]}
//
// "image" names a file the tool wrote under <dir> holding the scan's raw
// panoramic payload (JPEG or PNG bytes) and is omitted for scans without
// an embedded image. "rotation" uses libE57's (w, x, y, z) component
// order; Scan reorders it to (x, y, z, w).
package e57

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/MundaneSoftware/e57-Image-Extractor/internal/domain/entity"
	"github.com/MundaneSoftware/e57-Image-Extractor/internal/domain/port"
	"go.uber.org/zap"
)

type Reader struct {
	tool    string
	tempDir string
	timeout time.Duration
	logger  *zap.Logger
}

func NewReader(tool, tempDir string, timeout time.Duration, logger *zap.Logger) *Reader {
	return &Reader{tool: tool, tempDir: tempDir, timeout: timeout, logger: logger}
}

type manifest struct {
	Scans []manifestScan `json:"scans"`
}

type manifestScan struct {
	Index       int        `json:"index"`
	Name        string     `json:"name"`
	GUID        string     `json:"guid"`
	Translation [3]float64 `json:"translation"`
	Rotation    [4]float64 `json:"rotation"`
	Image       string     `json:"image"`
}

func (r *Reader) Open(ctx context.Context, path string) (port.Capture, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("stat capture file: %w", err)
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	workDir, err := os.MkdirTemp(r.tempDir, "e57-export-*")
	if err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}

	cmd := exec.CommandContext(ctx, r.tool, "-json", "-out", workDir, path)
	output, err := cmd.Output()
	if err != nil {
		os.RemoveAll(workDir)
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("%s: %w, stderr: %s", r.tool, err, string(exitErr.Stderr))
		}
		return nil, fmt.Errorf("run %s: %w", r.tool, err)
	}

	var m manifest
	if err := json.Unmarshal(output, &m); err != nil {
		os.RemoveAll(workDir)
		return nil, fmt.Errorf("parse export manifest: %w", err)
	}

	r.logger.Debug("capture file opened",
		zap.String("file", path),
		zap.Int("scan_count", len(m.Scans)),
	)

	return &capture{scans: m.Scans, workDir: workDir}, nil
}

type capture struct {
	scans   []manifestScan
	workDir string
}

func (c *capture) ScanCount() int {
	return len(c.scans)
}

// Scan loads one scan's payload from the export directory. Payloads are
// read lazily, one at a time, so peak memory stays bounded to a single
// panorama.
func (c *capture) Scan(ctx context.Context, index int) (*port.ScanData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if index < 0 || index >= len(c.scans) {
		return nil, fmt.Errorf("scan index %d out of range [0,%d)", index, len(c.scans))
	}

	s := c.scans[index]
	data := &port.ScanData{
		Index: index,
		Pose: entity.Pose{
			Translation: entity.Translation{
				X: s.Translation[0],
				Y: s.Translation[1],
				Z: s.Translation[2],
			},
			// Manifest order is (w, x, y, z).
			Rotation: entity.Rotation{
				X: s.Rotation[1],
				Y: s.Rotation[2],
				Z: s.Rotation[3],
				W: s.Rotation[0],
			},
		},
	}

	if s.Image == "" {
		return data, nil
	}

	payload, err := os.ReadFile(filepath.Join(c.workDir, s.Image))
	if err != nil {
		return nil, fmt.Errorf("read scan %d payload: %w", index, err)
	}
	data.Image = payload
	return data, nil
}

func (c *capture) Close() error {
	return os.RemoveAll(c.workDir)
}

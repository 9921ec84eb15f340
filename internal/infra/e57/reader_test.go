package e57

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// writeStubTool writes an executable standing in for the external export
// tool. It is invoked as: <tool> -json -out <dir> <file>.
func writeStubTool(t *testing.T, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "e57-export-stub")
	require.NoError(t, os.WriteFile(path, []byte(script), 0755))
	return path
}

func writeCaptureFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scanA.e57")
	require.NoError(t, os.WriteFile(path, []byte("fake e57 container"), 0644))
	return path
}

func TestOpenParsesManifest(t *testing.T) {
	tool := writeStubTool(t, `#!/bin/sh
dir="$3"
printf 'panoramic-bytes' > "$dir/pano_0.jpg"
cat <<'EOF'
{"scans":[
  {"index":0,"name":"s0","guid":"g0","translation":[1.5,2.5,3.5],"rotation":[0.4,0.1,0.2,0.3],"image":"pano_0.jpg"},
  {"index":1,"name":"s1","guid":"g1","translation":[4,5,6],"rotation":[1,0,0,0]}
]}
EOF
`)

	r := NewReader(tool, t.TempDir(), 0, zaptest.NewLogger(t))
	capture, err := r.Open(context.Background(), writeCaptureFile(t))
	require.NoError(t, err)
	defer capture.Close()

	require.Equal(t, 2, capture.ScanCount())

	scan, err := capture.Scan(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, []byte("panoramic-bytes"), scan.Image)
	assert.Equal(t, 1.5, scan.Pose.Translation.X)
	assert.Equal(t, 2.5, scan.Pose.Translation.Y)
	assert.Equal(t, 3.5, scan.Pose.Translation.Z)

	// Manifest rotation is (w,x,y,z); the pose is (x,y,z,w).
	assert.Equal(t, 0.1, scan.Pose.Rotation.X)
	assert.Equal(t, 0.2, scan.Pose.Rotation.Y)
	assert.Equal(t, 0.3, scan.Pose.Rotation.Z)
	assert.Equal(t, 0.4, scan.Pose.Rotation.W)
}

func TestScanWithoutImage(t *testing.T) {
	tool := writeStubTool(t, `#!/bin/sh
echo '{"scans":[{"index":0,"translation":[0,0,0],"rotation":[1,0,0,0]}]}'
`)

	r := NewReader(tool, t.TempDir(), 0, zaptest.NewLogger(t))
	capture, err := r.Open(context.Background(), writeCaptureFile(t))
	require.NoError(t, err)
	defer capture.Close()

	scan, err := capture.Scan(context.Background(), 0)
	require.NoError(t, err)
	assert.Nil(t, scan.Image)
}

func TestScanIndexOutOfRange(t *testing.T) {
	tool := writeStubTool(t, `#!/bin/sh
echo '{"scans":[]}'
`)

	r := NewReader(tool, t.TempDir(), 0, zaptest.NewLogger(t))
	capture, err := r.Open(context.Background(), writeCaptureFile(t))
	require.NoError(t, err)
	defer capture.Close()

	_, err = capture.Scan(context.Background(), 0)
	assert.Error(t, err)
}

func TestOpenMissingFile(t *testing.T) {
	r := NewReader("true", t.TempDir(), 0, zaptest.NewLogger(t))

	_, err := r.Open(context.Background(), filepath.Join(t.TempDir(), "absent.e57"))
	assert.Error(t, err)
}

func TestOpenToolFailure(t *testing.T) {
	tool := writeStubTool(t, `#!/bin/sh
echo 'unsupported e57 version' >&2
exit 3
`)

	r := NewReader(tool, t.TempDir(), 0, zaptest.NewLogger(t))
	_, err := r.Open(context.Background(), writeCaptureFile(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported e57 version")
}

func TestOpenMalformedManifest(t *testing.T) {
	tool := writeStubTool(t, `#!/bin/sh
echo '{not json'
`)

	r := NewReader(tool, t.TempDir(), 0, zaptest.NewLogger(t))
	_, err := r.Open(context.Background(), writeCaptureFile(t))
	assert.Error(t, err)
}

func TestCloseRemovesExportDir(t *testing.T) {
	tool := writeStubTool(t, `#!/bin/sh
dir="$3"
printf 'x' > "$dir/pano_0.jpg"
echo '{"scans":[{"index":0,"translation":[0,0,0],"rotation":[1,0,0,0],"image":"pano_0.jpg"}]}'
`)

	tempRoot := t.TempDir()
	r := NewReader(tool, tempRoot, 0, zaptest.NewLogger(t))
	capture, err := r.Open(context.Background(), writeCaptureFile(t))
	require.NoError(t, err)

	entries, err := os.ReadDir(tempRoot)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	require.NoError(t, capture.Close())

	entries, err = os.ReadDir(tempRoot)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 7 % 256), G: uint8(y * 13 % 256), B: 80, A: 255})
		}
	}
	return img
}

func pngPayload(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, testImage(w, h)))
	return buf.Bytes()
}

func jpegPayload(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, testImage(w, h), &jpeg.Options{Quality: 90}))
	return buf.Bytes()
}

func TestDecodeAcceptsJPEGAndPNG(t *testing.T) {
	p := NewProcessor(50)

	for name, payload := range map[string][]byte{
		"jpeg": jpegPayload(t, 16, 8),
		"png":  pngPayload(t, 16, 8),
	} {
		img, err := p.Decode(payload)
		require.NoError(t, err, name)
		assert.Equal(t, 16, img.Bounds().Dx())
		assert.Equal(t, 8, img.Bounds().Dy())
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	p := NewProcessor(50)

	_, err := p.Decode([]byte("not an image"))
	assert.Error(t, err)

	_, err = p.Decode(nil)
	assert.Error(t, err)
}

func TestResizeProducesExactTarget(t *testing.T) {
	p := NewProcessor(50)

	// Aspect ratio is intentionally ignored: panoramas are stretched to
	// the target, never cropped or padded.
	for _, src := range [][2]int{{16, 8}, {10, 10}, {3, 17}} {
		out, err := p.Resize(testImage(src[0], src[1]), 32, 16)
		require.NoError(t, err)
		assert.Equal(t, 32, out.Bounds().Dx())
		assert.Equal(t, 16, out.Bounds().Dy())
	}
}

func TestResizeRejectsInvalidInput(t *testing.T) {
	p := NewProcessor(50)

	_, err := p.Resize(testImage(8, 8), 0, 16)
	assert.Error(t, err)

	_, err = p.Resize(image.NewRGBA(image.Rect(0, 0, 0, 0)), 16, 16)
	assert.Error(t, err)
}

func TestEncodeIsDeterministic(t *testing.T) {
	p := NewProcessor(50)
	img := testImage(24, 12)

	var a, b bytes.Buffer
	require.NoError(t, p.Encode(&a, img))
	require.NoError(t, p.Encode(&b, img))

	assert.Equal(t, a.Bytes(), b.Bytes())

	decoded, format, err := image.Decode(bytes.NewReader(a.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 24, decoded.Bounds().Dx())
}

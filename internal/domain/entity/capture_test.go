package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCaptureFileDisplayName(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/data/captures/scanA.e57", "scanA"},
		{"scanB.e57", "scanB"},
		{"/data/no_extension", "no_extension"},
		{"/data/dotted.name.e57", "dotted.name"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NewCaptureFile(tt.path).DisplayName())
	}
}

func TestCaptureFileImageFileName(t *testing.T) {
	c := NewCaptureFile("/data/scanA.e57")

	assert.Equal(t, "scanA_0.jpeg", c.ImageFileName(0))
	assert.Equal(t, "scanA_12.jpeg", c.ImageFileName(12))
}

func TestCaptureFileHasCaptureExtension(t *testing.T) {
	assert.True(t, NewCaptureFile("a.e57").HasCaptureExtension())
	assert.True(t, NewCaptureFile("a.E57").HasCaptureExtension())
	assert.False(t, NewCaptureFile("a.las").HasCaptureExtension())
	assert.False(t, NewCaptureFile("a").HasCaptureExtension())
}

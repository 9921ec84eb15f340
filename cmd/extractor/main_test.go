package main

import (
	"testing"

	"github.com/MundaneSoftware/e57-Image-Extractor/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSize(t *testing.T) {
	w, h, err := parseSize("8192x4096")
	require.NoError(t, err)
	assert.Equal(t, 8192, w)
	assert.Equal(t, 4096, h)

	w, h, err = parseSize("64X32")
	require.NoError(t, err)
	assert.Equal(t, 64, w)
	assert.Equal(t, 32, h)

	for _, bad := range []string{"", "8192", "0x4096", "-1x2", "ax b"} {
		_, _, err := parseSize(bad)
		assert.Error(t, err, bad)
	}
}

func TestChannelSinkDropsWhenFull(t *testing.T) {
	sink := newChannelSink(1)

	// Publish must never block, even with no consumer.
	sink.Publish(entity.ProgressEvent{Phase: entity.PhaseStarted})
	sink.Publish(entity.ProgressEvent{Phase: entity.PhaseScanDone})
	sink.Publish(entity.ProgressEvent{Phase: entity.PhaseCompleted})

	sink.Close()

	var received []entity.ProgressPhase
	for ev := range sink.Events() {
		received = append(received, ev.Phase)
	}
	assert.Equal(t, []entity.ProgressPhase{entity.PhaseStarted}, received)
}

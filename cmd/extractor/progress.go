package main

import (
	"github.com/MundaneSoftware/e57-Image-Extractor/internal/domain/entity"
)

// channelSink bridges the pipeline worker and the terminal renderer over
// a bounded channel. Publish never blocks: when the renderer falls
// behind, events are dropped rather than stalling extraction.
type channelSink struct {
	ch chan entity.ProgressEvent
}

func newChannelSink(buffer int) *channelSink {
	if buffer <= 0 {
		buffer = 64
	}
	return &channelSink{ch: make(chan entity.ProgressEvent, buffer)}
}

func (s *channelSink) Publish(event entity.ProgressEvent) {
	select {
	case s.ch <- event:
	default:
	}
}

func (s *channelSink) Events() <-chan entity.ProgressEvent {
	return s.ch
}

// Close ends the event stream. Only the producing side may call it, after
// the run has returned.
func (s *channelSink) Close() {
	close(s.ch)
}

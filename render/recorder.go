// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import "slices"

// RecordingRenderer keeps a deep copy of every batch drawn during a frame.
// It draws nothing; hosts use it for headless runs and tests that need to
// inspect exactly what the producer submitted.
//
// Recorded batches own their streams, so they stay valid after the
// producer releases or overwrites its memory.
type RecordingRenderer struct {
	current  []Batch
	frames   [][]Batch
	released []string

	// keep bounds the number of retained frames; 0 keeps all.
	keep int
}

// NewRecordingRenderer returns a recorder retaining at most keep frames
// (0 for unbounded).
func NewRecordingRenderer(keep int) *RecordingRenderer {
	return &RecordingRenderer{keep: keep}
}

// DrawBatch records a copy of the batch. The target may be nil.
func (r *RecordingRenderer) DrawBatch(_ RenderTarget, batch *Batch) error {
	if err := batch.Validate(); err != nil {
		return err
	}
	snap := *batch
	snap.Coords = slices.Clone(batch.Coords)
	snap.Weights = slices.Clone(batch.Weights)
	snap.Colors = slices.Clone(batch.Colors)
	r.current = append(r.current, snap)
	return nil
}

// Flush closes the current frame. A frame with no batches is recorded as
// an empty frame.
func (r *RecordingRenderer) Flush() error {
	r.frames = append(r.frames, r.current)
	r.current = nil
	if r.keep > 0 && len(r.frames) > r.keep {
		r.frames = slices.Delete(r.frames, 0, len(r.frames)-r.keep)
	}
	return nil
}

// DiscardFrame drops the batches recorded since the last Flush.
func (r *RecordingRenderer) DiscardFrame() {
	r.current = nil
}

// ReleaseBatch records that the producer freed the batch memory.
func (r *RecordingRenderer) ReleaseBatch(label string) {
	r.released = append(r.released, label)
}

// Frames returns the retained frames, oldest first.
func (r *RecordingRenderer) Frames() [][]Batch {
	return r.frames
}

// LastFrame returns the batches of the most recent frame, or nil.
func (r *RecordingRenderer) LastFrame() []Batch {
	if len(r.frames) == 0 {
		return nil
	}
	return r.frames[len(r.frames)-1]
}

// Released returns the labels passed to ReleaseBatch, in call order.
func (r *RecordingRenderer) Released() []string {
	return r.released
}

// Reset drops all recorded frames and releases.
func (r *RecordingRenderer) Reset() {
	r.current, r.frames, r.released = nil, nil, nil
}

var (
	_ Renderer       = (*RecordingRenderer)(nil)
	_ BatchReleaser  = (*RecordingRenderer)(nil)
	_ FrameDiscarder = (*RecordingRenderer)(nil)
)

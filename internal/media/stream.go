// Package media models the platform capabilities a proctored session consumes:
// a camera stream acquired behind a permission prompt, and page-visibility events.
package media

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

// ErrPermissionDenied is returned by Camera.Acquire when the user refuses access.
var ErrPermissionDenied = errors.New("camera permission denied")

// Track is a single live media track.
type Track struct {
	ID   string
	Kind string

	mu      sync.Mutex
	stopped bool
}

// Stop ends the track. Stopping twice is a no-op.
func (t *Track) Stop() {
	t.mu.Lock()
	t.stopped = true
	t.mu.Unlock()
}

// Live reports whether the track is still running.
func (t *Track) Live() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.stopped
}

// Stream is a set of tracks acquired together.
type Stream struct {
	ID     string
	tracks []*Track
}

// NewStream creates a live stream with one track per kind ("video", "audio").
func NewStream(kinds ...string) *Stream {
	s := &Stream{ID: uuid.NewString()}
	for _, k := range kinds {
		s.tracks = append(s.tracks, &Track{ID: uuid.NewString(), Kind: k})
	}
	return s
}

// Tracks returns the stream's tracks.
func (s *Stream) Tracks() []*Track {
	return append([]*Track(nil), s.tracks...)
}

// ActiveTracks counts tracks that have not been stopped.
func (s *Stream) ActiveTracks() int {
	n := 0
	for _, t := range s.tracks {
		if t.Live() {
			n++
		}
	}
	return n
}

// Stop stops every track.
func (s *Stream) Stop() {
	for _, t := range s.tracks {
		t.Stop()
	}
}

// Camera acquires a live video stream, subject to user permission.
type Camera interface {
	Acquire(ctx context.Context) (*Stream, error)
}

// PermissionCamera asks Prompt for permission on every Acquire; a denial can be retried.
type PermissionCamera struct {
	Prompt func(ctx context.Context) (bool, error)
	Kinds  []string
}

// Acquire implements Camera.
func (c *PermissionCamera) Acquire(ctx context.Context) (*Stream, error) {
	granted, err := c.Prompt(ctx)
	if err != nil {
		return nil, err
	}
	if !granted {
		return nil, ErrPermissionDenied
	}
	kinds := c.Kinds
	if len(kinds) == 0 {
		kinds = []string{"video"}
	}
	return NewStream(kinds...), nil
}

// StaticCamera returns a camera that always answers the permission prompt with granted.
func StaticCamera(granted bool) *PermissionCamera {
	return &PermissionCamera{Prompt: func(context.Context) (bool, error) { return granted, nil }}
}

// ReportedCamera is a camera whose permission outcome is reported by a remote client
// before each acquisition, as happens when the browser owns the real device.
type ReportedCamera struct {
	mu      sync.Mutex
	granted bool
}

// Report records the outcome of the client-side permission prompt.
func (c *ReportedCamera) Report(granted bool) {
	c.mu.Lock()
	c.granted = granted
	c.mu.Unlock()
}

// Acquire implements Camera.
func (c *ReportedCamera) Acquire(_ context.Context) (*Stream, error) {
	c.mu.Lock()
	granted := c.granted
	c.mu.Unlock()
	if !granted {
		return nil, ErrPermissionDenied
	}
	return NewStream("video"), nil
}

package media

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStream_Stop(t *testing.T) {
	s := NewStream("video", "audio")
	assert.Equal(t, 2, s.ActiveTracks())
	assert.NotEmpty(t, s.ID)

	s.Tracks()[0].Stop()
	assert.Equal(t, 1, s.ActiveTracks())

	s.Stop()
	s.Stop()
	assert.Equal(t, 0, s.ActiveTracks())
}

func TestPermissionCamera(t *testing.T) {
	t.Run("granted", func(t *testing.T) {
		s, err := StaticCamera(true).Acquire(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, s.ActiveTracks())
		assert.Equal(t, "video", s.Tracks()[0].Kind)
	})

	t.Run("denied then granted", func(t *testing.T) {
		answers := []bool{false, true}
		cam := &PermissionCamera{
			Prompt: func(context.Context) (bool, error) {
				a := answers[0]
				answers = answers[1:]
				return a, nil
			},
			Kinds: []string{"video", "audio"},
		}

		_, err := cam.Acquire(context.Background())
		assert.ErrorIs(t, err, ErrPermissionDenied)

		s, err := cam.Acquire(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, s.ActiveTracks())
	})

	t.Run("prompt error", func(t *testing.T) {
		boom := errors.New("no device")
		cam := &PermissionCamera{Prompt: func(context.Context) (bool, error) { return false, boom }}
		_, err := cam.Acquire(context.Background())
		assert.ErrorIs(t, err, boom)
	})
}

func TestReportedCamera(t *testing.T) {
	cam := &ReportedCamera{}
	_, err := cam.Acquire(context.Background())
	assert.ErrorIs(t, err, ErrPermissionDenied)

	cam.Report(true)
	s, err := cam.Acquire(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, s.ActiveTracks())
}

func TestVisibilityBus(t *testing.T) {
	bus := NewVisibilityBus()
	var got []Visibility

	cancel := bus.Subscribe(func(v Visibility) { got = append(got, v) })
	assert.Equal(t, 1, bus.Subscribers())

	bus.Publish(Hidden)
	bus.Publish(Visible)

	cancel()
	cancel()
	assert.Equal(t, 0, bus.Subscribers())

	bus.Publish(Hidden)
	assert.Equal(t, []Visibility{Hidden, Visible}, got)
}

func TestVisibilityBus_HandlerMaySubscribe(t *testing.T) {
	bus := NewVisibilityBus()
	calls := 0
	bus.Subscribe(func(Visibility) {
		calls++
		bus.Subscribe(func(Visibility) {})
	})

	bus.Publish(Hidden)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 2, bus.Subscribers())
}

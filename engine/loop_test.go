package engine

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacobswearingen/FlipMouse/devices"
	"github.com/jacobswearingen/FlipMouse/keymaps"
)

type taggedEvent struct {
	source string
	event  devices.Event
}

type taggedRecorder struct {
	tag string
	out chan taggedEvent
}

func (r *taggedRecorder) WriteEvent(ev devices.Event) error {
	r.out <- taggedEvent{source: r.tag, event: ev}
	return nil
}

// pipeSource feeds the loop through a real pipe fd so unix.Poll sees actual
// readiness. One queued event is released per byte written to the pipe.
type pipeSource struct {
	name    string
	r, w    *os.File
	profile keymaps.Profile
	clone   devices.EventWriter
	queue   []devices.Event
	next    int
	readErr error
}

func newPipeSource(t *testing.T, name string, clone devices.EventWriter, queue ...devices.Event) *pipeSource {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)
	t.Cleanup(func() {
		r.Close()
		w.Close()
	})
	return &pipeSource{
		name:    name,
		r:       r,
		w:       w,
		profile: keymaps.CreateDefaultProvider().ProfileFor(name),
		clone:   clone,
		queue:   queue,
	}
}

func (s *pipeSource) Name() string { return s.name }

func (s *pipeSource) Fd() int { return int(s.r.Fd()) }

func (s *pipeSource) Profile() keymaps.Profile { return s.profile }

func (s *pipeSource) Clone() devices.EventWriter { return s.clone }

func (s *pipeSource) ReadOne() (devices.Event, error) {
	buf := make([]byte, 1)
	if _, err := s.r.Read(buf); err != nil {
		return devices.Event{}, err
	}
	if s.readErr != nil {
		return devices.Event{}, s.readErr
	}
	ev := s.queue[s.next]
	s.next++
	return ev, nil
}

func (s *pipeSource) signal(t *testing.T) {
	t.Helper()
	_, err := s.w.Write([]byte{1})
	require.NoError(t, err)
}

func runLoop(t *testing.T, loop *Loop) (cancel context.CancelFunc, done chan error) {
	t.Helper()
	ctx, cancelFn := context.WithCancel(context.Background())
	done = make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()
	return cancelFn, done
}

func collect(t *testing.T, out chan taggedEvent, n int) []taggedEvent {
	t.Helper()
	var got []taggedEvent
	for len(got) < n {
		select {
		case ev := <-out:
			got = append(got, ev)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for event %d of %d", len(got)+1, n)
		}
	}
	return got
}

func TestLoopPreservesInterleavedOrder(t *testing.T) {
	out := make(chan taggedEvent, 8)

	evA := devices.Event{Type: keymaps.EvKey, Code: 200, Value: 1}
	evB := devices.Event{Type: keymaps.EvKey, Code: 201, Value: 1}
	evC := devices.Event{Type: keymaps.EvKey, Code: 202, Value: 1}

	dev1 := newPipeSource(t, "mtk-kpd", &taggedRecorder{tag: "dev1", out: out}, evA, evC)
	dev2 := newPipeSource(t, "matrix-keypad", &taggedRecorder{tag: "dev2", out: out}, evB)

	// Pointer mode stays disabled, so every event forwards to its clone.
	eng := newTestEngine()
	router := NewRouter(&recordingWriter{}, zerolog.Nop())
	loop := NewLoop([]Source{dev1, dev2}, eng, router, zerolog.Nop())
	loop.PollTimeout = 25

	dev1.signal(t)
	dev2.signal(t)
	dev1.signal(t)

	cancel, done := runLoop(t, loop)

	got := collect(t, out, 3)
	cancel()
	require.NoError(t, <-done)

	assert.Equal(t, []taggedEvent{
		{source: "dev1", event: evA},
		{source: "dev2", event: evB},
		{source: "dev1", event: evC},
	}, got)
}

func TestLoopSkipsFailedReadsAndKeepsDevices(t *testing.T) {
	out := make(chan taggedEvent, 8)

	evB := devices.Event{Type: keymaps.EvKey, Code: 201, Value: 1}

	broken := newPipeSource(t, "mtk-kpd", &taggedRecorder{tag: "broken", out: out})
	broken.readErr = errors.New("short read")
	healthy := newPipeSource(t, "matrix-keypad", &taggedRecorder{tag: "healthy", out: out}, evB, evB)

	eng := newTestEngine()
	router := NewRouter(&recordingWriter{}, zerolog.Nop())
	loop := NewLoop([]Source{broken, healthy}, eng, router, zerolog.Nop())
	loop.PollTimeout = 25

	broken.signal(t)
	healthy.signal(t)

	cancel, done := runLoop(t, loop)

	got := collect(t, out, 1)
	assert.Equal(t, "healthy", got[0].source)

	// The broken device stays attached; a later good read would still be
	// attempted. Feed the healthy one again to prove the loop is alive.
	healthy.signal(t)
	got = collect(t, out, 1)
	assert.Equal(t, "healthy", got[0].source)

	cancel()
	require.NoError(t, <-done)
}

func TestLoopStopsOnCancel(t *testing.T) {
	dev := newPipeSource(t, "mtk-kpd", &recordingWriter{})

	eng := newTestEngine()
	router := NewRouter(&recordingWriter{}, zerolog.Nop())
	loop := NewLoop([]Source{dev}, eng, router, zerolog.Nop())
	loop.PollTimeout = 25

	cancel, done := runLoop(t, loop)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop after cancellation")
	}
}

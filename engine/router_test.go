package engine

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/jacobswearingen/FlipMouse/devices"
	"github.com/jacobswearingen/FlipMouse/keymaps"
)

type recordingWriter struct {
	events []devices.Event
}

func (w *recordingWriter) WriteEvent(ev devices.Event) error {
	w.events = append(w.events, ev)
	return nil
}

type failingWriter struct{}

func (failingWriter) WriteEvent(devices.Event) error {
	return errors.New("write failed")
}

func TestDispatchRoutes(t *testing.T) {
	clone := &recordingWriter{}
	pointer := &recordingWriter{}
	router := NewRouter(pointer, zerolog.Nop())

	motion := devices.Event{Type: keymaps.EvRel, Code: keymaps.RelY, Value: -4}
	passthrough := devices.Event{Type: keymaps.EvKey, Code: keymaps.KeyA, Value: 1}

	router.Dispatch(clone, Outcome{Route: Suppress})
	router.Dispatch(clone, Outcome{Route: ToClone, Event: passthrough})
	router.Dispatch(clone, Outcome{Route: ToPointer, Event: motion})

	assert.Equal(t, []devices.Event{passthrough}, clone.events)
	assert.Equal(t, []devices.Event{motion}, pointer.events)
}

func TestDispatchSwallowsWriteFailures(t *testing.T) {
	router := NewRouter(failingWriter{}, zerolog.Nop())

	// Neither channel failing may panic or propagate.
	router.Dispatch(failingWriter{}, Outcome{Route: ToClone, Event: devices.Event{Type: keymaps.EvKey}})
	router.Dispatch(failingWriter{}, Outcome{Route: ToPointer, Event: devices.Event{Type: keymaps.EvRel}})
}

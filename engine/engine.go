package engine

import (
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/jacobswearingen/FlipMouse/devices"
	"github.com/jacobswearingen/FlipMouse/keymaps"
)

// Route says where a classified event goes.
type Route int

const (
	// Suppress drops the event entirely.
	Suppress Route = iota
	// ToClone forwards the event unchanged to the source device's clone.
	ToClone
	// ToPointer delivers the (possibly rewritten) event to the virtual pointer.
	ToPointer
)

// Outcome is the result of classifying one event: a route plus the effective
// event carried on it. The input event is never modified.
type Outcome struct {
	Route Route
	Event devices.Event
}

func suppress() Outcome { return Outcome{Route: Suppress} }

func toClone(ev devices.Event) Outcome { return Outcome{Route: ToClone, Event: ev} }

func toPointer(ev devices.Event) Outcome { return Outcome{Route: ToPointer, Event: ev} }

// Tunables are the runtime knobs the classifier consults. They may be
// replaced from another goroutine (config reload); the classifier reads them
// through an atomic pointer once per event.
type Tunables struct {
	MinSpeed            int32
	DefaultSpeed        int32
	WheelSlowdownFactor uint
}

// PointerState is the pointer-mode state machine. It has a single writer,
// the engine, on the event loop goroutine.
type PointerState struct {
	Enabled      bool
	Speed        int32
	DragMode     bool
	WheelCounter uint
}

// Engine classifies raw input events against the current pointer state and
// decides where each one is routed.
type Engine struct {
	state    PointerState
	tunables atomic.Pointer[Tunables]
	log      zerolog.Logger
}

// New creates an engine in pass-through mode with the given tunables.
func New(tun Tunables, log zerolog.Logger) *Engine {
	e := &Engine{
		state: PointerState{Speed: tun.DefaultSpeed},
		log:   log,
	}
	if e.state.Speed < tun.MinSpeed {
		e.state.Speed = tun.MinSpeed
	}
	e.tunables.Store(&tun)
	return e
}

// SetTunables swaps in new tunables. Safe to call from any goroutine.
func (e *Engine) SetTunables(tun Tunables) {
	e.tunables.Store(&tun)
	e.log.Info().
		Int32("min_speed", tun.MinSpeed).
		Uint("wheel_slowdown_factor", tun.WheelSlowdownFactor).
		Msg("tunables updated")
}

// State returns a copy of the current pointer state.
func (e *Engine) State() PointerState { return e.state }

// Classify runs one event through the classification steps, mutating the
// pointer state as a side effect. It never fails; anything unrecognized
// falls through to pass-through forwarding.
func (e *Engine) Classify(profile keymaps.Profile, ev devices.Event) Outcome {
	code := ev.Code

	// The kernel reports the same physical press twice: a raw scan value
	// and a logical key. Only the scan form is translated; its logical
	// echo is dropped so a press acts once.
	if ev.Type == keymaps.EvMsc && ev.Code == keymaps.MscScan {
		if mapped, ok := profile.Table.ResolveKey(ev.Value); ok {
			code = mapped
		}
	} else if ev.Type == keymaps.EvKey {
		if _, ok := profile.Table.ResolveScancode(ev.Code); ok {
			return suppress()
		}
	}

	if profile.Keys.IsToggle(code) {
		if ev.Value == 1 {
			e.state.Enabled = !e.state.Enabled
			e.log.Info().Bool("enabled", e.state.Enabled).Msg("pointer mode toggled")
		}
		// The original toggle event goes to the pointer channel, which
		// has no capability for it. Kept as-is.
		return toPointer(ev)
	}

	if !e.state.Enabled {
		return toClone(ev)
	}

	tun := e.tunables.Load()
	keys := profile.Keys

	switch code {
	case keys.FasterKey:
		if ev.Value == 1 {
			e.state.Speed++
			e.log.Info().Int32("speed", e.state.Speed).Msg("pointer speed")
		}
		return suppress()

	case keys.SlowerKey:
		if ev.Value == 1 {
			e.state.Speed--
			if e.state.Speed < tun.MinSpeed {
				e.state.Speed = tun.MinSpeed
			}
			e.log.Info().Int32("speed", e.state.Speed).Msg("pointer speed")
		}
		return suppress()

	case keys.ClickKey:
		return toPointer(devices.Event{Type: keymaps.EvKey, Code: keymaps.BtnLeft, Value: ev.Value})

	case keys.DragKey:
		if ev.Value == 1 {
			e.state.DragMode = !e.state.DragMode
			value := int32(0)
			if e.state.DragMode {
				value = 1
			}
			e.log.Info().Bool("drag", e.state.DragMode).Msg("drag mode")
			return toPointer(devices.Event{Type: keymaps.EvKey, Code: keymaps.BtnLeft, Value: value})
		}
		// Drag toggling is edge-triggered on press; the key's own
		// release passes through.

	case keys.UpKey:
		return toPointer(devices.Event{Type: keymaps.EvRel, Code: keymaps.RelY, Value: -e.state.Speed})

	case keys.DownKey:
		return toPointer(devices.Event{Type: keymaps.EvRel, Code: keymaps.RelY, Value: e.state.Speed})

	case keys.LeftKey:
		return toPointer(devices.Event{Type: keymaps.EvRel, Code: keymaps.RelX, Value: -e.state.Speed})

	case keys.RightKey:
		return toPointer(devices.Event{Type: keymaps.EvRel, Code: keymaps.RelX, Value: e.state.Speed})

	case keys.ScrollUpKey, keys.ScrollDownKey:
		// The keypad repeat rate is far above a usable scroll rate, so
		// only every Nth occurrence becomes a wheel tick.
		count := e.state.WheelCounter
		e.state.WheelCounter++
		if tun.WheelSlowdownFactor > 1 && count%tun.WheelSlowdownFactor != 0 {
			return suppress()
		}
		value := int32(1)
		if code == keys.ScrollDownKey {
			value = -1
		}
		return toPointer(devices.Event{Type: keymaps.EvRel, Code: keymaps.RelWheel, Value: value})
	}

	return toClone(ev)
}

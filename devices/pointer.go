package devices

import (
	"fmt"

	"github.com/bendahl/uinput"
	"github.com/rs/zerolog"

	"github.com/jacobswearingen/FlipMouse/keymaps"
)

// Pointer is the single virtual pointer device. It adapts rewritten events
// onto the uinput mouse, which declares relative X/Y, both wheels and the
// left/right buttons.
type Pointer struct {
	mouse uinput.Mouse
	log   zerolog.Logger
}

// NewPointer creates the process-wide virtual pointer device.
func NewPointer(log zerolog.Logger) (*Pointer, error) {
	mouse, err := uinput.CreateMouse("/dev/uinput", []byte("FlipMouse Virtual Mouse"))
	if err != nil {
		return nil, fmt.Errorf("failed to create virtual pointer: %w", err)
	}
	log.Info().Msg("virtual pointer initialized")
	return &Pointer{mouse: mouse, log: log}, nil
}

// WriteEvent delivers one rewritten event to the pointer. Events the pointer
// declares no capability for are dropped; the kernel would discard them
// anyway, so only a debug line records the attempt.
func (p *Pointer) WriteEvent(ev Event) error {
	switch ev.Type {
	case keymaps.EvRel:
		return p.writeRelative(ev)
	case keymaps.EvKey:
		return p.writeButton(ev)
	default:
		p.log.Debug().Str("event", ev.String()).Msg("pointer has no capability for event, dropping")
		return nil
	}
}

func (p *Pointer) writeRelative(ev Event) error {
	switch ev.Code {
	case keymaps.RelX:
		return p.mouse.Move(ev.Value, 0)
	case keymaps.RelY:
		return p.mouse.Move(0, ev.Value)
	case keymaps.RelWheel:
		return p.mouse.Wheel(false, ev.Value)
	case keymaps.RelHWheel:
		return p.mouse.Wheel(true, ev.Value)
	default:
		p.log.Debug().Str("event", ev.String()).Msg("unsupported relative axis, dropping")
		return nil
	}
}

func (p *Pointer) writeButton(ev Event) error {
	switch ev.Code {
	case keymaps.BtnLeft:
		if ev.Value == 0 {
			return p.mouse.LeftRelease()
		}
		return p.mouse.LeftPress()
	case keymaps.BtnRight:
		if ev.Value == 0 {
			return p.mouse.RightRelease()
		}
		return p.mouse.RightPress()
	default:
		p.log.Debug().Str("event", ev.String()).Msg("pointer has no capability for key, dropping")
		return nil
	}
}

// Close releases any held buttons and destroys the pointer device.
func (p *Pointer) Close() error {
	_ = p.mouse.LeftRelease()
	_ = p.mouse.RightRelease()
	return p.mouse.Close()
}

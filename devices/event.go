package devices

import "fmt"

// Event is one input record as read from a device: the kernel's fixed
// type/code/value triple, minus the timestamp (rewritten events carry none).
type Event struct {
	Type  uint16
	Code  uint16
	Value int32
}

func (e Event) String() string {
	return fmt.Sprintf("type=%d code=%d value=%d", e.Type, e.Code, e.Value)
}

// EventWriter is a virtual output channel. Implementations flush a coherent
// packet per call (event followed by a sync marker where the backend needs one).
type EventWriter interface {
	WriteEvent(Event) error
}

package engine

import (
	"github.com/rs/zerolog"

	"github.com/jacobswearingen/FlipMouse/devices"
)

// Router delivers classification outcomes to the virtual outputs. Write
// failures drop the in-flight event; they never stop the loop.
type Router struct {
	pointer devices.EventWriter
	log     zerolog.Logger
}

// NewRouter creates a router delivering pointer-routed events to pointer.
func NewRouter(pointer devices.EventWriter, log zerolog.Logger) *Router {
	return &Router{pointer: pointer, log: log}
}

// Dispatch sends the outcome's event to the clone of the originating device,
// to the pointer, or nowhere.
func (r *Router) Dispatch(clone devices.EventWriter, out Outcome) {
	switch out.Route {
	case Suppress:
	case ToClone:
		if err := clone.WriteEvent(out.Event); err != nil {
			r.log.Warn().Str("event", out.Event.String()).Err(err).Msg("clone write failed, event dropped")
		}
	case ToPointer:
		if err := r.pointer.WriteEvent(out.Event); err != nil {
			r.log.Warn().Str("event", out.Event.String()).Err(err).Msg("pointer write failed, event dropped")
		}
	}
}

package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sys/unix"

	"github.com/jacobswearingen/FlipMouse/devices"
	"github.com/jacobswearingen/FlipMouse/keymaps"
)

// Source is one captured device as seen by the loop: a pollable fd, a
// one-event read, and the profile and clone channel chosen at attach time.
type Source interface {
	Name() string
	Fd() int
	ReadOne() (devices.Event, error)
	Profile() keymaps.Profile
	Clone() devices.EventWriter
}

// Loop multiplexes all captured devices on a single goroutine, reading one
// event at a time and driving classification and routing.
type Loop struct {
	sources []Source
	engine  *Engine
	router  *Router
	log     zerolog.Logger

	// PollTimeout bounds each readiness wait in milliseconds so the
	// shutdown check runs even when no events arrive.
	PollTimeout int
}

// NewLoop creates a loop over the given sources.
func NewLoop(sources []Source, engine *Engine, router *Router, log zerolog.Logger) *Loop {
	return &Loop{
		sources:     sources,
		engine:      engine,
		router:      router,
		log:         log,
		PollTimeout: 500,
	}
}

// Run blocks processing events until ctx is cancelled. Per-event failures
// are absorbed; only a broken readiness wait ends the loop early.
func (l *Loop) Run(ctx context.Context) error {
	fds := make([]unix.PollFd, len(l.sources))
	for i, src := range l.sources {
		fds[i] = unix.PollFd{Fd: int32(src.Fd()), Events: unix.POLLIN}
	}

	l.log.Info().Int("devices", len(l.sources)).Msg("entering main event loop")
	for {
		if ctx.Err() != nil {
			l.log.Info().Msg("shutdown requested, leaving event loop")
			return nil
		}

		n, err := unix.Poll(fds, l.PollTimeout)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				// Signal delivery interrupted the wait; re-check the
				// shutdown flag and keep going.
				continue
			}
			return fmt.Errorf("poll failed: %w", err)
		}
		if n == 0 {
			continue
		}

		for i, pfd := range fds {
			if pfd.Revents&unix.POLLIN == 0 {
				continue
			}
			src := l.sources[i]

			ev, err := src.ReadOne()
			if err != nil {
				// Short or failed read: skip this event, keep the device.
				l.log.Warn().Str("device", src.Name()).Err(err).Msg("failed to read event")
				continue
			}

			out := l.engine.Classify(src.Profile(), ev)
			l.router.Dispatch(src.Clone(), out)
		}
	}
}

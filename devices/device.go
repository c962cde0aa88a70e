package devices

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	evdev "github.com/gvalkov/golang-evdev"
	"github.com/rs/zerolog"

	"github.com/jacobswearingen/FlipMouse/keymaps"
)

// ErrNoDevices is returned when the startup scan attaches nothing.
var ErrNoDevices = errors.New("no supported input devices found")

// Device is a captured physical input device together with the virtual
// clone its pass-through events are re-emitted on.
type Device struct {
	dev     *evdev.InputDevice
	clone   *Clone
	profile keymaps.Profile
	name    string
	path    string
	grabbed bool
}

// Name returns the device's reported name.
func (d *Device) Name() string { return d.name }

// Path returns the device node path.
func (d *Device) Path() string { return d.path }

// Fd returns the capture file descriptor for readiness polling.
func (d *Device) Fd() int { return int(d.dev.File.Fd()) }

// Profile returns the scan table and key bindings selected at attach time.
func (d *Device) Profile() keymaps.Profile { return d.profile }

// Clone returns the device's pass-through output channel.
func (d *Device) Clone() EventWriter { return d.clone }

// ReadOne reads exactly one fixed-size event from the device.
func (d *Device) ReadOne() (Event, error) {
	ev, err := d.dev.ReadOne()
	if err != nil {
		return Event{}, err
	}
	return Event{Type: ev.Type, Code: ev.Code, Value: ev.Value}, nil
}

// Close releases the grab, destroys the clone and closes the capture fd.
func (d *Device) Close() {
	if d.grabbed {
		_ = d.dev.Release()
	}
	if d.clone != nil {
		_ = d.clone.Close()
	}
	_ = d.dev.File.Close()
}

// ScanOptions controls the startup device scan.
type ScanOptions struct {
	InputDir string   // device node directory, normally /dev/input
	Allowed  []string // reported names to capture
	Grab     bool     // request exclusive capture
	Capacity int      // maximum devices to attach
}

// Registry is the ordered collection of captured devices.
type Registry struct {
	devices  []*Device
	capacity int
}

// NewRegistry creates a registry holding at most capacity devices.
func NewRegistry(capacity int) *Registry {
	if capacity < 1 {
		capacity = 1
	}
	return &Registry{capacity: capacity}
}

// Attach adds a device, refusing once the registry is full.
func (r *Registry) Attach(d *Device) error {
	if len(r.devices) >= r.capacity {
		return fmt.Errorf("device registry full (capacity %d)", r.capacity)
	}
	r.devices = append(r.devices, d)
	return nil
}

// Devices returns the attached devices in attach order.
func (r *Registry) Devices() []*Device { return r.devices }

// Len returns the number of attached devices.
func (r *Registry) Len() int { return len(r.devices) }

// Close releases every attached device.
func (r *Registry) Close() {
	for _, d := range r.devices {
		d.Close()
	}
	r.devices = nil
}

// Scan walks the input device directory once and captures every allow-listed
// device, up to the registry capacity. A failed candidate is skipped, never
// fatal; an empty result is.
func Scan(opts ScanOptions, provider *keymaps.Provider, log zerolog.Logger) (*Registry, error) {
	paths, err := filepath.Glob(filepath.Join(opts.InputDir, "event*"))
	if err != nil {
		return nil, fmt.Errorf("failed to list input devices: %w", err)
	}

	capacity := opts.Capacity
	if capacity < 1 {
		capacity = 1
	}
	registry := NewRegistry(capacity)
	for _, path := range paths {
		if registry.Len() >= capacity {
			break
		}
		if !isCharDevice(path) {
			continue
		}

		dev, err := evdev.Open(path)
		if err != nil {
			log.Warn().Str("path", path).Err(err).Msg("failed to open device node")
			continue
		}
		if !nameAllowed(dev.Name, opts.Allowed) {
			_ = dev.File.Close()
			continue
		}

		device := &Device{
			dev:     dev,
			profile: provider.ProfileFor(dev.Name),
			name:    dev.Name,
			path:    path,
		}

		if opts.Grab {
			if err := dev.Grab(); err != nil {
				// Best effort: an ungrabbed device still works, the
				// desktop just sees the raw presses too.
				log.Warn().Str("device", dev.Name).Err(err).Msg("failed to grab device")
			} else {
				device.grabbed = true
			}
		}

		clone, err := NewClone(dev, dev.Name+" (FlipMouse)")
		if err != nil {
			log.Warn().Str("device", dev.Name).Err(err).Msg("failed to create pass-through clone")
			device.Close()
			continue
		}
		device.clone = clone

		if err := registry.Attach(device); err != nil {
			log.Warn().Str("device", dev.Name).Err(err).Msg("dropping device")
			device.Close()
			continue
		}
		log.Info().Str("device", dev.Name).Str("path", path).Bool("grabbed", device.grabbed).Msg("attached device")
	}

	if registry.Len() == 0 {
		return nil, ErrNoDevices
	}
	return registry, nil
}

func nameAllowed(name string, allowed []string) bool {
	for _, want := range allowed {
		if name == want {
			return true
		}
	}
	return false
}

// isCharDevice reports whether path exists and is a character device node.
func isCharDevice(path string) bool {
	fi, err := os.Stat(path)
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

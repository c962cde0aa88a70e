package keymaps

// Event type and code constants from linux/input-event-codes.h
const (
	EvSyn = 0x00
	EvKey = 0x01
	EvRel = 0x02
	EvMsc = 0x04

	SynReport = 0
	MscScan   = 0x04

	RelX      = 0x00
	RelY      = 0x01
	RelHWheel = 0x06
	RelWheel  = 0x08

	BtnLeft  = 0x110
	BtnRight = 0x111

	KeyEsc        = 1
	KeySend       = 2
	KeyMinus      = 12
	KeyEquals     = 13
	KeyW          = 17
	KeyEnter      = 28
	KeyLeftCtrl   = 29
	KeyA          = 30
	KeyS          = 31
	KeyD          = 32
	KeyB          = 48
	KeySpace      = 57
	KeyF12        = 88
	KeyUp         = 103
	KeyLeft       = 105
	KeyRight      = 106
	KeyDown       = 108
	KeyVolumeDown = 114
	KeyVolumeUp   = 115
	KeyPower      = 116
	KeyHelp       = 138
	KeyMenu       = 139
	KeyCall       = 231
)

// Keyboard types
const (
	KBD_TYPE_KEYPAD = iota
	KBD_TYPE_LAPTOP
)

// ScanEntry pairs a raw hardware scan value with the logical key the same
// physical press is reported as.
type ScanEntry struct {
	Scancode int32
	Key      uint16
}

// ScanKeyMap is a small ordered scancode table. Lookups walk the slice; the
// tables never grow past a handful of entries.
type ScanKeyMap []ScanEntry

// ResolveKey maps a raw scan value to its logical key code.
func (m ScanKeyMap) ResolveKey(scancode int32) (uint16, bool) {
	for _, e := range m {
		if e.Scancode == scancode {
			return e.Key, true
		}
	}
	return 0, false
}

// ResolveScancode maps a logical key code back to its raw scan value.
func (m ScanKeyMap) ResolveScancode(key uint16) (int32, bool) {
	for _, e := range m {
		if e.Key == key {
			return e.Scancode, true
		}
	}
	return 0, false
}

// Bindings names the keys that drive pointer actions for one keyboard type.
type Bindings struct {
	ToggleKeys    [2]uint16
	ClickKey      uint16
	DragKey       uint16
	FasterKey     uint16
	SlowerKey     uint16
	UpKey         uint16
	DownKey       uint16
	LeftKey       uint16
	RightKey      uint16
	ScrollUpKey   uint16
	ScrollDownKey uint16
}

// IsToggle reports whether code is one of the pointer-mode toggle keys.
func (b Bindings) IsToggle(code uint16) bool {
	return code == b.ToggleKeys[0] || code == b.ToggleKeys[1]
}

// Profile bundles the scan table and action bindings selected for a device.
type Profile struct {
	Table ScanKeyMap
	Keys  Bindings
}

// Provider hands out profiles for the supported keyboard types.
type Provider struct {
	profiles map[int]Profile
}

// NewProvider creates a provider with no registered profiles.
func NewProvider() *Provider {
	return &Provider{profiles: map[int]Profile{}}
}

// Register stores the profile for a keyboard type.
func (p *Provider) Register(keyboardType int, profile Profile) {
	p.profiles[keyboardType] = profile
}

// Get returns the profile for the given keyboard type, falling back to the
// keypad profile if the type is unknown.
func (p *Provider) Get(keyboardType int) Profile {
	profile, ok := p.profiles[keyboardType]
	if !ok {
		return p.profiles[KBD_TYPE_KEYPAD]
	}
	return profile
}

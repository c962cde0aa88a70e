package keymaps

// CreateDefaultProvider creates a provider with all built-in profiles.
func CreateDefaultProvider() *Provider {
	provider := NewProvider()

	RegisterKeypadProfile(provider)
	RegisterLaptopProfile(provider)

	return provider
}

// KeyboardTypeFor determines the keyboard type based on device name.
// Allow-listed devices that match no pattern are treated as keypads.
func KeyboardTypeFor(deviceName string) int {
	switch deviceName {
	case "AT Translated Set 2 keyboard":
		return KBD_TYPE_LAPTOP
	default:
		return KBD_TYPE_KEYPAD
	}
}

// ProfileFor selects the profile for a device by its reported name. The
// selection happens once, when the device is attached.
func (p *Provider) ProfileFor(deviceName string) Profile {
	return p.Get(KeyboardTypeFor(deviceName))
}

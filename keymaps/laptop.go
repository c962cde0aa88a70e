package keymaps

// LaptopScanMap is empty: laptop keyboards deliver the remapped keys as
// ordinary key events, which the classifier dispatches on directly. Scan
// entries would also suppress the keys' plain presses and break normal
// typing whenever the daemon runs.
var LaptopScanMap = ScanKeyMap{}

// LaptopBindings returns the pointer-action keys for laptop keyboards.
func LaptopBindings() Bindings {
	return Bindings{
		ToggleKeys:    [2]uint16{KeyLeftCtrl, KeyF12},
		ClickKey:      KeySpace,
		DragKey:       KeyD,
		FasterKey:     KeyEquals,
		SlowerKey:     KeyMinus,
		UpKey:         KeyUp,
		DownKey:       KeyDown,
		LeftKey:       KeyLeft,
		RightKey:      KeyRight,
		ScrollUpKey:   KeyW,
		ScrollDownKey: KeyS,
	}
}

// RegisterLaptopProfile registers the laptop profile with the provider.
func RegisterLaptopProfile(provider *Provider) {
	provider.Register(KBD_TYPE_LAPTOP, Profile{
		Table: LaptopScanMap,
		Keys:  LaptopBindings(),
	})
}

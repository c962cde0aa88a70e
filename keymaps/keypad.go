package keymaps

// KeypadScanMap is the scancode table reported by the mtk-kpd / matrix-keypad
// controllers. The same physical press arrives twice: once as a raw scan
// value listed here and once as the paired logical key.
var KeypadScanMap = ScanKeyMap{
	{35, KeyUp},
	{9, KeyDown},
	{19, KeyLeft},
	{34, KeyRight},
	{33, KeyMenu},
	{2, KeySend},
}

// KeypadBindings returns the pointer-action keys for flip-phone keypads.
func KeypadBindings() Bindings {
	return Bindings{
		ToggleKeys:    [2]uint16{KeyHelp, KeyF12}, // star key / diagnostics key
		ClickKey:      KeyEnter,
		DragKey:       KeyB, // right soft key
		FasterKey:     KeyVolumeUp,
		SlowerKey:     KeyVolumeDown,
		UpKey:         KeyUp,
		DownKey:       KeyDown,
		LeftKey:       KeyLeft,
		RightKey:      KeyRight,
		ScrollUpKey:   KeyMenu,
		ScrollDownKey: KeySend,
	}
}

// RegisterKeypadProfile registers the keypad profile with the provider.
func RegisterKeypadProfile(provider *Provider) {
	provider.Register(KBD_TYPE_KEYPAD, Profile{
		Table: KeypadScanMap,
		Keys:  KeypadBindings(),
	})
}

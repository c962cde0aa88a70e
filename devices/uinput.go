package devices

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"syscall"

	evdev "github.com/gvalkov/golang-evdev"
	"github.com/lunixbochs/struc"
)

// Ref: uinput.h
const (
	uinputMaxNameSize = 80
	absSize           = 64

	uiDevCreate  = 0x5501
	uiDevDestroy = 0x5502
	uiSetEvBit   = 0x40045564
	uiSetKeyBit  = 0x40045565
	uiSetRelBit  = 0x40045566
	uiSetMscBit  = 0x40045568

	busVirtual = 0x06
)

// InputID identifies a device on its bus (struct input_id).
type InputID struct {
	BusType uint16
	Vendor  uint16
	Product uint16
	Version uint16
}

// UinputUserDev mirrors struct uinput_user_dev, written to /dev/uinput
// before UI_DEV_CREATE.
type UinputUserDev struct {
	Name       [uinputMaxNameSize]byte
	ID         InputID
	EffectsMax uint32
	AbsMax     [absSize]int32
	AbsMin     [absSize]int32
	AbsFuzz    [absSize]int32
	AbsFlat    [absSize]int32
}

// InputEventRecord mirrors struct input_event for writes to uinput fds.
type InputEventRecord struct {
	Time  syscall.Timeval
	Type  uint16
	Code  uint16
	Value int32
}

func ioctl(fd uintptr, name uintptr, data uintptr) error {
	_, _, err := syscall.Syscall(syscall.SYS_IOCTL, fd, name, data)
	if err != 0 {
		return err
	}
	return nil
}

// Clone is a synthesized uinput device mirroring a captured physical device,
// used to re-emit pass-through events once the original has been grabbed.
type Clone struct {
	file *os.File
}

// NewClone registers a virtual device on /dev/uinput declaring the key,
// relative and miscellaneous capabilities reported by src.
func NewClone(src *evdev.InputDevice, name string) (*Clone, error) {
	file, err := os.OpenFile("/dev/uinput", syscall.O_WRONLY|syscall.O_NONBLOCK, 0660)
	if err != nil {
		return nil, fmt.Errorf("failed to open /dev/uinput: %w", err)
	}

	if err := enableCapabilities(file, src); err != nil {
		_ = file.Close()
		return nil, err
	}

	userDev := UinputUserDev{
		ID: InputID{
			BusType: busVirtual,
			Vendor:  src.Vendor,
			Product: src.Product,
			Version: src.Version,
		},
	}
	copy(userDev.Name[:], name)

	var buf bytes.Buffer
	if err := struc.PackWithOptions(&buf, &userDev, &struc.Options{Order: binary.LittleEndian}); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to pack uinput user device: %w", err)
	}
	if _, err := file.Write(buf.Bytes()); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to write uinput user device: %w", err)
	}

	if err := ioctl(file.Fd(), uiDevCreate, 0); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to create uinput device: %w", err)
	}

	return &Clone{file: file}, nil
}

// enableCapabilities replays the source device's declared event codes onto
// the uinput fd. Only the classes a keypad reports are mirrored.
func enableCapabilities(file *os.File, src *evdev.InputDevice) error {
	setBit := map[int]uintptr{
		evdev.EV_KEY: uiSetKeyBit,
		evdev.EV_REL: uiSetRelBit,
		evdev.EV_MSC: uiSetMscBit,
	}

	for capType, codes := range src.Capabilities {
		bitRequest, ok := setBit[capType.Type]
		if !ok {
			continue
		}
		if err := ioctl(file.Fd(), uiSetEvBit, uintptr(capType.Type)); err != nil {
			return fmt.Errorf("failed to enable event type %d: %w", capType.Type, err)
		}
		for _, code := range codes {
			if err := ioctl(file.Fd(), bitRequest, uintptr(code.Code)); err != nil {
				return fmt.Errorf("failed to enable code %d for type %d: %w", code.Code, capType.Type, err)
			}
		}
	}
	return nil
}

// WriteEvent writes the event followed by a SYN_REPORT marker so the kernel
// flushes a coherent packet.
func (c *Clone) WriteEvent(ev Event) error {
	if err := c.writeRecord(ev.Type, ev.Code, ev.Value); err != nil {
		return err
	}
	return c.writeRecord(evdev.EV_SYN, evdev.SYN_REPORT, 0)
}

func (c *Clone) writeRecord(evType, code uint16, value int32) error {
	record := InputEventRecord{
		Time:  syscall.Timeval{Sec: 0, Usec: 0},
		Type:  evType,
		Code:  code,
		Value: value,
	}
	var buf bytes.Buffer
	if err := struc.PackWithOptions(&buf, &record, &struc.Options{Order: binary.LittleEndian}); err != nil {
		return err
	}
	_, err := c.file.Write(buf.Bytes())
	return err
}

// Close destroys the virtual device and releases its fd.
func (c *Clone) Close() error {
	if c.file == nil {
		return nil
	}
	_ = ioctl(c.file.Fd(), uiDevDestroy, 0)
	err := c.file.Close()
	c.file = nil
	return err
}

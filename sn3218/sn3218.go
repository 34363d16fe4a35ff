// Package sn3218 implements the SN3218 register protocol.
//
// The SN3218 is an 18-channel LED sink driver on a two-wire bus. Every
// transaction is a register-style write: one command byte followed by its
// payload. Staged values only become visible after an update command.
package sn3218

import (
	"fmt"

	"github.com/pkg/errors"
)

// I2CAddr is the fixed 7-bit bus address of the SN3218.
const I2CAddr = 0x54

// NumLEDs is the number of output channels.
const NumLEDs = 18

// Command is a register command byte.
type Command uint8

const (
	// CmdEnableOutput powers on the output stage. Payload: one byte, 1.
	CmdEnableOutput Command = 0x00
	// CmdSetPWM sets the per-channel power values. Payload: 18 bytes in
	// wire order.
	CmdSetPWM Command = 0x01
	// CmdEnableLEDs sets the channel enable mask. Payload: 3 bytes, 6 bits
	// per byte, MSB-first within each group.
	CmdEnableLEDs Command = 0x13
	// CmdUpdate latches previously staged values onto the outputs.
	// Payload: one byte, 0xFF.
	CmdUpdate Command = 0x16
)

// String returns a string representation of the command.
func (c Command) String() string {
	switch c {
	case CmdEnableOutput:
		return "enable-output"
	case CmdSetPWM:
		return "set-pwm"
	case CmdEnableLEDs:
		return "enable-leds"
	case CmdUpdate:
		return "update"
	default:
		return fmt.Sprintf("Command(0x%02X)", uint8(c))
	}
}

var (
	// ErrBadLength is returned when a list or buffer has the wrong number
	// of elements for its encoding.
	ErrBadLength = errors.New("wrong number of elements")
	// ErrBadValue is returned when an element is outside its encodable
	// range.
	ErrBadValue = errors.New("value out of range")
)

// Mask is the packed 3-byte channel enable mask.
type Mask [3]byte

// maskBits is the number of enable flags packed into each mask byte.
const maskBits = 6

// MaskBits packs exactly NumLEDs booleans into a Mask, 6 per byte,
// most-significant-bit-first within each byte.
func MaskBits(bits []bool) (Mask, error) {
	var m Mask
	if len(bits) != NumLEDs {
		return m, errors.Wrapf(ErrBadLength, "enable mask needs %d booleans, got %d", NumLEDs, len(bits))
	}
	for i, on := range bits {
		if on {
			m[i/maskBits] |= 1 << (maskBits - 1 - i%maskBits)
		}
	}
	return m, nil
}

// MaskBytes passes a pre-packed 3-byte buffer through as a Mask.
func MaskBytes(b []byte) (Mask, error) {
	var m Mask
	if len(b) != len(m) {
		return m, errors.Wrapf(ErrBadLength, "enable mask needs %d bytes, got %d", len(m), len(b))
	}
	copy(m[:], b)
	return m, nil
}

// Bits unpacks the mask back into NumLEDs booleans in wire order.
func (m Mask) Bits() [NumLEDs]bool {
	var bits [NumLEDs]bool
	for i := range bits {
		bits[i] = m[i/maskBits]&(1<<(maskBits-1-i%maskBits)) != 0
	}
	return bits
}

// Frame encodes the mask as a complete enable-leds transaction.
func (m Mask) Frame() []byte {
	return []byte{byte(CmdEnableLEDs), m[0], m[1], m[2]}
}

// Powers is the per-channel power vector, one byte per LED in wire order.
type Powers [NumLEDs]byte

// PowerBytes passes a raw 18-byte buffer through as a power vector.
func PowerBytes(b []byte) (Powers, error) {
	var p Powers
	if len(b) != NumLEDs {
		return p, errors.Wrapf(ErrBadLength, "power vector needs %d bytes, got %d", NumLEDs, len(b))
	}
	copy(p[:], b)
	return p, nil
}

// PowerLevels packs exactly NumLEDs integers, each 0..255, into a power
// vector.
func PowerLevels(levels []int) (Powers, error) {
	var p Powers
	if len(levels) != NumLEDs {
		return p, errors.Wrapf(ErrBadLength, "power vector needs %d levels, got %d", NumLEDs, len(levels))
	}
	for i, v := range levels {
		if v < 0 || v > 255 {
			return Powers{}, errors.Wrapf(ErrBadValue, "power level %d is %d", i, v)
		}
		p[i] = byte(v)
	}
	return p, nil
}

// Levels unpacks the power vector into ints for symmetry with PowerLevels.
func (p Powers) Levels() [NumLEDs]int {
	var levels [NumLEDs]int
	for i, v := range p {
		levels[i] = int(v)
	}
	return levels
}

// Frame encodes the vector as a complete set-pwm transaction.
func (p Powers) Frame() []byte {
	return append([]byte{byte(CmdSetPWM)}, p[:]...)
}

// State is one LED's (enabled, power) pair for combined updates.
type State struct {
	Enabled bool
	Power   byte
}

// States unzips exactly NumLEDs (enabled, power) pairs into their separate
// mask and power encodings.
func States(states []State) (Mask, Powers, error) {
	if len(states) != NumLEDs {
		return Mask{}, Powers{}, errors.Wrapf(ErrBadLength, "combined state needs %d pairs, got %d", NumLEDs, len(states))
	}
	bits := make([]bool, NumLEDs)
	var p Powers
	for i, s := range states {
		bits[i] = s.Enabled
		p[i] = s.Power
	}
	m, err := MaskBits(bits)
	if err != nil {
		return Mask{}, Powers{}, err
	}
	return m, p, nil
}

// EnableOutputFrame encodes the transaction that powers on the output
// stage.
func EnableOutputFrame() []byte {
	return []byte{byte(CmdEnableOutput), 0x01}
}

// UpdateFrame encodes the transaction that latches staged values onto the
// physical LEDs.
func UpdateFrame() []byte {
	return []byte{byte(CmdUpdate), 0xFF}
}

// ParseFrame decodes a raw transaction back into its command and payload,
// validating the payload length. The payload aliases the input.
func ParseFrame(b []byte) (Command, []byte, error) {
	if len(b) == 0 {
		return 0, nil, errors.Wrap(ErrBadLength, "empty frame")
	}
	cmd := Command(b[0])
	payload := b[1:]

	var want int
	switch cmd {
	case CmdEnableOutput, CmdUpdate:
		want = 1
	case CmdSetPWM:
		want = NumLEDs
	case CmdEnableLEDs:
		want = 3
	default:
		return 0, nil, errors.Wrapf(ErrBadValue, "unknown command 0x%02X", b[0])
	}
	if len(payload) != want {
		return 0, nil, errors.Wrapf(ErrBadLength, "%s payload needs %d bytes, got %d", cmd, want, len(payload))
	}
	return cmd, payload, nil
}

package sn3218

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaskBitsPacking(t *testing.T) {
	bits := []bool{
		true, false, true, false, true, false,
		true, true, true, true, true, true,
		false, true, true, false, false, true,
	}
	m, err := MaskBits(bits)
	require.NoError(t, err)
	assert.Equal(t, Mask{0b101010, 0b111111, 0b011001}, m)
}

func TestMaskRoundTrip(t *testing.T) {
	// A representative walk through the 2^18 combinations.
	for v := 0; v < 1<<NumLEDs; v += 4099 {
		bits := make([]bool, NumLEDs)
		for i := range bits {
			bits[i] = v&(1<<i) != 0
		}
		m, err := MaskBits(bits)
		require.NoError(t, err)

		got := m.Bits()
		assert.Equal(t, bits, got[:], "pattern %018b", v)
	}
}

func TestMaskLengthMismatch(t *testing.T) {
	_, err := MaskBits(make([]bool, 17))
	assert.ErrorIs(t, err, ErrBadLength)

	_, err = MaskBits(make([]bool, 19))
	assert.ErrorIs(t, err, ErrBadLength)

	_, err = MaskBytes([]byte{0x3F, 0x3F})
	assert.ErrorIs(t, err, ErrBadLength)

	m, err := MaskBytes([]byte{0x3F, 0x00, 0x15})
	require.NoError(t, err)
	assert.Equal(t, Mask{0x3F, 0x00, 0x15}, m)
}

func TestPowerLevels(t *testing.T) {
	levels := make([]int, NumLEDs)
	for i := range levels {
		levels[i] = i * 14
	}
	p, err := PowerLevels(levels)
	require.NoError(t, err)
	assert.Equal(t, levels, func() []int { l := p.Levels(); return l[:] }())

	_, err = PowerLevels(make([]int, 17))
	assert.ErrorIs(t, err, ErrBadLength)

	levels[3] = 256
	_, err = PowerLevels(levels)
	assert.ErrorIs(t, err, ErrBadValue)

	levels[3] = -1
	_, err = PowerLevels(levels)
	assert.ErrorIs(t, err, ErrBadValue)
}

func TestPowerBytes(t *testing.T) {
	_, err := PowerBytes(make([]byte, 3))
	assert.ErrorIs(t, err, ErrBadLength)

	raw := make([]byte, NumLEDs)
	raw[0], raw[17] = 0xFF, 0x7F
	p, err := PowerBytes(raw)
	require.NoError(t, err)
	assert.Equal(t, raw, p[:])
}

func TestStates(t *testing.T) {
	states := make([]State, NumLEDs)
	for i := range states {
		states[i] = State{Enabled: i%2 == 0, Power: byte(10 * i)}
	}
	m, p, err := States(states)
	require.NoError(t, err)

	bits := m.Bits()
	for i, s := range states {
		assert.Equal(t, s.Enabled, bits[i], "bit %d", i)
		assert.Equal(t, s.Power, p[i], "power %d", i)
	}

	_, _, err = States(states[:17])
	assert.ErrorIs(t, err, ErrBadLength)
}

func TestFrames(t *testing.T) {
	assert.Equal(t, []byte{0x00, 0x01}, EnableOutputFrame())
	assert.Equal(t, []byte{0x16, 0xFF}, UpdateFrame())
	assert.Equal(t, []byte{0x13, 0x3F, 0x3F, 0x3F}, Mask{0x3F, 0x3F, 0x3F}.Frame())

	var p Powers
	p[0], p[17] = 1, 18
	frame := p.Frame()
	require.Len(t, frame, 1+NumLEDs)
	assert.Equal(t, byte(0x01), frame[0])
	assert.Equal(t, p[:], frame[1:])
}

func TestParseFrame(t *testing.T) {
	for _, frame := range [][]byte{
		EnableOutputFrame(),
		UpdateFrame(),
		Mask{1, 2, 3}.Frame(),
		Powers{}.Frame(),
	} {
		cmd, payload, err := ParseFrame(frame)
		require.NoError(t, err)
		assert.Equal(t, Command(frame[0]), cmd)
		assert.Equal(t, frame[1:], payload)
	}

	_, _, err := ParseFrame(nil)
	assert.ErrorIs(t, err, ErrBadLength)

	_, _, err = ParseFrame([]byte{0x42, 0x01})
	assert.ErrorIs(t, err, ErrBadValue)

	_, _, err = ParseFrame([]byte{byte(CmdSetPWM), 1, 2, 3})
	assert.ErrorIs(t, err, ErrBadLength)
}

func TestCommandString(t *testing.T) {
	assert.Equal(t, "enable-leds", CmdEnableLEDs.String())
	assert.Equal(t, "Command(0x42)", Command(0x42).String())
}

func TestErrorsKeepCause(t *testing.T) {
	_, err := MaskBits(nil)
	assert.Equal(t, ErrBadLength, errors.Cause(err))
}

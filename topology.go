package piglow

import "libpi.so/piglow/sn3218"

// Color is the fixed color of an LED, determined by its ring.
type Color uint8

const (
	White Color = iota + 1
	Blue
	Green
	Yellow
	Orange
	Red
)

func (c Color) String() string {
	switch c {
	case White:
		return "white"
	case Blue:
		return "blue"
	case Green:
		return "green"
	case Yellow:
		return "yellow"
	case Orange:
		return "orange"
	case Red:
		return "red"
	default:
		return "unknown"
	}
}

// LED is one fixed entry in the board topology.
type LED struct {
	// Index is the bus register position, 1..18. Ascending index is the
	// wire order of every packed buffer.
	Index int
	// Arm is the spiral arm the LED sits on, 1..3.
	Arm int
	// Ring is the distance from the center, 1 (innermost) to 6
	// (outermost). The color follows the ring.
	Ring int
	// Color is derived 1:1 from Ring.
	Color Color
}

// The board routes the three arms to the driver's channels in an
// interleaved order; this table is the physical mapping, sorted by Index.
var topology = [sn3218.NumLEDs]LED{
	{Index: 1, Arm: 3, Ring: 6},
	{Index: 2, Arm: 3, Ring: 5},
	{Index: 3, Arm: 3, Ring: 4},
	{Index: 4, Arm: 3, Ring: 3},
	{Index: 5, Arm: 1, Ring: 2},
	{Index: 6, Arm: 1, Ring: 3},
	{Index: 7, Arm: 1, Ring: 6},
	{Index: 8, Arm: 1, Ring: 5},
	{Index: 9, Arm: 1, Ring: 4},
	{Index: 10, Arm: 1, Ring: 1},
	{Index: 11, Arm: 2, Ring: 1},
	{Index: 12, Arm: 2, Ring: 2},
	{Index: 13, Arm: 3, Ring: 1},
	{Index: 14, Arm: 2, Ring: 3},
	{Index: 15, Arm: 3, Ring: 2},
	{Index: 16, Arm: 2, Ring: 4},
	{Index: 17, Arm: 2, Ring: 5},
	{Index: 18, Arm: 2, Ring: 6},
}

func init() {
	for i := range topology {
		topology[i].Color = Color(topology[i].Ring)
	}
}

// LEDs returns the fixed 18-LED topology in wire order. The returned slice
// is a copy and may be modified freely.
func LEDs() []LED {
	leds := make([]LED, len(topology))
	copy(leds, topology[:])
	return leds
}

// MapEnable applies fn to every LED in wire order and packs the results
// into an enable mask. A projection error is returned unchanged.
func MapEnable(fn func(LED) (bool, error)) (sn3218.Mask, error) {
	bits := make([]bool, len(topology))
	for i, led := range topology {
		on, err := fn(led)
		if err != nil {
			return sn3218.Mask{}, err
		}
		bits[i] = on
	}
	return sn3218.MaskBits(bits)
}

// MapPower applies fn to every LED in wire order and packs the results
// into a power vector. A projection error is returned unchanged.
func MapPower(fn func(LED) (byte, error)) (sn3218.Powers, error) {
	var p sn3218.Powers
	for i, led := range topology {
		v, err := fn(led)
		if err != nil {
			return sn3218.Powers{}, err
		}
		p[i] = v
	}
	return p, nil
}

// MapState applies fn to every LED in wire order and packs the results
// into a combined enable mask and power vector. A projection error is
// returned unchanged.
func MapState(fn func(LED) (sn3218.State, error)) (sn3218.Mask, sn3218.Powers, error) {
	states := make([]sn3218.State, len(topology))
	for i, led := range topology {
		s, err := fn(led)
		if err != nil {
			return sn3218.Mask{}, sn3218.Powers{}, err
		}
		states[i] = s
	}
	return sn3218.States(states)
}

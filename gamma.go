package piglow

import (
	"math"

	"github.com/pkg/errors"
)

// Gamma maps a raw brightness 0..255 to a bus-level power byte on an
// exponential curve, so equal input steps read as equal perceived steps.
// The endpoints are exact: Gamma(0) = 0 and Gamma(255) = 255.
func Gamma(v int) (byte, error) {
	switch {
	case v < 0 || v > 255:
		return 0, errors.Errorf("brightness %d outside 0..255", v)
	case v == 0:
		return 0, nil
	case v == 255:
		return 255, nil
	}
	return byte(math.Round(math.Pow(255, float64(v)/255))), nil
}

// GammaFloat is Gamma over a normalized brightness fraction 0.0..1.0.
func GammaFloat(f float64) (byte, error) {
	switch {
	case f < 0 || f > 1 || math.IsNaN(f):
		return 0, errors.Errorf("brightness %v outside 0.0..1.0", f)
	case f == 0:
		return 0, nil
	case f == 1:
		return 255, nil
	}
	return byte(math.Round(math.Pow(255, f))), nil
}

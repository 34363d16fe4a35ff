package piglow

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGammaEndpoints(t *testing.T) {
	v, err := Gamma(0)
	require.NoError(t, err)
	assert.Equal(t, byte(0), v)

	v, err = Gamma(255)
	require.NoError(t, err)
	assert.Equal(t, byte(255), v)

	v, err = GammaFloat(0.0)
	require.NoError(t, err)
	assert.Equal(t, byte(0), v)

	v, err = GammaFloat(1.0)
	require.NoError(t, err)
	assert.Equal(t, byte(255), v)
}

func TestGammaMonotonic(t *testing.T) {
	var prev byte
	for v := 0; v <= 255; v++ {
		got, err := Gamma(v)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, got, prev, "Gamma(%d)", v)
		prev = got
	}
}

func TestGammaCurveShape(t *testing.T) {
	// Everything but zero maps to at least 1, and the curve stays
	// exponential: 255^f.
	v, err := Gamma(1)
	require.NoError(t, err)
	assert.Equal(t, byte(1), v)

	v, err = Gamma(128)
	require.NoError(t, err)
	assert.Equal(t, byte(math.Round(math.Pow(255, 128.0/255))), v)
}

func TestGammaFloatMatchesInt(t *testing.T) {
	var prev byte
	for i := 0; i <= 1000; i++ {
		f := float64(i) / 1000

		got, err := GammaFloat(f)
		require.NoError(t, err)

		want, err := Gamma(int(math.Round(f * 255)))
		require.NoError(t, err)

		assert.InDelta(t, want, got, 1, "GammaFloat(%v)", f)
		assert.GreaterOrEqual(t, got, prev, "GammaFloat(%v)", f)
		prev = got
	}
}

func TestGammaRejectsOutOfRange(t *testing.T) {
	for _, v := range []int{-1, 256, 1000} {
		_, err := Gamma(v)
		assert.Error(t, err, "Gamma(%d)", v)
	}
	for _, f := range []float64{-0.01, 1.01, math.NaN()} {
		_, err := GammaFloat(f)
		assert.Error(t, err, "GammaFloat(%v)", f)
	}
}

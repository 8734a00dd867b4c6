package util

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRayFromFloat_And_RayToFloat_RoundTrip(t *testing.T) {
	cases := []float64{0, 1, 1.25, 0.0001, 123.456789}
	for _, f := range cases {
		ray := RayFromFloat(f)
		got := RayToFloat(ray)
		assert.InDelta(t, f, got, 1e-8, "round trip through Ray should be lossless to 9 decimal digits")
	}
}

func TestMulRay(t *testing.T) {
	cases := []struct {
		name string
		a, b float64
		want float64
	}{
		{"identity", 1.0, 1.0, 1.0},
		{"half_of_half", 0.5, 0.5, 0.25},
		{"scale_up", 2.0, 1.5, 3.0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := MulRay(RayFromFloat(c.a), RayFromFloat(c.b))
			assert.InDelta(t, c.want, RayToFloat(got), 1e-6)
		})
	}
}

func TestDivRay(t *testing.T) {
	got := DivRay(RayFromFloat(1.0), RayFromFloat(4.0))
	assert.InDelta(t, 0.25, RayToFloat(got), 1e-6)
}

func TestBpsOf(t *testing.T) {
	assert.Equal(t, big.NewInt(2000), BpsOf(big.NewInt(10_000), 2000))
	assert.Equal(t, big.NewInt(0), BpsOf(big.NewInt(10_000), 0))
}

func TestMin(t *testing.T) {
	a := big.NewInt(5)
	b := big.NewInt(9)
	assert.Equal(t, big.NewInt(5), Min(a, b))
	assert.Equal(t, big.NewInt(5), Min(b, a))

	// Min must not mutate either operand.
	assert.Equal(t, big.NewInt(5), a)
	assert.Equal(t, big.NewInt(9), b)
}

func TestDivDown(t *testing.T) {
	assert.Equal(t, big.NewInt(3), DivDown(big.NewInt(10), big.NewInt(3)))
}

package kernels

import (
	"image/color"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGradientColorMatchesFormula(t *testing.T) {
	const w, h = 800, 600
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			want := color.RGBA{
				R: uint8(x * 255 / 800),
				G: uint8(y * 255 / 600),
				B: uint8((x + y) * 255 / 1400),
				A: 255,
			}
			if got := GradientColor(x, y, w, h); got != want {
				t.Fatalf("pixel (%d,%d): got %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestGradientColorCorners(t *testing.T) {
	assert.Equal(t, color.RGBA{0, 0, 0, 255}, GradientColor(0, 0, 800, 600))
	assert.Equal(t, color.RGBA{254, 254, 254, 255}, GradientColor(799, 599, 800, 600))
}

func TestRandomColorIsDeterministicPerSeed(t *testing.T) {
	for _, p := range [][2]int{{0, 0}, {17, 3}, {799, 599}} {
		a := RandomColor(42, p[0], p[1])
		b := RandomColor(42, p[0], p[1])
		assert.Equal(t, a, b)
		assert.Equal(t, uint8(255), a.A)
	}
	assert.NotEqual(t, RandomColor(1, 10, 10), RandomColor(2, 10, 10))
	assert.NotEqual(t, RandomColor(1, 10, 10), RandomColor(1, 11, 10))
}

func TestLookup(t *testing.T) {
	v, err := Lookup("random")
	require.NoError(t, err)
	assert.Equal(t, "generateRandomColors", v.Entry)
	assert.True(t, v.Seeded)
	assert.True(t, strings.Contains(v.Source, "__kernel void generateRandomColors"))

	_, err = Lookup("plasma")
	assert.Error(t, err)
	assert.Equal(t, []string{"buffer", "gradient", "random"}, Names())
}

// Package kernels holds the color-generation kernels shipped with the
// binary together with Go reference implementations of their color policy.
package kernels

import (
	_ "embed"
	"fmt"
	"image/color"
	"sort"

	"github.com/spaghettifunk/prism/engine/math"
)

//go:embed cl/gradient.cl
var gradientSource string

//go:embed cl/random.cl
var randomSource string

//go:embed cl/buffer.cl
var bufferSource string

// Target is where a kernel writes its pixels.
type Target uint8

const (
	// The kernel writes straight into the registered texture image.
	TargetImage Target = iota
	// The kernel writes RGBA bytes into a global buffer that the host uploads.
	TargetBuffer
)

type Variant struct {
	Name   string
	Entry  string
	Source string
	Target Target
	// Seeded variants take a uint seed as their second argument.
	Seeded bool
}

var (
	Gradient = Variant{
		Name:   "gradient",
		Entry:  "generateColors",
		Source: gradientSource,
		Target: TargetImage,
	}
	Random = Variant{
		Name:   "random",
		Entry:  "generateRandomColors",
		Source: randomSource,
		Target: TargetImage,
		Seeded: true,
	}
	Buffer = Variant{
		Name:   "buffer",
		Entry:  "generateColorsBuffer",
		Source: bufferSource,
		Target: TargetBuffer,
	}
)

var variants = map[string]Variant{
	Gradient.Name: Gradient,
	Random.Name:   Random,
	Buffer.Name:   Buffer,
}

func Lookup(name string) (Variant, error) {
	v, ok := variants[name]
	if !ok {
		return Variant{}, fmt.Errorf("unknown kernel variant %q (known: %v)", name, Names())
	}
	return v, nil
}

func Names() []string {
	names := make([]string, 0, len(variants))
	for n := range variants {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// GradientColor is the color the gradient kernels produce for pixel (x, y)
// of a width x height grid.
func GradientColor(x, y, width, height int) color.RGBA {
	return color.RGBA{
		R: math.ScaleChannel(x, width),
		G: math.ScaleChannel(y, height),
		B: math.ScaleChannel(x+y, width+height),
		A: 255,
	}
}

// Hash is the per-work-item integer hash of the random kernel. Every
// work-item seeds from its own coordinate, so results do not depend on
// scheduling order.
func Hash(seed, x, y uint32) uint32 {
	h := seed ^ (x * 0x9E3779B1) ^ (y * 0x85EBCA77)
	h ^= h >> 16
	h *= 0x7FEB352D
	h ^= h >> 15
	h *= 0x846CA68B
	h ^= h >> 16
	return h
}

func RandomColor(seed uint32, x, y int) color.RGBA {
	h := Hash(seed, uint32(x), uint32(y))
	return color.RGBA{
		R: uint8(h),
		G: uint8(h >> 8),
		B: uint8(h >> 16),
		A: 255,
	}
}

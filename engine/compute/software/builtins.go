package software

import (
	"fmt"

	"github.com/spaghettifunk/prism/engine/compute"
	"github.com/spaghettifunk/prism/engine/kernels"
)

// WorkFunc computes the work-item at global id (x, y). Arguments have been
// checked against Params before the first call.
type WorkFunc func(x, y int, args []compute.Arg)

// Builtin is the Go body of a kernel entry point.
type Builtin struct {
	Params []compute.ArgKind
	Run    WorkFunc
}

var (
	registry = map[string]Builtin{
		kernels.Gradient.Entry: {
			Params: []compute.ArgKind{compute.ArgImage},
			Run:    runGradient,
		},
		kernels.Random.Entry: {
			Params: []compute.ArgKind{compute.ArgImage, compute.ArgScalar},
			Run:    runRandom,
		},
		kernels.Buffer.Entry: {
			Params: []compute.ArgKind{compute.ArgBuffer, compute.ArgScalar, compute.ArgScalar},
			Run:    runBuffer,
		},
	}
)

func lookupBuiltin(entry string) (Builtin, bool) {
	b, ok := registry[entry]
	return b, ok
}

func (b Builtin) matches(params []compute.Param) error {
	if len(params) != len(b.Params) {
		return fmt.Errorf("declared with %d parameter(s), implementation takes %d", len(params), len(b.Params))
	}
	for i, p := range params {
		if p.Kind != b.Params[i] {
			return fmt.Errorf("parameter %d (%s) is a %s, implementation expects a %s", i, p.Name, p.Kind, b.Params[i])
		}
	}
	return nil
}

func runGradient(x, y int, args []compute.Arg) {
	img := args[0].Image.(*Image)
	w, h := int(img.width), int(img.height)
	if x >= w || y >= h {
		return
	}
	img.pixels.SetRGBA(x, y, kernels.GradientColor(x, y, w, h))
}

func runRandom(x, y int, args []compute.Arg) {
	img := args[0].Image.(*Image)
	if x >= int(img.width) || y >= int(img.height) {
		return
	}
	seed, _ := args[1].Uint32()
	img.pixels.SetRGBA(x, y, kernels.RandomColor(seed, x, y))
}

func runBuffer(x, y int, args []compute.Arg) {
	buf := args[0].Buffer.(*Buffer)
	width, _ := args[1].Uint32()
	height, _ := args[2].Uint32()
	if uint32(x) >= width || uint32(y) >= height {
		return
	}
	off := (y*int(width) + x) * 4
	if off+4 > len(buf.data) {
		return
	}
	c := kernels.GradientColor(x, y, int(width), int(height))
	buf.data[off] = c.R
	buf.data[off+1] = c.G
	buf.data[off+2] = c.B
	buf.data[off+3] = c.A
}

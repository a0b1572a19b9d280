package engine

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/spaghettifunk/prism/engine/core"
)

type encodeFunc func(w io.Writer, img image.Image) error

var snapshotEncoders = map[string]encodeFunc{
	".png":  png.Encode,
	".bmp":  bmp.Encode,
	".tif":  encodeTIFF,
	".tiff": encodeTIFF,
}

func encodeTIFF(w io.Writer, img image.Image) error {
	return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
}

// WriteSnapshot encodes img into path, choosing the format by extension.
// The image is flipped so the file shows what the window shows.
func WriteSnapshot(path string, img *image.RGBA) (err error) {
	encode, ok := snapshotEncoders[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return fmt.Errorf("unsupported snapshot format %q", filepath.Ext(path))
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	if err := encode(f, flipRows(img)); err != nil {
		return fmt.Errorf("encode snapshot %s: %w", path, err)
	}
	core.LogInfo("snapshot written to %s", path)
	return nil
}

// flipRows turns texture order (row 0 at the bottom) into image order.
func flipRows(src *image.RGBA) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(b)
	rows := b.Dy()
	for y := 0; y < rows; y++ {
		copy(dst.Pix[y*dst.Stride:(y+1)*dst.Stride], src.Pix[(rows-1-y)*src.Stride:(rows-y)*src.Stride])
	}
	return dst
}

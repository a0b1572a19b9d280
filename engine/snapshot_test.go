package engine

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

func TestWriteSnapshotFormats(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 2))
	src.SetRGBA(0, 0, color.RGBA{255, 0, 0, 255})
	src.SetRGBA(3, 1, color.RGBA{0, 0, 255, 255})

	decoders := map[string]func(*os.File) (image.Image, error){
		"snap.bmp":  func(f *os.File) (image.Image, error) { return bmp.Decode(f) },
		"snap.tif":  func(f *os.File) (image.Image, error) { return tiff.Decode(f) },
		"snap.TIFF": func(f *os.File) (image.Image, error) { return tiff.Decode(f) },
	}
	for name, decode := range decoders {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, WriteSnapshot(path, src))

			f, err := os.Open(path)
			require.NoError(t, err)
			defer f.Close()
			img, err := decode(f)
			require.NoError(t, err)

			assert.Equal(t, image.Rect(0, 0, 4, 2), img.Bounds())
			assert.Equal(t, color.RGBA{255, 0, 0, 255}, color.RGBAModel.Convert(img.At(0, 1)))
			assert.Equal(t, color.RGBA{0, 0, 255, 255}, color.RGBAModel.Convert(img.At(3, 0)))
		})
	}
}

func TestWriteSnapshotUnknownFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snap.jpg")
	assert.Error(t, WriteSnapshot(path, image.NewRGBA(image.Rect(0, 0, 1, 1))))
	_, err := os.Stat(path)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

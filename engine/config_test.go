package engine

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, uint32(800), cfg.Window.Width)
	assert.Equal(t, uint32(600), cfg.Window.Height)
	assert.Equal(t, "OpenGL-OpenCL Interoperability", cfg.Window.Title)
	assert.Equal(t, "gradient", cfg.Kernel.Variant)
	assert.Equal(t, "triangle", cfg.Render.Geometry)
	assert.Equal(t, InteropAuto, cfg.Compute.Interop)
	assert.Equal(t, color.RGBA{0, 0, 0, 255}, cfg.Render.Clear())
}

func TestLoadConfigOverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
snapshot = "out.bmp"

[window]
title = "prism"
width = 320

[render]
backend = "software"
geometry = "quad"
clear_color = [10, 20, 30, 255]

[compute]
interop = "off"
workers = 2

[kernel]
variant = "random"
seed = 42
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "prism", cfg.Window.Title)
	assert.Equal(t, uint32(320), cfg.Window.Width)
	assert.Equal(t, uint32(600), cfg.Window.Height, "untouched keys keep their default")
	assert.Equal(t, "quad", cfg.Render.Geometry)
	assert.Equal(t, color.RGBA{10, 20, 30, 255}, cfg.Render.Clear())
	assert.Equal(t, InteropOff, cfg.Compute.Interop)
	assert.Equal(t, 2, cfg.Compute.Workers)
	assert.Equal(t, "random", cfg.Kernel.Variant)
	assert.Equal(t, uint32(42), cfg.Kernel.Seed)
	assert.Equal(t, "out.bmp", cfg.Snapshot)
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, `
[window]
fullscreen = true
`)
	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fullscreen")
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidateReportsEveryProblem(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Window.Width = 0
	cfg.Render.Backend = "vulkan"
	cfg.Compute.Interop = "sometimes"
	cfg.Kernel.Variant = "plasma"
	cfg.Kernel.Watch = true
	cfg.Snapshot = "out.jpg"

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"window size", "vulkan", "sometimes", "plasma", "kernel watch", ".jpg"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestValidateCapsWindowSize(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Window.Width = MaxTextureSize
	cfg.Window.Height = MaxTextureSize
	require.NoError(t, cfg.Validate())

	cfg.Window.Width = 1 << 20
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "texture limit")
}

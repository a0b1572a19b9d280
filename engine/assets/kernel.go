// Package assets loads kernel sources from disk and watches them for
// changes.
package assets

import (
	"fmt"
	"io"
	"os"
	"time"
)

type KernelSource struct {
	Path       string
	Source     string
	LastLoaded time.Time
}

func LoadKernelSource(path string) (*KernelSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	if len(buf) == 0 {
		return nil, fmt.Errorf("kernel source %s is empty", path)
	}
	return &KernelSource{
		Path:       path,
		Source:     string(buf),
		LastLoaded: time.Now(),
	}, nil
}

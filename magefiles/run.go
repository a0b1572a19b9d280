//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Runs the OpenGL/OpenCL build with config.toml.
func (Run) Engine() error {
	fmt.Println("Run engine...")
	if _, err := executeCmd("go", withArgs("run", "-tags", "opencl", ".", "-config", "config.toml"), withStream()); err != nil {
		return err
	}
	return nil
}

// Renders a few frames offscreen and writes the texture to texture.png.
func (Run) Snapshot() error {
	mg.Deps(Build.Software)
	_, err := executeCmd("bin/prism-software", withArgs("-config", "magefiles/snapshot.toml"), withStream())
	return err
}

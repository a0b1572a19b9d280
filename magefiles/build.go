//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Builds the binary with the OpenCL binding. Needs the OpenCL headers and ICD loader.
func (Build) Engine() error {
	_, err := executeCmd("go", withArgs("build", "-tags", "opencl", "-o", "bin/prism", "."), withStream())
	return err
}

// Builds the binary without OpenCL; compute runs on the software device.
func (Build) Software() error {
	_, err := executeCmd("go", withArgs("build", "-o", "bin/prism-software", "."), withStream())
	return err
}

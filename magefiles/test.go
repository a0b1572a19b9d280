//go:build mage

package main

// Runs the test suite; no GPU is needed.
func Test() error {
	_, err := executeCmd("go", withArgs("test", "-race", "./..."), withStream())
	return err
}

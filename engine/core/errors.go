package core

import (
	"errors"
	"fmt"
	"strings"
)

// Setup failures. All of them are fatal: nothing in the pipeline retries.
var (
	ErrPlatformEnumeration = errors.New("platform enumeration failed")
	ErrContextCreation     = errors.New("context creation failed")
	ErrCompile             = errors.New("kernel compilation failed")
	ErrTextureRegistration = errors.New("texture registration failed")
	ErrDispatch            = errors.New("kernel dispatch failed")

	ErrInteropUnsupported = errors.New("rasterizer/compute interop unsupported")
	ErrBackendUnavailable = errors.New("backend unavailable")
	ErrRasterizer         = errors.New("rasterizer error")
)

// CompileError carries the compiler diagnostic of a failed kernel build.
type CompileError struct {
	Entry  string
	Device string
	Log    string
	Err    error
}

func (e *CompileError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: entry %q on %q", ErrCompile, e.Entry, e.Device)
	if e.Err != nil {
		fmt.Fprintf(&b, ": %s", e.Err)
	}
	if log := strings.TrimSpace(e.Log); log != "" {
		fmt.Fprintf(&b, "\n%s", log)
	}
	return b.String()
}

func (e *CompileError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrCompile}
	}
	return []error{ErrCompile, e.Err}
}

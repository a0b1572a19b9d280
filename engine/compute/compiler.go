package compute

import (
	"errors"
	"fmt"

	"github.com/spaghettifunk/prism/engine/core"
)

// CompiledKernel is an entry point ready for argument binding. It owns the
// program it was built from.
type CompiledKernel struct {
	ID     core.Identifier
	Entry  string
	Params []Param

	kernel  Kernel
	program Program
	bound   []bool
}

// Kernel returns the backend kernel handle.
func (k *CompiledKernel) Kernel() Kernel {
	return k.kernel
}

// Unbound lists the parameter slots that have no argument yet.
func (k *CompiledKernel) Unbound() []int {
	var out []int
	for i, ok := range k.bound {
		if !ok {
			out = append(out, i)
		}
	}
	return out
}

// Release destroys the kernel and then its program.
func (k *CompiledKernel) Release() error {
	var errs []error
	if k.kernel != nil {
		errs = append(errs, k.kernel.Release())
		k.kernel = nil
	}
	if k.program != nil {
		errs = append(errs, k.program.Release())
		k.program = nil
	}
	return errors.Join(errs...)
}

type KernelCompiler struct {
	ctx Context
}

func NewKernelCompiler(ctx Context) *KernelCompiler {
	return &KernelCompiler{ctx: ctx}
}

// Compile builds source for the context device and creates the entry point
// kernel. Every failure comes back as a *core.CompileError with the
// compiler diagnostic attached.
func (c *KernelCompiler) Compile(source, entry string) (*CompiledKernel, error) {
	device := c.ctx.Device().Name

	program, err := c.ctx.BuildProgram(source)
	if err != nil {
		var ce *core.CompileError
		if errors.As(err, &ce) {
			ce.Entry = entry
			if ce.Device == "" {
				ce.Device = device
			}
			return nil, ce
		}
		return nil, &core.CompileError{Entry: entry, Device: device, Err: err}
	}

	params, err := ParseSignature(source, entry)
	if err != nil {
		_ = program.Release()
		return nil, &core.CompileError{Entry: entry, Device: device, Log: program.BuildLog(), Err: err}
	}

	kernel, err := program.CreateKernel(entry)
	if err != nil {
		_ = program.Release()
		return nil, &core.CompileError{Entry: entry, Device: device, Log: program.BuildLog(), Err: err}
	}

	k := &CompiledKernel{
		ID:      core.NewIdentifier("kernel"),
		Entry:   entry,
		Params:  params,
		kernel:  kernel,
		program: program,
		bound:   make([]bool, len(params)),
	}
	if log := program.BuildLog(); log != "" {
		core.LogDebug("build log for %s:\n%s", entry, log)
	}
	core.LogInfo("compiled kernel %s (%s) with %d parameter(s) on %s", entry, k.ID, len(params), device)
	return k, nil
}

func (c *KernelCompiler) String() string {
	return fmt.Sprintf("KernelCompiler(%s)", c.ctx.Device().Name)
}

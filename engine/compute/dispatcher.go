package compute

import (
	"fmt"

	"github.com/spaghettifunk/prism/engine/core"
)

// Dispatcher validates arguments against the parsed kernel signature and
// submits 2D invocations, one work-item per pixel.
type Dispatcher struct {
	dispatches uint64
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// SetArgument binds arg to parameter slot index.
func (d *Dispatcher) SetArgument(k *CompiledKernel, index int, arg Arg) error {
	if k == nil || k.kernel == nil {
		return fmt.Errorf("%w: kernel released", core.ErrDispatch)
	}
	if index < 0 || index >= len(k.Params) {
		return fmt.Errorf("%w: %s has %d parameter(s), index %d out of range", core.ErrDispatch, k.Entry, len(k.Params), index)
	}
	if err := checkArg(k.Params[index], arg); err != nil {
		return fmt.Errorf("%w: %s argument %d: %w", core.ErrDispatch, k.Entry, index, err)
	}
	if err := k.kernel.SetArg(index, arg); err != nil {
		return fmt.Errorf("%w: %s argument %d: %w", core.ErrDispatch, k.Entry, index, err)
	}
	k.bound[index] = true
	return nil
}

// Dispatch enqueues one invocation over a globalSize[0] x globalSize[1]
// grid. It does not wait for completion.
func (d *Dispatcher) Dispatch(k *CompiledKernel, q Queue, globalSize [2]int) error {
	if k == nil || k.kernel == nil {
		return fmt.Errorf("%w: kernel released", core.ErrDispatch)
	}
	if globalSize[0] <= 0 || globalSize[1] <= 0 {
		return fmt.Errorf("%w: invalid global size %v", core.ErrDispatch, globalSize)
	}
	if unbound := k.Unbound(); len(unbound) > 0 {
		return fmt.Errorf("%w: %s has unbound argument(s) %v", core.ErrDispatch, k.Entry, unbound)
	}
	if err := q.EnqueueNDRange(k.kernel, globalSize); err != nil {
		return fmt.Errorf("%w: enqueue %s: %w", core.ErrDispatch, k.Entry, err)
	}
	d.dispatches++
	core.LogDebug("dispatched %s over %dx%d work-items", k.Entry, globalSize[0], globalSize[1])
	return nil
}

// Await blocks until every command enqueued on q has completed.
func (d *Dispatcher) Await(q Queue) error {
	if err := q.Finish(); err != nil {
		return fmt.Errorf("%w: finish: %w", core.ErrDispatch, err)
	}
	return nil
}

// Dispatches returns how many invocations were enqueued successfully.
func (d *Dispatcher) Dispatches() uint64 {
	return d.dispatches
}

func checkArg(p Param, arg Arg) error {
	if p.Kind != arg.Kind {
		return fmt.Errorf("parameter %q expects %s, got %s", p.Name, p.Kind, arg.Kind)
	}
	switch arg.Kind {
	case ArgImage:
		if arg.Image == nil {
			return fmt.Errorf("parameter %q: nil image", p.Name)
		}
		mode := arg.Image.Mode()
		if p.Access.CanWrite() && !mode.CanWrite() {
			return fmt.Errorf("parameter %q is %s but image is %s", p.Name, p.Access, mode)
		}
		if p.Access.CanRead() && !mode.CanRead() {
			return fmt.Errorf("parameter %q is %s but image is %s", p.Name, p.Access, mode)
		}
	case ArgBuffer:
		if arg.Buffer == nil {
			return fmt.Errorf("parameter %q: nil buffer", p.Name)
		}
	case ArgScalar:
		if got := arg.ScalarType(); got != p.Type {
			return fmt.Errorf("parameter %q is %s, got %s", p.Name, p.Type, got)
		}
	}
	return nil
}

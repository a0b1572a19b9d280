package software

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spaghettifunk/prism/engine/compute"
	"github.com/spaghettifunk/prism/engine/core"
)

type Program struct {
	kernels  map[string][]compute.Param
	log      string
	released bool
}

// BuildProgram checks the source structure and the declared entry points
// against the registered implementations. Kernel bodies are not executed;
// each entry point runs its Go implementation.
func (c *Context) BuildProgram(source string) (compute.Program, error) {
	fail := func(format string, args ...interface{}) error {
		return &core.CompileError{
			Device: c.device.Name,
			Log:    "error: " + fmt.Sprintf(format, args...),
			Err:    fmt.Errorf("build program failed"),
		}
	}

	if strings.TrimSpace(source) == "" {
		return nil, fail("empty program source")
	}
	if err := checkBalanced(source); err != nil {
		return nil, fail("%s", err)
	}
	all, err := compute.ParseKernels(source)
	if err != nil {
		return nil, fail("%s", err)
	}
	if len(all) == 0 {
		return nil, fail("no kernel functions declared")
	}

	names := make([]string, 0, len(all))
	for name := range all {
		names = append(names, name)
	}
	sort.Strings(names)

	var log []string
	for _, name := range names {
		b, ok := lookupBuiltin(name)
		if !ok {
			log = append(log, fmt.Sprintf("warning: kernel %q has no software implementation", name))
			continue
		}
		if err := b.matches(all[name]); err != nil {
			return nil, fail("kernel %q: %s", name, err)
		}
	}
	return &Program{kernels: all, log: strings.Join(log, "\n")}, nil
}

func (p *Program) BuildLog() string {
	return p.log
}

func (p *Program) CreateKernel(entry string) (compute.Kernel, error) {
	if p.released {
		return nil, errReleased
	}
	params, ok := p.kernels[entry]
	if !ok {
		return nil, fmt.Errorf("invalid kernel name %q", entry)
	}
	b, ok := lookupBuiltin(entry)
	if !ok {
		return nil, fmt.Errorf("%w: no software implementation of %q", core.ErrBackendUnavailable, entry)
	}
	return &Kernel{
		name:   entry,
		params: params,
		impl:   b,
		args:   make([]compute.Arg, len(params)),
		set:    make([]bool, len(params)),
	}, nil
}

func (p *Program) Release() error {
	if p.released {
		return errReleased
	}
	p.released = true
	return nil
}

type Kernel struct {
	name     string
	params   []compute.Param
	impl     Builtin
	args     []compute.Arg
	set      []bool
	released bool
}

func (k *Kernel) Name() string {
	return k.name
}

func (k *Kernel) SetArg(index int, arg compute.Arg) error {
	if k.released {
		return errReleased
	}
	if index < 0 || index >= len(k.params) {
		return fmt.Errorf("invalid arg index %d", index)
	}
	if arg.Kind != k.params[index].Kind {
		return fmt.Errorf("invalid arg kind %s for %s", arg.Kind, k.params[index])
	}
	switch arg.Kind {
	case compute.ArgImage:
		if _, ok := arg.Image.(*Image); !ok {
			return fmt.Errorf("image does not belong to a software context")
		}
	case compute.ArgBuffer:
		if _, ok := arg.Buffer.(*Buffer); !ok {
			return fmt.Errorf("buffer does not belong to a software context")
		}
	case compute.ArgScalar:
		if _, ok := arg.Uint32(); !ok && arg.ScalarType() != "float" {
			return fmt.Errorf("unsupported scalar %s", arg)
		}
	}
	k.args[index] = arg
	k.set[index] = true
	return nil
}

// snapshot captures the arguments at enqueue time.
func (k *Kernel) snapshot() ([]compute.Arg, error) {
	if k.released {
		return nil, errReleased
	}
	for i, ok := range k.set {
		if !ok {
			return nil, fmt.Errorf("kernel %q argument %d is not set", k.name, i)
		}
		switch a := k.args[i]; a.Kind {
		case compute.ArgImage:
			img := a.Image.(*Image)
			if img.released {
				return nil, fmt.Errorf("kernel %q argument %d: image %w", k.name, i, errReleased)
			}
			if img.SharesTexture() && !img.acquired {
				return nil, fmt.Errorf("kernel %q argument %d: shared texture not acquired", k.name, i)
			}
		case compute.ArgBuffer:
			if a.Buffer.(*Buffer).released {
				return nil, fmt.Errorf("kernel %q argument %d: buffer %w", k.name, i, errReleased)
			}
		}
	}
	return append([]compute.Arg(nil), k.args...), nil
}

func (k *Kernel) Release() error {
	if k.released {
		return errReleased
	}
	k.released = true
	return nil
}

// checkBalanced reports the first unmatched bracket, skipping comments.
func checkBalanced(src string) error {
	type open struct {
		ch   byte
		line int
	}
	pairs := map[byte]byte{')': '(', ']': '[', '}': '{'}
	var stack []open
	line := 1
	for i := 0; i < len(src); i++ {
		ch := src[i]
		switch {
		case ch == '\n':
			line++
		case ch == '/' && i+1 < len(src) && src[i+1] == '/':
			for i < len(src) && src[i] != '\n' {
				i++
			}
			line++
		case ch == '/' && i+1 < len(src) && src[i+1] == '*':
			end := strings.Index(src[i+2:], "*/")
			if end < 0 {
				return fmt.Errorf("%d: unterminated comment", line)
			}
			line += strings.Count(src[i:i+2+end], "\n")
			i += end + 3
		case ch == '(' || ch == '[' || ch == '{':
			stack = append(stack, open{ch, line})
		case ch == ')' || ch == ']' || ch == '}':
			if len(stack) == 0 || stack[len(stack)-1].ch != pairs[ch] {
				return fmt.Errorf("%d: unexpected '%c'", line, ch)
			}
			stack = stack[:len(stack)-1]
		}
	}
	if len(stack) > 0 {
		top := stack[len(stack)-1]
		return fmt.Errorf("%d: unclosed '%c'", top.line, top.ch)
	}
	return nil
}

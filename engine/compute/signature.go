package compute

import (
	"fmt"
	"regexp"
	"strings"
)

// Param is one parameter of a kernel entry point as declared in source.
type Param struct {
	Name string
	Kind ArgKind
	// Type is the OpenCL C type: "image2d_t", the pointee type of a
	// buffer ("uchar4"), or the scalar type ("uint").
	Type   string
	Access AccessMode
}

func (p Param) String() string {
	switch p.Kind {
	case ArgImage:
		return fmt.Sprintf("%s %s %s", p.Access, p.Type, p.Name)
	case ArgBuffer:
		return fmt.Sprintf("__global %s* %s", p.Type, p.Name)
	default:
		return p.Type + " " + p.Name
	}
}

var (
	blockComment = regexp.MustCompile(`(?s)/\*.*?\*/`)
	lineComment  = regexp.MustCompile(`//[^\n]*`)
	kernelDecl   = regexp.MustCompile(`(?:\b__kernel|\bkernel)\s+void\s+([A-Za-z_]\w*)\s*\(([^)]*)\)`)
)

var scalarAliases = map[string]string{
	"unsigned int":   "uint",
	"unsigned":       "uint",
	"signed int":     "int",
	"unsigned char":  "uchar",
	"unsigned short": "ushort",
	"unsigned long":  "ulong",
}

// ParseKernels returns the parameter lists of every kernel entry point
// declared in source, keyed by name.
func ParseKernels(source string) (map[string][]Param, error) {
	clean := lineComment.ReplaceAllString(blockComment.ReplaceAllString(source, " "), "")
	out := make(map[string][]Param)
	for _, m := range kernelDecl.FindAllStringSubmatch(clean, -1) {
		name, list := m[1], strings.TrimSpace(m[2])
		if _, dup := out[name]; dup {
			return nil, fmt.Errorf("kernel %q declared twice", name)
		}
		params := []Param{}
		if list != "" && list != "void" {
			for i, raw := range strings.Split(list, ",") {
				p, err := parseParam(raw)
				if err != nil {
					return nil, fmt.Errorf("kernel %q parameter %d: %w", name, i, err)
				}
				params = append(params, p)
			}
		}
		out[name] = params
	}
	return out, nil
}

// ParseSignature returns the parameters of the named entry point.
func ParseSignature(source, entry string) ([]Param, error) {
	all, err := ParseKernels(source)
	if err != nil {
		return nil, err
	}
	params, ok := all[entry]
	if !ok {
		return nil, fmt.Errorf("no kernel function named %q", entry)
	}
	return params, nil
}

func parseParam(raw string) (Param, error) {
	decl := strings.Join(strings.Fields(strings.ReplaceAll(raw, "*", " * ")), " ")
	if decl == "" {
		return Param{}, fmt.Errorf("empty parameter")
	}

	fields := strings.Fields(decl)
	p := Param{Name: fields[len(fields)-1]}
	pointer := false
	isConst := false
	access := AccessReadOnly
	var typeWords []string
	for _, f := range fields[:len(fields)-1] {
		switch f {
		case "*":
			pointer = true
		case "__global", "global", "__constant", "constant", "__local", "local", "__private", "private", "restrict", "__restrict", "volatile":
		case "const":
			isConst = true
		case "__read_only", "read_only":
			access = AccessReadOnly
		case "__write_only", "write_only":
			access = AccessWriteOnly
		case "__read_write", "read_write":
			access = AccessReadWrite
		default:
			typeWords = append(typeWords, f)
		}
	}
	if len(typeWords) == 0 {
		return Param{}, fmt.Errorf("missing type in %q", strings.TrimSpace(raw))
	}
	typ := strings.Join(typeWords, " ")
	if alias, ok := scalarAliases[typ]; ok {
		typ = alias
	}
	p.Type = typ

	switch {
	case strings.HasPrefix(typ, "image"):
		p.Kind = ArgImage
		p.Access = access
	case pointer:
		p.Kind = ArgBuffer
		p.Access = AccessReadWrite
		if isConst {
			p.Access = AccessReadOnly
		}
	default:
		p.Kind = ArgScalar
		p.Access = AccessReadOnly
	}
	return p, nil
}

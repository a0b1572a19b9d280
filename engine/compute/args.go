package compute

import "fmt"

type ArgKind uint8

const (
	ArgScalar ArgKind = iota
	ArgBuffer
	ArgImage
)

func (k ArgKind) String() string {
	switch k {
	case ArgBuffer:
		return "buffer"
	case ArgImage:
		return "image"
	default:
		return "scalar"
	}
}

// Scalar lists the host types a scalar kernel argument can carry.
type Scalar interface {
	int32 | uint32 | float32
}

// Arg is a value bound to one kernel parameter slot.
type Arg struct {
	Kind   ArgKind
	Image  Image
	Buffer Buffer
	Scalar interface{}
}

func ImageArg(img Image) Arg {
	return Arg{Kind: ArgImage, Image: img}
}

func BufferArg(buf Buffer) Arg {
	return Arg{Kind: ArgBuffer, Buffer: buf}
}

func ScalarArg[T Scalar](v T) Arg {
	return Arg{Kind: ArgScalar, Scalar: v}
}

// ScalarType is the OpenCL C type name of a scalar argument.
func (a Arg) ScalarType() string {
	switch a.Scalar.(type) {
	case int32:
		return "int"
	case uint32:
		return "uint"
	case float32:
		return "float"
	default:
		return fmt.Sprintf("%T", a.Scalar)
	}
}

// Uint32 returns the scalar as uint32, reinterpreting int32 bits.
func (a Arg) Uint32() (uint32, bool) {
	switch v := a.Scalar.(type) {
	case uint32:
		return v, true
	case int32:
		return uint32(v), true
	}
	return 0, false
}

func (a Arg) String() string {
	switch a.Kind {
	case ArgScalar:
		return fmt.Sprintf("%s(%v)", a.ScalarType(), a.Scalar)
	default:
		return a.Kind.String()
	}
}

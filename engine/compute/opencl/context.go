//go:build opencl

package opencl

/*
#cgo CFLAGS: -DCL_TARGET_OPENCL_VERSION=120 -DCL_USE_DEPRECATED_OPENCL_1_2_APIS

#include <stdlib.h>

#ifdef __APPLE__
#include <OpenCL/opencl.h>
#else
#include <CL/cl.h>
#include <CL/cl_gl.h>
#endif
*/
import "C"

import (
	"errors"
	"fmt"
	"strings"
	"unsafe"

	"github.com/spaghettifunk/prism/engine/compute"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

const glTexture2D = 0x0DE1

var errReleased = errors.New("object released")

type Context struct {
	id     core.Identifier
	ctx    C.cl_context
	device C.cl_device_id
	info   compute.DeviceInfo
	shared bool
}

func (c *Context) Device() compute.DeviceInfo {
	return c.info
}

func (c *Context) Shared() bool {
	return c.shared
}

func (c *Context) NewQueue() (compute.Queue, error) {
	if c.ctx == nil {
		return nil, errReleased
	}
	var code C.cl_int
	q := C.clCreateCommandQueue(c.ctx, c.device, 0, &code)
	if code != C.CL_SUCCESS {
		return nil, fmt.Errorf("%w: clCreateCommandQueue: %w", core.ErrContextCreation, Status(code))
	}
	return &Queue{queue: q}, nil
}

func (c *Context) BuildProgram(source string) (compute.Program, error) {
	csrc := C.CString(source)
	defer C.free(unsafe.Pointer(csrc))
	length := C.size_t(len(source))

	var code C.cl_int
	program := C.clCreateProgramWithSource(c.ctx, 1, &csrc, &length, &code)
	if code != C.CL_SUCCESS {
		return nil, &core.CompileError{Device: c.info.Name, Err: fmt.Errorf("clCreateProgramWithSource: %w", Status(code))}
	}

	p := &Program{program: program}
	code = C.clBuildProgram(program, 1, &c.device, nil, nil, nil)
	p.log = buildLog(program, c.device)
	if code != C.CL_SUCCESS {
		_ = p.Release()
		return nil, &core.CompileError{Device: c.info.Name, Log: p.log, Err: fmt.Errorf("clBuildProgram: %w", Status(code))}
	}
	return p, nil
}

// CreateImageFromTexture aliases the GL texture named by texture.ID.
func (c *Context) CreateImageFromTexture(texture *metadata.Texture, mode compute.AccessMode) (compute.Image, error) {
	if !c.shared {
		return nil, fmt.Errorf("%w: context was created without sharing", core.ErrInteropUnsupported)
	}
	if !texture.IsSpecified() {
		return nil, fmt.Errorf("texture storage is not specified")
	}
	var code C.cl_int
	mem := C.clCreateFromGLTexture(c.ctx, memFlags(mode), C.cl_GLenum(glTexture2D), 0, C.cl_GLuint(texture.ID), &code)
	if code != C.CL_SUCCESS {
		return nil, fmt.Errorf("clCreateFromGLTexture(%d): %w", texture.ID, Status(code))
	}
	return &Image{mem: mem, width: texture.Width, height: texture.Height, mode: mode, shared: true}, nil
}

func (c *Context) CreateImage(width, height uint32, mode compute.AccessMode) (compute.Image, error) {
	format := C.cl_image_format{
		image_channel_order:     C.CL_RGBA,
		image_channel_data_type: C.CL_UNORM_INT8,
	}
	var desc C.cl_image_desc
	desc.image_type = C.CL_MEM_OBJECT_IMAGE2D
	desc.image_width = C.size_t(width)
	desc.image_height = C.size_t(height)

	var code C.cl_int
	mem := C.clCreateImage(c.ctx, memFlags(mode), &format, &desc, nil, &code)
	if code != C.CL_SUCCESS {
		return nil, fmt.Errorf("clCreateImage(%dx%d): %w", width, height, Status(code))
	}
	return &Image{mem: mem, width: width, height: height, mode: mode}, nil
}

func (c *Context) CreateBuffer(size int, mode compute.AccessMode) (compute.Buffer, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid buffer size %d", size)
	}
	var code C.cl_int
	mem := C.clCreateBuffer(c.ctx, memFlags(mode), C.size_t(size), nil, &code)
	if code != C.CL_SUCCESS {
		return nil, fmt.Errorf("clCreateBuffer(%d): %w", size, Status(code))
	}
	return &Buffer{mem: mem, size: size, mode: mode}, nil
}

func (c *Context) Release() error {
	if c.ctx == nil {
		return nil
	}
	code := C.clReleaseContext(c.ctx)
	c.ctx = nil
	core.LogDebug("OpenCL context %s released", c.id)
	return check(code, "clReleaseContext")
}

type Program struct {
	program C.cl_program
	log     string
}

func (p *Program) CreateKernel(entry string) (compute.Kernel, error) {
	if p.program == nil {
		return nil, errReleased
	}
	cname := C.CString(entry)
	defer C.free(unsafe.Pointer(cname))

	var code C.cl_int
	k := C.clCreateKernel(p.program, cname, &code)
	if code != C.CL_SUCCESS {
		return nil, fmt.Errorf("clCreateKernel(%q): %w", entry, Status(code))
	}
	return &Kernel{kernel: k, name: entry}, nil
}

func (p *Program) BuildLog() string {
	return p.log
}

func (p *Program) Release() error {
	if p.program == nil {
		return errReleased
	}
	code := C.clReleaseProgram(p.program)
	p.program = nil
	return check(code, "clReleaseProgram")
}

type Kernel struct {
	kernel C.cl_kernel
	name   string
}

func (k *Kernel) Name() string {
	return k.name
}

func (k *Kernel) SetArg(index int, arg compute.Arg) error {
	if k.kernel == nil {
		return errReleased
	}
	var (
		size  C.size_t
		value unsafe.Pointer
	)
	switch arg.Kind {
	case compute.ArgImage:
		img, ok := arg.Image.(*Image)
		if !ok || img.mem == nil {
			return fmt.Errorf("argument %d: image does not belong to an OpenCL context", index)
		}
		size, value = C.size_t(unsafe.Sizeof(img.mem)), unsafe.Pointer(&img.mem)
	case compute.ArgBuffer:
		buf, ok := arg.Buffer.(*Buffer)
		if !ok || buf.mem == nil {
			return fmt.Errorf("argument %d: buffer does not belong to an OpenCL context", index)
		}
		size, value = C.size_t(unsafe.Sizeof(buf.mem)), unsafe.Pointer(&buf.mem)
	case compute.ArgScalar:
		switch v := arg.Scalar.(type) {
		case uint32:
			cv := C.cl_uint(v)
			size, value = C.size_t(unsafe.Sizeof(cv)), unsafe.Pointer(&cv)
		case int32:
			cv := C.cl_int(v)
			size, value = C.size_t(unsafe.Sizeof(cv)), unsafe.Pointer(&cv)
		case float32:
			cv := C.cl_float(v)
			size, value = C.size_t(unsafe.Sizeof(cv)), unsafe.Pointer(&cv)
		default:
			return fmt.Errorf("argument %d: unsupported scalar %T", index, arg.Scalar)
		}
	}
	return check(C.clSetKernelArg(k.kernel, C.cl_uint(index), size, value), "clSetKernelArg")
}

func (k *Kernel) Release() error {
	if k.kernel == nil {
		return errReleased
	}
	code := C.clReleaseKernel(k.kernel)
	k.kernel = nil
	return check(code, "clReleaseKernel")
}

type Image struct {
	mem    C.cl_mem
	width  uint32
	height uint32
	mode   compute.AccessMode
	shared bool
}

func (i *Image) Mode() compute.AccessMode { return i.mode }
func (i *Image) Width() uint32            { return i.width }
func (i *Image) Height() uint32           { return i.height }
func (i *Image) SharesTexture() bool      { return i.shared }

func (i *Image) Release() error {
	if i.mem == nil {
		return errReleased
	}
	code := C.clReleaseMemObject(i.mem)
	i.mem = nil
	return check(code, "clReleaseMemObject")
}

type Buffer struct {
	mem  C.cl_mem
	size int
	mode compute.AccessMode
}

func (b *Buffer) Mode() compute.AccessMode { return b.mode }
func (b *Buffer) Size() int                { return b.size }

func (b *Buffer) Release() error {
	if b.mem == nil {
		return errReleased
	}
	code := C.clReleaseMemObject(b.mem)
	b.mem = nil
	return check(code, "clReleaseMemObject")
}

type Queue struct {
	queue C.cl_command_queue
}

func (q *Queue) EnqueueNDRange(kernel compute.Kernel, global [2]int) error {
	k, ok := kernel.(*Kernel)
	if !ok || k.kernel == nil {
		return fmt.Errorf("kernel does not belong to an OpenCL context")
	}
	if global[0] <= 0 || global[1] <= 0 {
		return fmt.Errorf("invalid global work size %v", global)
	}
	size := [2]C.size_t{C.size_t(global[0]), C.size_t(global[1])}
	return check(C.clEnqueueNDRangeKernel(q.queue, k.kernel, 2, nil, &size[0], nil, 0, nil, nil), "clEnqueueNDRangeKernel")
}

func (q *Queue) AcquireTextures(images ...compute.Image) error {
	mems, err := glObjects(images)
	if err != nil {
		return err
	}
	return check(C.clEnqueueAcquireGLObjects(q.queue, C.cl_uint(len(mems)), &mems[0], 0, nil, nil), "clEnqueueAcquireGLObjects")
}

func (q *Queue) ReleaseTextures(images ...compute.Image) error {
	mems, err := glObjects(images)
	if err != nil {
		return err
	}
	return check(C.clEnqueueReleaseGLObjects(q.queue, C.cl_uint(len(mems)), &mems[0], 0, nil, nil), "clEnqueueReleaseGLObjects")
}

// ReadImage blocks until the image contents are in dst.
func (q *Queue) ReadImage(image compute.Image, dst []byte) error {
	img, ok := image.(*Image)
	if !ok || img.mem == nil {
		return fmt.Errorf("read image: invalid image")
	}
	if want := int(img.width) * int(img.height) * 4; len(dst) != want {
		return fmt.Errorf("read image: expected %d bytes, got %d", want, len(dst))
	}
	origin := [3]C.size_t{0, 0, 0}
	region := [3]C.size_t{C.size_t(img.width), C.size_t(img.height), 1}
	code := C.clEnqueueReadImage(q.queue, img.mem, C.CL_TRUE, &origin[0], &region[0], 0, 0, unsafe.Pointer(&dst[0]), 0, nil, nil)
	return check(code, "clEnqueueReadImage")
}

func (q *Queue) ReadBuffer(buffer compute.Buffer, dst []byte) error {
	buf, ok := buffer.(*Buffer)
	if !ok || buf.mem == nil {
		return fmt.Errorf("read buffer: invalid buffer")
	}
	if len(dst) == 0 || len(dst) > buf.size {
		return fmt.Errorf("read buffer: %d bytes requested, buffer holds %d", len(dst), buf.size)
	}
	code := C.clEnqueueReadBuffer(q.queue, buf.mem, C.CL_TRUE, 0, C.size_t(len(dst)), unsafe.Pointer(&dst[0]), 0, nil, nil)
	return check(code, "clEnqueueReadBuffer")
}

func (q *Queue) Finish() error {
	return check(C.clFinish(q.queue), "clFinish")
}

func (q *Queue) Release() error {
	if q.queue == nil {
		return errReleased
	}
	code := C.clReleaseCommandQueue(q.queue)
	q.queue = nil
	return check(code, "clReleaseCommandQueue")
}

func glObjects(images []compute.Image) ([]C.cl_mem, error) {
	if len(images) == 0 {
		return nil, fmt.Errorf("no images given")
	}
	mems := make([]C.cl_mem, len(images))
	for i, image := range images {
		img, ok := image.(*Image)
		if !ok || !img.shared || img.mem == nil {
			return nil, fmt.Errorf("image %d is not a shared GL texture", i)
		}
		mems[i] = img.mem
	}
	return mems, nil
}

func memFlags(mode compute.AccessMode) C.cl_mem_flags {
	switch mode {
	case compute.AccessWriteOnly:
		return C.CL_MEM_WRITE_ONLY
	case compute.AccessReadWrite:
		return C.CL_MEM_READ_WRITE
	default:
		return C.CL_MEM_READ_ONLY
	}
}

func buildLog(program C.cl_program, device C.cl_device_id) string {
	var size C.size_t
	if C.clGetProgramBuildInfo(program, device, C.CL_PROGRAM_BUILD_LOG, 0, nil, &size) != C.CL_SUCCESS || size <= 1 {
		return ""
	}
	buf := make([]byte, size)
	if C.clGetProgramBuildInfo(program, device, C.CL_PROGRAM_BUILD_LOG, size, unsafe.Pointer(&buf[0]), nil) != C.CL_SUCCESS {
		return ""
	}
	return strings.TrimRight(string(buf), "\x00\n ")
}

func check(code C.cl_int, op string) error {
	if code == C.CL_SUCCESS {
		return nil
	}
	return fmt.Errorf("%s: %w", op, Status(code))
}

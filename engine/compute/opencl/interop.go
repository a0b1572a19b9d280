package opencl

// Context property keys from cl.h, cl_gl.h and cl_gl_ext.h.
const (
	propContextPlatform    = 0x1084
	propGLContextKHR       = 0x2008
	propGLXDisplayKHR      = 0x200A
	propWGLHDCKHR          = 0x200B
	propCGLShareGroupApple = 0x10000000
)

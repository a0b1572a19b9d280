package compute

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/prism/engine/kernels"
)

func TestParseShippedKernels(t *testing.T) {
	params, err := ParseSignature(kernels.Gradient.Source, kernels.Gradient.Entry)
	require.NoError(t, err)
	require.Len(t, params, 1)
	assert.Equal(t, Param{Name: "texture", Kind: ArgImage, Type: "image2d_t", Access: AccessWriteOnly}, params[0])

	params, err = ParseSignature(kernels.Random.Source, kernels.Random.Entry)
	require.NoError(t, err)
	require.Len(t, params, 2)
	assert.Equal(t, ArgImage, params[0].Kind)
	assert.Equal(t, Param{Name: "seed", Kind: ArgScalar, Type: "uint", Access: AccessReadOnly}, params[1])

	params, err = ParseSignature(kernels.Buffer.Source, kernels.Buffer.Entry)
	require.NoError(t, err)
	require.Len(t, params, 3)
	assert.Equal(t, Param{Name: "pixels", Kind: ArgBuffer, Type: "uchar4", Access: AccessReadWrite}, params[0])
	assert.Equal(t, "uint", params[2].Type)
}

func TestParseKernelsIgnoresHelpersAndComments(t *testing.T) {
	src := `
uint helper(uint a) { return a; }
/* __kernel void commented(int x) {} */
// kernel void alsoCommented(int x) {}
kernel void a(const __global float *in, unsigned int n, __read_write image2d_t img) {}
__kernel void b(void) {}
`
	all, err := ParseKernels(src)
	require.NoError(t, err)
	require.Len(t, all, 2)

	a := all["a"]
	require.Len(t, a, 3)
	assert.Equal(t, Param{Name: "in", Kind: ArgBuffer, Type: "float", Access: AccessReadOnly}, a[0])
	assert.Equal(t, Param{Name: "n", Kind: ArgScalar, Type: "uint", Access: AccessReadOnly}, a[1])
	assert.Equal(t, AccessReadWrite, a[2].Access)
	assert.Empty(t, all["b"])
}

func TestParseSignatureMissingEntry(t *testing.T) {
	_, err := ParseSignature(kernels.Gradient.Source, "nope")
	assert.ErrorContains(t, err, `no kernel function named "nope"`)

	_, err = ParseKernels("__kernel void x(int a) {} __kernel void x(int b) {}")
	assert.Error(t, err)
}

package opencl

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusError(t *testing.T) {
	assert.Equal(t, "CL_BUILD_PROGRAM_FAILURE (-11)", Status(-11).Error())
	assert.Equal(t, "unknown OpenCL error (-9999)", Status(-9999).Error())

	err := fmt.Errorf("clBuildProgram: %w", Status(-11))
	var s Status
	assert.ErrorAs(t, err, &s)
	assert.Equal(t, Status(-11), s)
}

package math

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClamp(t *testing.T) {
	assert.Equal(t, 0, Clamp(-4, 0, 10))
	assert.Equal(t, 10, Clamp(14, 0, 10))
	assert.Equal(t, float32(0.5), Clamp(float32(0.5), 0, 1))
}

func TestScaleChannelTruncates(t *testing.T) {
	assert.Equal(t, uint8(0), ScaleChannel(0, 800))
	assert.Equal(t, uint8(254), ScaleChannel(799, 800))
	assert.Equal(t, uint8(254), ScaleChannel(599, 600))
	assert.Equal(t, uint8(254), ScaleChannel(1398, 1400))
	assert.Equal(t, uint8(127), ScaleChannel(uint32(400), 800))
	assert.Equal(t, uint8(0), ScaleChannel(5, 0))
}

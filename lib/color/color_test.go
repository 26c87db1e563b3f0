package color

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		in     string
		exp    RGB
		expErr bool
	}{
		{in: "#000000", exp: RGB{0, 0, 0}},
		{in: "#FFFFFF", exp: RGB{255, 255, 255}},
		{in: "#1a2B3c", exp: RGB{0x1A, 0x2B, 0x3C}},
		{in: "ff0080", exp: RGB{0xFF, 0x00, 0x80}},
		{in: "", expErr: true},
		{in: "#fff", expErr: true},
		{in: "#gggggg", expErr: true},
		{in: "red", expErr: true},
		{in: "#1234567", expErr: true},
	}
	for _, tc := range testCases {
		c, err := Resolve(tc.in)
		if tc.expErr {
			assert.Error(t, err, "input %q", tc.in)
			continue
		}
		require.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.exp, c, "input %q", tc.in)
	}
}

func TestLowContrast(t *testing.T) {
	t.Parallel()

	assert.True(t, LowContrast(RGB{0, 0, 0}, RGB{10, 10, 10}))
	assert.False(t, LowContrast(RGB{0, 0, 0}, RGB{255, 255, 255}))
}

func TestLuminance(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.0, Luminance(RGB{0, 0, 0}))
	assert.Equal(t, 1.0, Luminance(RGB{255, 255, 255}))
	assert.Greater(t, Luminance(RGB{0, 255, 0}), Luminance(RGB{255, 0, 0}))
}

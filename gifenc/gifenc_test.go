package gifenc

import (
	"bytes"
	"context"
	"image/gif"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixelflip/pixelflip/lib/log"
)

func testContext(t *testing.T) context.Context {
	return log.WithTB(context.Background(), t, nil)
}

// walkFrames walks the encoded block structure after the header, screen
// descriptor, global color table and looping extension, and returns how many
// graphics control extensions and image descriptors it contains. Counting by
// walking, not by scanning for marker bytes, since 0x21/0x2C can legally
// occur inside compressed data.
func walkFrames(t *testing.T, b []byte) (gces, descriptors int) {
	t.Helper()

	require.Equal(t, "GIF89a", string(b[:6]))
	require.Equal(t, byte(sTrailer), b[len(b)-1])

	// Logical screen descriptor flags: global table, 2-bit resolution,
	// 4-entry size field.
	require.Equal(t, byte(0x91), b[10])

	netscape := append([]byte{sExtension, eApplication, 0x0B}, "NETSCAPE2.0"...)
	netscape = append(netscape, 0x03, 0x01, 0x00, 0x00, 0x00)
	require.Equal(t, netscape, b[25:44])

	i := 44
	for b[i] != sTrailer {
		switch {
		case b[i] == sExtension && b[i+1] == eGraphicControl:
			gces++
			require.Equal(t, byte(0x04), b[i+2])
			require.Equal(t, byte(0x00), b[i+7])
			i += 8
		case b[i] == sImageDescriptor:
			descriptors++
			i += 10
			require.Equal(t, byte(minCodeSize), b[i])
			i++
			for b[i] != 0x00 {
				i += int(b[i]) + 1
			}
			i++
		default:
			t.Fatalf("unexpected byte 0x%02X at offset %d", b[i], i)
		}
	}
	require.Equal(t, len(b)-1, i)
	return gces, descriptors
}

func TestEncodeStructure(t *testing.T) {
	t.Parallel()

	frame := [][]bool{
		{true, false},
		{false, true},
	}
	anim := &Animation{
		Width:      2,
		Height:     2,
		Frames:     [][][]bool{frame, frame, frame},
		FPS:        10,
		Scale:      2,
		Foreground: "#112233",
	}
	b, err := Encode(testContext(t), anim)
	require.NoError(t, err)

	// Global color table is always 12 bytes: transparent slot, foreground,
	// two white fillers.
	gct := []byte{
		0x00, 0x00, 0x00,
		0x11, 0x22, 0x33,
		0xFF, 0xFF, 0xFF,
		0xFF, 0xFF, 0xFF,
	}
	assert.Equal(t, gct, b[13:25])

	gces, descriptors := walkFrames(t, b)
	assert.Equal(t, 3, gces)
	assert.Equal(t, 3, descriptors)

	assert.NoError(t, Validate(b, anim))
}

func TestEncodeSingleFrame(t *testing.T) {
	t.Parallel()

	anim := &Animation{
		Width:      2,
		Height:     1,
		Frames:     [][][]bool{{{true, false}}},
		FPS:        5,
		Scale:      1,
		Foreground: "#ff0000",
	}
	b, err := Encode(testContext(t), anim)
	require.NoError(t, err)
	require.NoError(t, Validate(b, anim))

	g, err := gif.DecodeAll(bytes.NewReader(b))
	require.NoError(t, err)
	require.Len(t, g.Image, 1)
	assert.Equal(t, 20, g.Delay[0])

	img := g.Image[0]
	r, gr, bl, a := img.At(0, 0).RGBA()
	assert.Equal(t, uint32(0xFFFF), a)
	assert.Equal(t, uint32(0xFFFF), r)
	assert.Equal(t, uint32(0), gr)
	assert.Equal(t, uint32(0), bl)

	_, _, _, a = img.At(1, 0).RGBA()
	assert.Equal(t, uint32(0), a)
}

func TestEncodeTwoFrames(t *testing.T) {
	t.Parallel()

	anim := &Animation{
		Width:      1,
		Height:     1,
		Frames:     [][][]bool{{{true}}, {{false}}},
		FPS:        10,
		Scale:      4,
		Foreground: "#00ff00",
	}
	b, err := Encode(testContext(t), anim)
	require.NoError(t, err)
	require.NoError(t, Validate(b, anim))

	g, err := gif.DecodeAll(bytes.NewReader(b))
	require.NoError(t, err)
	require.Len(t, g.Image, 2)

	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			_, gr, _, a := g.Image[0].At(x, y).RGBA()
			assert.Equal(t, uint32(0xFFFF), a)
			assert.Equal(t, uint32(0xFFFF), gr)

			_, _, _, a = g.Image[1].At(x, y).RGBA()
			assert.Equal(t, uint32(0), a)
		}
	}
	for _, d := range g.Delay {
		assert.Equal(t, 10, d)
	}
}

func TestEncodeBackground(t *testing.T) {
	t.Parallel()

	anim := &Animation{
		Width:      1,
		Height:     1,
		Frames:     [][][]bool{{{false}}},
		FPS:        10,
		Scale:      1,
		Foreground: "#000000",
		Background: "#00ff00",
	}
	b, err := Encode(testContext(t), anim)
	require.NoError(t, err)

	assert.Equal(t, []byte{0x00, 0xFF, 0x00}, b[13:16])

	g, err := gif.DecodeAll(bytes.NewReader(b))
	require.NoError(t, err)
	_, gr, _, a := g.Image[0].At(0, 0).RGBA()
	assert.Equal(t, uint32(0xFFFF), a, "background pixels must be opaque when a background color is set")
	assert.Equal(t, uint32(0xFFFF), gr)
}

func TestDelayCS(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		fps  float64
		want int
	}{
		{fps: 0, want: 100},
		{fps: 1, want: 100},
		{fps: -3, want: 100},
		{fps: math.NaN(), want: 100},
		{fps: 5, want: 20},
		{fps: 33, want: 3},
		{fps: 100, want: 1},
		{fps: 200, want: 1},
	}
	for _, tc := range testCases {
		a := &Animation{FPS: tc.fps}
		assert.Equal(t, tc.want, a.DelayCS(), "fps=%v", tc.fps)
	}
}

func TestEncodeErrors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		anim   *Animation
		expErr string
	}{
		{
			name:   "no_frames",
			anim:   &Animation{Width: 1, Height: 1, Foreground: "#000000"},
			expErr: "at least one frame",
		},
		{
			name:   "zero_dimensions",
			anim:   &Animation{Frames: [][][]bool{{{}}}, Foreground: "#000000"},
			expErr: "dimensions",
		},
		{
			name: "ragged_frame",
			anim: &Animation{
				Width:      2,
				Height:     1,
				Frames:     [][][]bool{{{true}}},
				Foreground: "#000000",
			},
			expErr: "row 0 has 1 pixels, want 2",
		},
		{
			name: "bad_foreground",
			anim: &Animation{
				Width:      1,
				Height:     1,
				Frames:     [][][]bool{{{true}}},
				Foreground: "#12345",
			},
			expErr: "bad foreground",
		},
		{
			name: "bad_background",
			anim: &Animation{
				Width:      1,
				Height:     1,
				Frames:     [][][]bool{{{true}}},
				Foreground: "#123456",
				Background: "chartreuse",
			},
			expErr: "bad background",
		},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := Encode(context.Background(), tc.anim)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.expErr)
		})
	}
}

func TestEncodeDeterministic(t *testing.T) {
	t.Parallel()

	anim := &Animation{
		Width:      3,
		Height:     3,
		Frames:     [][][]bool{{{true, false, true}, {false, true, false}, {true, false, true}}},
		FPS:        24,
		Foreground: "#abcdef",
	}
	b1, err := Encode(testContext(t), anim)
	require.NoError(t, err)
	b2, err := Encode(testContext(t), anim)
	require.NoError(t, err)
	assert.Equal(t, b1, b2)
}

// TestEncodeNoisyFrame forces the LZW table through its 4096-entry reset and
// verifies the decoded frame pixel for pixel.
func TestEncodeNoisyFrame(t *testing.T) {
	t.Parallel()

	const size = 64
	frame := make([][]bool, size)
	bits := noise(size * size)
	for y := range frame {
		frame[y] = make([]bool, size)
		for x := range frame[y] {
			frame[y][x] = bits[y*size+x]&1 == 1
		}
	}

	anim := &Animation{
		Width:      size,
		Height:     size,
		Frames:     [][][]bool{frame},
		FPS:        10,
		Scale:      8,
		Foreground: "#ffffff",
	}
	b, err := Encode(testContext(t), anim)
	require.NoError(t, err)
	require.NoError(t, Validate(b, anim))

	g, err := gif.DecodeAll(bytes.NewReader(b))
	require.NoError(t, err)
	img := g.Image[0]
	for y := 0; y < size*8; y++ {
		for x := 0; x < size*8; x++ {
			want := uint8(0)
			if frame[y/8][x/8] {
				want = 1
			}
			if img.ColorIndexAt(x, y) != want {
				t.Fatalf("pixel (%d,%d): got index %d, want %d", x, y, img.ColorIndexAt(x, y), want)
			}
		}
	}
}

func TestEncodeCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	anim := &Animation{
		Width:      1,
		Height:     1,
		Frames:     [][][]bool{{{true}}},
		Foreground: "#000000",
	}
	_, err := Encode(ctx, anim)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestValidateMismatch(t *testing.T) {
	t.Parallel()

	anim := &Animation{
		Width:      1,
		Height:     1,
		Frames:     [][][]bool{{{true}}},
		FPS:        10,
		Foreground: "#000000",
	}
	b, err := Encode(testContext(t), anim)
	require.NoError(t, err)

	other := *anim
	other.Frames = [][][]bool{{{true}}, {{false}}}
	assert.Error(t, Validate(b, &other))

	other = *anim
	other.FPS = 50
	assert.Error(t, Validate(b, &other))
}

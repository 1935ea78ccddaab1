package segment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectEdges_Uniform(t *testing.T) {
	t.Parallel()

	for _, c := range []RGB{black, white, red, {R: 17, G: 200, B: 3}} {
		m := DetectEdges(uniform(12, 9, c), EdgeThreshold(1))
		assert.Zero(t, m.Count(), "color %v", c)
	}
}

func TestDetectEdges_BorderNeverEdge(t *testing.T) {
	t.Parallel()

	// 棋盘格，每个内部像素梯度都很大
	r := NewRaster(9, 7)
	for y := 0; y < 7; y++ {
		for x := 0; x < 9; x++ {
			if (x+y)%2 == 0 {
				r.Set(x, y, white, 255)
			} else {
				r.Set(x, y, black, 255)
			}
		}
	}
	r.Set(0, 3, RGB{R: 255}, 255)

	m := DetectEdges(r, 0)
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if x == 0 || y == 0 || x == m.Width-1 || y == m.Height-1 {
				assert.False(t, m.At(x, y), "border pixel (%d,%d)", x, y)
			}
		}
	}
}

func TestDetectEdges_RingOnRedChannel(t *testing.T) {
	t.Parallel()

	// 蓝色外圈 R=0，红色内部 R=255
	r := ringImage(10, 10, 1, blue, red)
	m := DetectEdges(r, EdgeThreshold(1))

	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			inner := x >= 1 && x <= 8 && y >= 1 && y <= 8
			nextToRing := x == 1 || x == 8 || y == 1 || y == 8
			assert.Equal(t, inner && nextToRing, m.At(x, y), "pixel (%d,%d)", x, y)
		}
	}
	assert.Equal(t, 28, m.Count())
}

func TestDetectEdges_Threshold(t *testing.T) {
	t.Parallel()

	// 左半 R=0，右半 R=10：列交界处 Gx = 4*10 = 40
	r := NewRaster(6, 3)
	for y := 0; y < 3; y++ {
		for x := 3; x < 6; x++ {
			r.Set(x, y, RGB{R: 10}, 255)
		}
	}

	assert.Equal(t, 2, DetectEdges(r, 39.9).Count())
	assert.Zero(t, DetectEdges(r, 40).Count(), "magnitude must exceed the threshold")
}

func TestDetectEdges_Channels(t *testing.T) {
	t.Parallel()

	// 红色通道处处相同，只有绿色有突变
	r := uniform(8, 8, RGB{R: 100})
	for y := 0; y < 8; y++ {
		for x := 4; x < 8; x++ {
			r.Set(x, y, RGB{R: 100, G: 255}, 255)
		}
	}

	assert.Zero(t, DetectEdges(r, 10).Count())
	lum := DetectEdges(r, 10, WithEdgeChannel(EdgeChannelLuminance))
	assert.Positive(t, lum.Count())
	assert.True(t, lum.At(3, 4))
	assert.True(t, lum.At(4, 4))
}

func TestDetectEdges_WorkersAgree(t *testing.T) {
	t.Parallel()

	r := NewRaster(31, 29)
	for i := 0; i < 31*29; i++ {
		r.Pix[i*4] = uint8(i * 37 % 251)
		r.Pix[i*4+3] = 255
	}

	serial := DetectEdges(r, 50, WithEdgeWorkers(1))
	for _, n := range []int{2, 3, 8, 64} {
		par := DetectEdges(r, 50, WithEdgeWorkers(n))
		require.Equal(t, serial.Edges, par.Edges, "workers=%d", n)
	}
}

func TestDetectEdges_Tiny(t *testing.T) {
	t.Parallel()

	for _, size := range [][2]int{{1, 1}, {2, 5}, {5, 2}} {
		m := DetectEdges(uniform(size[0], size[1], red), 0)
		assert.Len(t, m.Edges, size[0]*size[1])
		assert.Zero(t, m.Count())
	}
}

func TestParseEdgeChannel(t *testing.T) {
	t.Parallel()

	c, ok := ParseEdgeChannel("luminance")
	assert.True(t, ok)
	assert.Equal(t, EdgeChannelLuminance, c)
	assert.Equal(t, "luminance", c.String())

	c, ok = ParseEdgeChannel("")
	assert.True(t, ok)
	assert.Equal(t, EdgeChannelRed, c)

	_, ok = ParseEdgeChannel("green")
	assert.False(t, ok)
}

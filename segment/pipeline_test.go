package segment

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoveBackground_BlueRingRedInterior(t *testing.T) {
	t.Parallel()

	r := ringImage(10, 10, 1, blue, red)
	s := Settings{Mode: ModeSmart, ColorTolerance: 30, EdgeSensitivity: 1, FeatherRadius: 0}

	res, err := Process(r, s)
	require.NoError(t, err)
	assert.Equal(t, Palette{blue}, res.Palette)
	assert.Equal(t, 28, res.Edges.Count())

	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			ring := x == 0 || y == 0 || x == 9 || y == 9
			want := uint8(255)
			if ring {
				want = 0
			}
			assert.Equal(t, want, res.Output.AlphaAt(x, y), "pixel (%d,%d)", x, y)
			assert.Equal(t, r.RGBAt(x, y), res.Output.RGBAt(x, y))
		}
	}
	assert.Equal(t, res.RawMask.Alpha, res.Mask.Alpha)
}

func TestRemoveBackground_EdgeProtection(t *testing.T) {
	t.Parallel()

	// 内部是与背景同色的深蓝色块，红色通道突变在边缘上
	bg := RGB{R: 20, G: 20, B: 200}
	r := uniform(12, 12, bg)
	for y := 4; y < 8; y++ {
		for x := 4; x < 8; x++ {
			r.Set(x, y, RGB{R: 35, G: 20, B: 200}, 255)
		}
	}
	s := Settings{ColorTolerance: 30, EdgeSensitivity: 1}

	out, err := RemoveBackground(r, s)
	require.NoError(t, err)
	assert.Equal(t, EdgeAlpha, out.AlphaAt(4, 4))
	assert.Equal(t, EdgeAlpha, out.AlphaAt(3, 4))
	assert.Equal(t, Transparent, out.AlphaAt(5, 5))
	assert.Equal(t, Transparent, out.AlphaAt(0, 0))
}

func TestRemoveBackground_Feathered(t *testing.T) {
	t.Parallel()

	// 白底中间一块黑色主体
	r := uniform(20, 20, white)
	for y := 6; y < 14; y++ {
		for x := 6; x < 14; x++ {
			r.Set(x, y, black, 255)
		}
	}
	s := Settings{ColorTolerance: 30, EdgeSensitivity: 10, FeatherRadius: 2}

	res, err := Process(r, s)
	require.NoError(t, err)

	// 主体最外圈紧挨透明背景，被压到更透明
	assert.Equal(t, Opaque, res.RawMask.At(6, 10))
	assert.Less(t, res.Mask.At(6, 10), Opaque)
	// 主体中心离背景超过半径
	assert.Equal(t, Opaque, res.Mask.At(10, 10))
	for i := range res.Mask.Alpha {
		assert.LessOrEqual(t, res.Mask.Alpha[i], res.RawMask.Alpha[i])
	}
}

func TestRemoveBackground_SimpleMode(t *testing.T) {
	t.Parallel()

	r := ringImage(8, 8, 2, white, RGB{R: 30, G: 60, B: 90})
	res, err := Process(r, Settings{Mode: ModeSimple, ColorTolerance: 20, EdgeSensitivity: 5})
	require.NoError(t, err)

	assert.Nil(t, res.Edges)
	assert.Empty(t, res.Palette)
	assert.Equal(t, Transparent, res.Output.AlphaAt(0, 0))
	assert.Equal(t, Opaque, res.Output.AlphaAt(3, 3))
}

func TestProcess_ClampsSettings(t *testing.T) {
	t.Parallel()

	res, err := Process(uniform(4, 4, white), Settings{ColorTolerance: 1000, EdgeSensitivity: -3, FeatherRadius: 99})
	require.NoError(t, err)
	assert.Equal(t, MaxColorTolerance, res.Settings.ColorTolerance)
	assert.Equal(t, MinEdgeSensitivity, res.Settings.EdgeSensitivity)
	assert.Equal(t, MaxFeatherRadius, res.Settings.FeatherRadius)
}

func TestProcess_NaNSettingsUseDefaults(t *testing.T) {
	t.Parallel()

	r := ringImage(10, 10, 1, blue, red)
	res, err := Process(r, Settings{ColorTolerance: math.NaN(), EdgeSensitivity: math.NaN()})
	require.NoError(t, err)

	d := DefaultSettings()
	assert.Equal(t, d.ColorTolerance, res.Settings.ColorTolerance)
	assert.Equal(t, d.EdgeSensitivity, res.Settings.EdgeSensitivity)
	assert.Equal(t, 28, res.Edges.Count())
	assert.Equal(t, Opaque, res.Output.AlphaAt(5, 5))
	assert.Equal(t, Transparent, res.Output.AlphaAt(0, 0))
}

func TestProcess_InvalidInput(t *testing.T) {
	t.Parallel()

	_, err := Process(NewRaster(0, 5), DefaultSettings())
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = RemoveBackground(nil, DefaultSettings())
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestProcess_SinglePixel(t *testing.T) {
	t.Parallel()

	res, err := Process(uniform(1, 1, red), DefaultSettings())
	require.NoError(t, err)
	assert.Equal(t, Palette{red}, res.Palette)
	assert.Equal(t, Transparent, res.Output.AlphaAt(0, 0))
}

func TestProcess_WorkersAgree(t *testing.T) {
	t.Parallel()

	r := ringImage(33, 21, 4, RGB{R: 200, G: 190, B: 180}, RGB{R: 10, G: 90, B: 40})
	for i := 0; i < 33*21; i += 7 {
		r.Pix[i*4] ^= 0x3f
	}

	s := DefaultSettings()
	s.Workers = 1
	serial, err := RemoveBackground(r, s)
	require.NoError(t, err)

	s.Workers = 5
	par, err := RemoveBackground(r, s)
	require.NoError(t, err)
	assert.Equal(t, serial.Pix, par.Pix)
}

func TestSettings(t *testing.T) {
	t.Parallel()

	m, err := ParseMode("simple")
	require.NoError(t, err)
	assert.Equal(t, ModeSimple, m)
	assert.Equal(t, "simple", m.String())

	_, err = ParseMode("magic")
	assert.Error(t, err)

	s := DefaultSettings()
	assert.Equal(t, s, s.Clamp())
	assert.Equal(t, "smart:t30:e3:f2:red", s.Key())
}

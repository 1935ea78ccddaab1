package segment

import "math"

var inf = math.Inf(1)

const (
	// Opaque 完全不透明
	Opaque uint8 = 255
	// Transparent 完全透明
	Transparent uint8 = 0
)

// EdgeAlpha 背景色但位于边缘上的像素保留的 alpha：floor(255*0.3)
var EdgeAlpha = uint8(math.Floor(255 * 0.3))

// AlphaMask 每像素 alpha，初始全部为 255
type AlphaMask struct {
	Width  int
	Height int
	Alpha  []uint8
}

func NewAlphaMask(width, height int) *AlphaMask {
	m := &AlphaMask{Width: width, Height: height, Alpha: make([]uint8, width*height)}
	for i := range m.Alpha {
		m.Alpha[i] = Opaque
	}
	return m
}

func (m *AlphaMask) At(x, y int) uint8 {
	return m.Alpha[y*m.Width+x]
}

func (m *AlphaMask) Set(x, y int, a uint8) {
	m.Alpha[y*m.Width+x] = a
}

// Clone 深拷贝
func (m *AlphaMask) Clone() *AlphaMask {
	out := &AlphaMask{Width: m.Width, Height: m.Height, Alpha: make([]uint8, len(m.Alpha))}
	copy(out.Alpha, m.Alpha)
	return out
}

// Classify 根据到调色板的最小距离和边缘图生成原始 alpha 掩码
//
//	距离 < tolerance 且不是边缘 → 0
//	距离 < tolerance 且是边缘   → EdgeAlpha
//	其它                        → 255
func Classify(r *Raster, edges *EdgeMask, palette Palette, tolerance float64) *AlphaMask {
	return classify(r, edges, palette, tolerance, 0)
}

func classify(r *Raster, edges *EdgeMask, palette Palette, tolerance float64, workers int) *AlphaMask {
	w, h := r.Width, r.Height
	mask := NewAlphaMask(w, h)

	forEachRowBand(h, workers, func(y0, y1 int) {
		for i := y0 * w; i < y1*w; i++ {
			p := r.Pix[i*4 : i*4+3]
			d := palette.Nearest(RGB{R: p[0], G: p[1], B: p[2]})
			if d >= tolerance {
				continue
			}
			if edges != nil && edges.Edges[i] {
				mask.Alpha[i] = EdgeAlpha
			} else {
				mask.Alpha[i] = Transparent
			}
		}
	})
	return mask
}

// ClassifyLuminance simple 模式：亮度与纯白的差小于 tolerance 视为背景
func ClassifyLuminance(r *Raster, tolerance float64) *AlphaMask {
	return classifyLuminance(r, tolerance, 0)
}

func classifyLuminance(r *Raster, tolerance float64, workers int) *AlphaMask {
	w, h := r.Width, r.Height
	mask := NewAlphaMask(w, h)

	forEachRowBand(h, workers, func(y0, y1 int) {
		for i := y0 * w; i < y1*w; i++ {
			p := r.Pix[i*4 : i*4+3]
			if 255-Luminance(RGB{R: p[0], G: p[1], B: p[2]}) < tolerance {
				mask.Alpha[i] = Transparent
			}
		}
	})
	return mask
}

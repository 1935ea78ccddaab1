package segment

var (
	blue  = RGB{B: 255}
	red   = RGB{R: 255}
	white = RGB{R: 255, G: 255, B: 255}
	black = RGB{}
)

func uniform(w, h int, c RGB) *Raster {
	r := NewRaster(w, h)
	r.Fill(c, 255)
	return r
}

// ringImage 外圈 border 颜色，内部 inner 颜色
func ringImage(w, h, ring int, border, inner RGB) *Raster {
	r := uniform(w, h, border)
	for y := ring; y < h-ring; y++ {
		for x := ring; x < w-ring; x++ {
			r.Set(x, y, inner, 255)
		}
	}
	return r
}

func maskFrom(w, h int, alpha ...uint8) *AlphaMask {
	m := &AlphaMask{Width: w, Height: h, Alpha: make([]uint8, w*h)}
	copy(m.Alpha, alpha)
	return m
}

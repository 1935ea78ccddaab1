package segment

import "math"

// RGB 颜色三元组（8 位通道）
type RGB struct {
	R, G, B uint8
}

// MaxColorDistance 两个 RGB 颜色之间可能的最大欧氏距离 sqrt(3)*255
var MaxColorDistance = math.Sqrt(3) * 255

// ColorDistance 计算两个颜色在 RGB 空间中的欧氏距离
func ColorDistance(a, b RGB) float64 {
	dr := float64(a.R) - float64(b.R)
	dg := float64(a.G) - float64(b.G)
	db := float64(a.B) - float64(b.B)
	return math.Sqrt(dr*dr + dg*dg + db*db)
}

// Luminance 亮度 0.299R + 0.587G + 0.114B，范围 [0,255]
func Luminance(c RGB) float64 {
	return 0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)
}

package util

import (
	"github.com/chaos-io/bgcut/segment"
	"github.com/lucasb-eyer/go-colorful"
)

// HexColor 把 RGB 转为 #rrggbb
func HexColor(c segment.RGB) string {
	return colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}.Hex()
}

func PaletteHex(p segment.Palette) []string {
	out := make([]string, 0, len(p))
	for _, c := range p {
		out = append(out, HexColor(c))
	}
	return out
}

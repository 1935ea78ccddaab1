package segment

import "math"

// Feather 对原始掩码做羽化，radius 为 0 时原样返回一份拷贝
//
// 只有距图像边界至少 radius 的 alpha==0 像素作为源；
// 半径内 raw alpha>0 的邻居取 floor(255*(1-d/radius)) 与当前输出的较小值。
// 只读取 raw，所以结果与遍历顺序无关。
func Feather(raw *AlphaMask, radius int) *AlphaMask {
	out := raw.Clone()
	if radius <= 0 {
		return out
	}

	w, h := raw.Width, raw.Height
	offsets := featherOffsets(radius)

	for y := radius; y < h-radius; y++ {
		for x := radius; x < w-radius; x++ {
			if raw.Alpha[y*w+x] != 0 {
				continue
			}
			for _, o := range offsets {
				i := (y+o.dy)*w + x + o.dx
				if raw.Alpha[i] == 0 {
					continue
				}
				if o.alpha < out.Alpha[i] {
					out.Alpha[i] = o.alpha
				}
			}
		}
	}
	return out
}

type featherOffset struct {
	dx, dy int
	alpha  uint8
}

// featherOffsets 预先计算半径内每个偏移对应的候选 alpha
func featherOffsets(radius int) []featherOffset {
	var offsets []featherOffset
	r := float64(radius)
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			d := math.Sqrt(float64(dx*dx + dy*dy))
			if d > r {
				continue
			}
			fade := 1 - d/r
			offsets = append(offsets, featherOffset{dx: dx, dy: dy, alpha: uint8(math.Floor(255 * fade))})
		}
	}
	return offsets
}

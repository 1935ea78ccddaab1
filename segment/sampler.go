package segment

import "sort"

const (
	// SampleStride 边框采样步长
	SampleStride = 5
	// ClusterDistance 采样颜色归入已有簇的距离阈值
	ClusterDistance = 30.0
	// PaletteSize 调色板最多保留的背景色数量
	PaletteSize = 3
)

// ColorSample 采样得到的颜色及其出现次数
type ColorSample struct {
	Color RGB
	Count int
}

// Palette 按出现频率降序排列的背景色
type Palette []RGB

// SampleClusters 沿四条边框每隔 SampleStride 个像素采样并聚簇
// 顺序：上下两行按列交替，然后左右两列按行交替
// 新样本归入第一个距离在 ClusterDistance 以内的簇，不做二次合并
// 返回结果已按次数稳定降序排序
func SampleClusters(r *Raster) []ColorSample {
	w, h := r.Width, r.Height
	var samples []ColorSample
	if w < 1 || h < 1 {
		return samples
	}

	add := func(x, y int) {
		c := r.RGBAt(x, y)
		for i := range samples {
			if ColorDistance(samples[i].Color, c) < ClusterDistance {
				samples[i].Count++
				return
			}
		}
		samples = append(samples, ColorSample{Color: c, Count: 1})
	}

	for x := 0; x < w; x += SampleStride {
		add(x, 0)
		add(x, h-1)
	}
	for y := 0; y < h; y += SampleStride {
		add(0, y)
		add(w-1, y)
	}

	sort.SliceStable(samples, func(i, j int) bool {
		return samples[i].Count > samples[j].Count
	})
	return samples
}

// SampleBackground 估计背景色调色板（最多 PaletteSize 个）
func SampleBackground(r *Raster) Palette {
	samples := SampleClusters(r)
	n := min(len(samples), PaletteSize)
	palette := make(Palette, n)
	for i := 0; i < n; i++ {
		palette[i] = samples[i].Color
	}
	return palette
}

// Nearest 返回与 c 最近的调色板距离，空调色板返回 +Inf
func (p Palette) Nearest(c RGB) float64 {
	best := inf
	for _, bg := range p {
		if d := ColorDistance(bg, c); d < best {
			best = d
		}
	}
	return best
}

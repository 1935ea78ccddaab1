package segment

import "math"

// EdgeChannel 参与 Sobel 计算的通道
type EdgeChannel int

const (
	// EdgeChannelRed 只取红色通道（默认，保持原有结果）
	EdgeChannelRed EdgeChannel = iota
	// EdgeChannelLuminance 使用亮度，对彩色图更稳健
	EdgeChannelLuminance
)

func (c EdgeChannel) String() string {
	switch c {
	case EdgeChannelLuminance:
		return "luminance"
	default:
		return "red"
	}
}

// ParseEdgeChannel 解析配置中的通道名，未知值返回 false
func ParseEdgeChannel(s string) (EdgeChannel, bool) {
	switch s {
	case "", "red":
		return EdgeChannelRed, true
	case "luminance", "luma":
		return EdgeChannelLuminance, true
	}
	return EdgeChannelRed, false
}

// EdgeMask 边缘图，true 表示该像素梯度幅值超过阈值
type EdgeMask struct {
	Width  int
	Height int
	Edges  []bool
}

func (m *EdgeMask) At(x, y int) bool {
	return m.Edges[y*m.Width+x]
}

// Count 边缘像素数量
func (m *EdgeMask) Count() int {
	n := 0
	for _, e := range m.Edges {
		if e {
			n++
		}
	}
	return n
}

type edgeConfig struct {
	channel EdgeChannel
	workers int
}

type EdgeOption func(*edgeConfig)

func WithEdgeChannel(c EdgeChannel) EdgeOption {
	return func(cfg *edgeConfig) { cfg.channel = c }
}

// WithEdgeWorkers 并发行带数，<=0 时取 GOMAXPROCS
func WithEdgeWorkers(n int) EdgeOption {
	return func(cfg *edgeConfig) { cfg.workers = n }
}

// EdgeThreshold 灵敏度换算成 Sobel 幅值阈值
func EdgeThreshold(sensitivity float64) float64 {
	return sensitivity * 10
}

// DetectEdges 3x3 Sobel 边缘检测
// 只计算内部像素，图像最外一圈永远不是边缘
func DetectEdges(r *Raster, threshold float64, opts ...EdgeOption) *EdgeMask {
	cfg := edgeConfig{channel: EdgeChannelRed}
	for _, opt := range opts {
		opt(&cfg)
	}

	w, h := r.Width, r.Height
	mask := &EdgeMask{Width: w, Height: h, Edges: make([]bool, w*h)}
	if w < 3 || h < 3 {
		return mask
	}

	// 先取出单通道，避免在卷积里反复换算
	ch := make([]float64, w*h)
	for i := range ch {
		p := r.Pix[i*4 : i*4+3]
		if cfg.channel == EdgeChannelLuminance {
			ch[i] = Luminance(RGB{R: p[0], G: p[1], B: p[2]})
		} else {
			ch[i] = float64(p[0])
		}
	}

	forEachRowBand(h-2, cfg.workers, func(b0, b1 int) {
		for y := b0 + 1; y < b1+1; y++ {
			up, row, down := (y-1)*w, y*w, (y+1)*w
			for x := 1; x < w-1; x++ {
				gx := -ch[up+x-1] + ch[up+x+1] -
					2*ch[row+x-1] + 2*ch[row+x+1] -
					ch[down+x-1] + ch[down+x+1]
				gy := -ch[up+x-1] - 2*ch[up+x] - ch[up+x+1] +
					ch[down+x-1] + 2*ch[down+x] + ch[down+x+1]
				if math.Sqrt(gx*gx+gy*gy) > threshold {
					mask.Edges[row+x] = true
				}
			}
		}
	})
	return mask
}

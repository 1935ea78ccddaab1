package segment

import (
	"fmt"
	"math"
)

// Mode 分割管线类型
type Mode int

const (
	// ModeSmart 边框采样 + 边缘检测 + 羽化
	ModeSmart Mode = iota
	// ModeSimple 只按亮度阈值
	ModeSimple
)

func (m Mode) String() string {
	if m == ModeSimple {
		return "simple"
	}
	return "smart"
}

// ParseMode 解析 "smart"/"simple"，空串视为 smart
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "smart":
		return ModeSmart, nil
	case "simple":
		return ModeSimple, nil
	}
	return ModeSmart, fmt.Errorf("unknown mode %q", s)
}

// 参数取值范围
const (
	MinColorTolerance  = 10.0
	MaxColorTolerance  = 100.0
	MinEdgeSensitivity = 1.0
	MaxEdgeSensitivity = 10.0
	MinFeatherRadius   = 0
	MaxFeatherRadius   = 5
)

// Settings 一次处理的参数，处理期间不变
type Settings struct {
	Mode Mode
	// ColorTolerance 判定为背景的颜色距离阈值，10-100
	ColorTolerance float64
	// EdgeSensitivity 边缘灵敏度，乘 10 作为 Sobel 阈值，1-10
	EdgeSensitivity float64
	// FeatherRadius 羽化半径（像素），0-5
	FeatherRadius int
	EdgeChannel   EdgeChannel
	// Workers 行并发数，<=0 时取 GOMAXPROCS
	Workers int
}

func DefaultSettings() Settings {
	return Settings{
		Mode:            ModeSmart,
		ColorTolerance:  30,
		EdgeSensitivity: 3,
		FeatherRadius:   2,
		EdgeChannel:     EdgeChannelRed,
	}
}

// Clamp 把三个可调参数限制在合法区间内，NaN 取默认值
func (s Settings) Clamp() Settings {
	d := DefaultSettings()
	s.ColorTolerance = clamp(orDefault(s.ColorTolerance, d.ColorTolerance), MinColorTolerance, MaxColorTolerance)
	s.EdgeSensitivity = clamp(orDefault(s.EdgeSensitivity, d.EdgeSensitivity), MinEdgeSensitivity, MaxEdgeSensitivity)
	s.FeatherRadius = clamp(s.FeatherRadius, MinFeatherRadius, MaxFeatherRadius)
	return s
}

// Key 用于缓存的稳定字符串表示
func (s Settings) Key() string {
	return fmt.Sprintf("%s:t%g:e%g:f%d:%s", s.Mode, s.ColorTolerance, s.EdgeSensitivity, s.FeatherRadius, s.EdgeChannel)
}

func clamp[T int | float64](v, lo, hi T) T {
	return max(lo, min(hi, v))
}

func orDefault(v, def float64) float64 {
	if math.IsNaN(v) {
		return def
	}
	return v
}

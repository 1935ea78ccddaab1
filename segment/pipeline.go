package segment

// Result 一次处理的全部中间结果
type Result struct {
	Settings Settings
	Palette  Palette
	// Edges simple 模式下为 nil
	Edges   *EdgeMask
	RawMask *AlphaMask
	Mask    *AlphaMask
	Output  *Raster
}

// Process 执行完整管线并保留中间结果
// 参数会先被 Clamp 到合法区间
func Process(r *Raster, s Settings) (*Result, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	s = s.Clamp()
	res := &Result{Settings: s}

	switch s.Mode {
	case ModeSimple:
		res.RawMask = classifyLuminance(r, s.ColorTolerance, s.Workers)
	default:
		res.Palette = SampleBackground(r)
		res.Edges = DetectEdges(r, EdgeThreshold(s.EdgeSensitivity),
			WithEdgeChannel(s.EdgeChannel), WithEdgeWorkers(s.Workers))
		res.RawMask = classify(r, res.Edges, res.Palette, s.ColorTolerance, s.Workers)
	}

	res.Mask = Feather(res.RawMask, s.FeatherRadius)

	out, err := Composite(r, res.Mask)
	if err != nil {
		return nil, err
	}
	res.Output = out
	return res, nil
}

// RemoveBackground 去除背景，返回新图像
func RemoveBackground(r *Raster, s Settings) (*Raster, error) {
	res, err := Process(r, s)
	if err != nil {
		return nil, err
	}
	return res.Output, nil
}

package segment

import "fmt"

// Composite 用掩码替换 alpha 通道，RGB 不变，返回新图像
func Composite(r *Raster, m *AlphaMask) (*Raster, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if m == nil || m.Width != r.Width || m.Height != r.Height || len(m.Alpha) != r.Width*r.Height {
		return nil, fmt.Errorf("%w: mask does not match raster %dx%d", ErrInvalidInput, r.Width, r.Height)
	}

	out := &Raster{Width: r.Width, Height: r.Height, Pix: make([]uint8, len(r.Pix))}
	copy(out.Pix, r.Pix)
	for i, a := range m.Alpha {
		out.Pix[i*4+3] = a
	}
	return out, nil
}

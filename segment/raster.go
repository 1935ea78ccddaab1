package segment

import (
	"fmt"
	"image"
	"image/draw"
)

// Raster 非预乘 RGBA 像素，行优先，左上角为原点，每像素 4 字节
type Raster struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewRaster 创建全透明黑色的 W×H 图像
func NewRaster(width, height int) *Raster {
	return &Raster{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, 4*width*height),
	}
}

// FromImage 把任意 image.Image 转为 Raster（坐标平移到 0,0）
func FromImage(img image.Image) *Raster {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	src, ok := img.(*image.NRGBA)
	if !ok {
		src = image.NewNRGBA(image.Rect(0, 0, w, h))
		draw.Draw(src, src.Bounds(), img, b.Min, draw.Src)
	}

	r := NewRaster(w, h)
	for y := 0; y < h; y++ {
		off := src.PixOffset(src.Rect.Min.X, src.Rect.Min.Y+y)
		copy(r.Pix[y*w*4:(y+1)*w*4], src.Pix[off:off+w*4])
	}
	return r
}

// NRGBA 导出为 *image.NRGBA，像素数据是拷贝
func (r *Raster) NRGBA() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, r.Width, r.Height))
	copy(img.Pix, r.Pix)
	return img
}

// Validate 检查尺寸与像素长度
func (r *Raster) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: nil raster", ErrInvalidInput)
	}
	if r.Width < 1 || r.Height < 1 {
		return fmt.Errorf("%w: raster size %dx%d", ErrInvalidInput, r.Width, r.Height)
	}
	if len(r.Pix) != 4*r.Width*r.Height {
		return fmt.Errorf("%w: raster has %d bytes, want %d", ErrInvalidInput, len(r.Pix), 4*r.Width*r.Height)
	}
	return nil
}

func (r *Raster) RGBAt(x, y int) RGB {
	i := (y*r.Width + x) * 4
	return RGB{R: r.Pix[i], G: r.Pix[i+1], B: r.Pix[i+2]}
}

func (r *Raster) AlphaAt(x, y int) uint8 {
	return r.Pix[(y*r.Width+x)*4+3]
}

// Set 写入一个像素，测试和构造输入用
func (r *Raster) Set(x, y int, c RGB, a uint8) {
	i := (y*r.Width + x) * 4
	r.Pix[i] = c.R
	r.Pix[i+1] = c.G
	r.Pix[i+2] = c.B
	r.Pix[i+3] = a
}

// Fill 用单一颜色填满整张图
func (r *Raster) Fill(c RGB, a uint8) {
	for i := 0; i < len(r.Pix); i += 4 {
		r.Pix[i] = c.R
		r.Pix[i+1] = c.G
		r.Pix[i+2] = c.B
		r.Pix[i+3] = a
	}
}

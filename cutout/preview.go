package cutout

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
)

// MaskImage 把 alpha 通道导出为灰度图，白色为保留的主体
func MaskImage(img *image.NRGBA) *image.Gray {
	b := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			gray.Pix[y*gray.Stride+x] = img.Pix[img.PixOffset(b.Min.X+x, b.Min.Y+y)+3]
		}
	}
	return gray
}

// Thumbnail 等比缩放到 size×size 以内，放在棋盘格底上方便查看透明区域
func Thumbnail(img image.Image, size int) *image.RGBA {
	b := img.Bounds()
	ratio := math.Min(float64(size)/float64(b.Dx()), float64(size)/float64(b.Dy()))
	nw, nh := max(1, int(float64(b.Dx())*ratio)), max(1, int(float64(b.Dy())*ratio))

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	checkerboard(dst, 8)
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

func checkerboard(img *image.RGBA, cell int) {
	light := color.RGBA{R: 0xee, G: 0xee, B: 0xee, A: 0xff}
	dark := color.RGBA{R: 0xbb, G: 0xbb, B: 0xbb, A: 0xff}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if (x/cell+y/cell)%2 == 0 {
				img.SetRGBA(x, y, light)
			} else {
				img.SetRGBA(x, y, dark)
			}
		}
	}
}

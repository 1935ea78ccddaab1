package cutout

import (
	"image"
	"image/draw"

	"github.com/nfnt/resize"
)

// hasUsefulAlpha 检查 alpha 通道是否真的包含透明信息
// 只要存在非 255（非完全不透明），就认为“已有抠图”
func hasUsefulAlpha(img *image.NRGBA) bool {
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 255 {
			return true
		}
	}
	return false
}

// resizeWithinMax 缩放（最长边 <= maxSize）
func resizeWithinMax(img *image.NRGBA, maxSize int) *image.NRGBA {
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	longest := max(w, h)

	if longest <= maxSize {
		return img
	}

	scale := float64(maxSize) / float64(longest)
	newW := max(1, int(float64(w)*scale))
	newH := max(1, int(float64(h)*scale))

	resized := resize.Resize(uint(newW), uint(newH), img, resize.Lanczos3)
	return toNRGBA(resized)
}

// cropSquare 以主体中心、最长边为边长裁剪正方形，超出部分被截掉
func cropSquare(img *image.NRGBA, bbox image.Rectangle) *image.NRGBA {
	cx := (bbox.Min.X + bbox.Max.X) / 2
	cy := (bbox.Min.Y + bbox.Max.Y) / 2
	size := max(bbox.Dx(), bbox.Dy())

	half := size / 2
	rect := image.Rect(
		cx-half, cy-half,
		cx-half+size, cy-half+size,
	)
	return crop(img, rect)
}

func crop(img *image.NRGBA, rect image.Rectangle) *image.NRGBA {
	rect = rect.Intersect(img.Bounds())
	dst := image.NewNRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(dst, dst.Bounds(), img, rect.Min, draw.Src)
	return dst
}

func toNRGBA(img image.Image) *image.NRGBA {
	if nrgba, ok := img.(*image.NRGBA); ok {
		return nrgba
	}
	b := img.Bounds()
	dst := image.NewNRGBA(b)
	draw.Draw(dst, b, img, b.Min, draw.Src)
	return dst
}

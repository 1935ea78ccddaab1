package cutout

import (
	"context"
	"errors"
	"image"

	"github.com/chaos-io/bgcut/rembg"
)

// ErrNoForeground 抠图后没有任何不透明像素
var ErrNoForeground = errors.New("no foreground detected")

// Options 抠图前后的可选处理
type Options struct {
	// MaxSize 最长边上限，0 表示不缩放
	MaxSize int
	// KeepExistingAlpha 输入已带透明信息时跳过抠图
	KeepExistingAlpha bool
	// Trim 裁剪到主体 alpha 包围盒
	Trim bool
	// Square 裁剪时以主体中心取正方形
	Square bool
	// TrimThreshold alpha 大于 TrimThreshold*255 的像素视为主体
	TrimThreshold float64
	// Premultiply 输出预乘 alpha（背景变黑，去除白边）
	Premultiply bool
}

func DefaultOptions() Options {
	return Options{
		MaxSize:           0,
		KeepExistingAlpha: true,
		TrimThreshold:     0.5,
	}
}

type Processor struct {
	RemBG rembg.Remover
	opts  Options
}

func NewProcessor(remover rembg.Remover, opts Options) *Processor {
	return &Processor{
		RemBG: remover,
		opts:  opts,
	}
}

// Process 把任意输入图片变成
//
//	尺寸 ≤ MaxSize（如果设置）
//	背景 alpha 被移除
//	可选裁剪到主体、可选预乘
func (p *Processor) Process(ctx context.Context, input image.Image) (*image.NRGBA, error) {
	src := toNRGBA(input)

	// 判断是否已有有效 Alpha，要在缩放前检查
	skip := p.opts.KeepExistingAlpha && hasUsefulAlpha(src)

	if p.opts.MaxSize > 0 {
		src = resizeWithinMax(src, p.opts.MaxSize)
	}

	output := src
	if !skip {
		removed, err := p.RemBG.Remove(ctx, src)
		if err != nil {
			return nil, err
		}
		output = toNRGBA(removed)
	}

	if p.opts.Trim {
		bbox, err := alphaBBox(output, p.opts.TrimThreshold)
		if err != nil {
			return nil, err
		}
		if p.opts.Square {
			output = cropSquare(output, bbox)
		} else {
			output = crop(output, bbox)
		}
	}

	if p.opts.Premultiply {
		output = premultiply(output)
	}

	return output, nil
}

// alphaBBox 从 alpha 通道计算主体 bounding box
// 把 alpha > threshold * 255 的像素当作“主体”，找所有主体像素的坐标
func alphaBBox(img *image.NRGBA, threshold float64) (image.Rectangle, error) {
	b := img.Bounds()
	th := uint8(threshold * 255)

	minX, minY := b.Max.X, b.Max.Y
	maxX, maxY := b.Min.X, b.Min.Y
	found := false

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.Pix[img.PixOffset(x, y)+3] <= th {
				continue
			}
			found = true
			minX, minY = min(minX, x), min(minY, y)
			maxX, maxY = max(maxX, x), max(maxY, y)
		}
	}

	if !found {
		return image.Rectangle{}, ErrNoForeground
	}

	return image.Rect(minX, minY, maxX+1, maxY+1), nil
}

// premultiply 预乘 Alpha，RGB × alpha，返回新图像
// 例如：红色半透明 (1,0,0,0.5) → (0.5,0,0)，背景自然变黑
func premultiply(src *image.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(src.Bounds())
	copy(img.Pix, src.Pix)
	for i := 0; i < len(img.Pix); i += 4 {
		a := float64(img.Pix[i+3]) / 255.0
		img.Pix[i] = uint8(float64(img.Pix[i]) * a)
		img.Pix[i+1] = uint8(float64(img.Pix[i+1]) * a)
		img.Pix[i+2] = uint8(float64(img.Pix[i+2]) * a)
	}
	return img
}

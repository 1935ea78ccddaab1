package rembg

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/chaos-io/bgcut/segment"
	"github.com/chaos-io/bgcut/util"
	"go.uber.org/zap"
)

type Remover interface {
	Remove(ctx context.Context, img image.Image) (image.Image, error)
}

// ColorRemover 基于边框颜色统计和边缘强度的抠图，不依赖模型
type ColorRemover struct {
	settings segment.Settings
}

func NewColorRemover(settings segment.Settings) *ColorRemover {
	return &ColorRemover{settings: settings.Clamp()}
}

func (c *ColorRemover) Settings() segment.Settings {
	return c.settings
}

// Remove 返回 *image.NRGBA，RGB 与输入一致，背景 alpha 被改写
func (c *ColorRemover) Remove(ctx context.Context, img image.Image) (image.Image, error) {
	res, err := c.Process(ctx, img)
	if err != nil {
		return nil, err
	}
	return res.Output.NRGBA(), nil
}

// Process 与 Remove 相同，但保留调色板和掩码等中间结果
func (c *ColorRemover) Process(ctx context.Context, img image.Image) (*segment.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	raster := segment.FromImage(img)
	res, err := segment.Process(raster, c.settings)
	if err != nil {
		return nil, fmt.Errorf("remove background: %w", err)
	}

	util.Logger.Debug("background removed",
		zap.String("mode", c.settings.Mode.String()),
		zap.Int("width", raster.Width),
		zap.Int("height", raster.Height),
		zap.Int("palette", len(res.Palette)),
		zap.Duration("cost", time.Since(start)))

	return res, nil
}

// NopRemover 原样返回输入
type NopRemover struct{}

func (NopRemover) Remove(ctx context.Context, img image.Image) (image.Image, error) {
	return img, ctx.Err()
}

// Recorder 记录最近一次分割的中间结果（调色板、边缘等），不可并发复用
type Recorder struct {
	*ColorRemover
	Result *segment.Result
}

func NewRecorder(settings segment.Settings) *Recorder {
	return &Recorder{ColorRemover: NewColorRemover(settings)}
}

func (r *Recorder) Remove(ctx context.Context, img image.Image) (image.Image, error) {
	res, err := r.Process(ctx, img)
	if err != nil {
		return nil, err
	}
	r.Result = res
	return res.Output.NRGBA(), nil
}

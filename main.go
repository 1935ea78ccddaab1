package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/chaos-io/bgcut/cache"
	"github.com/chaos-io/bgcut/config"
	"github.com/chaos-io/bgcut/cutout"
	"github.com/chaos-io/bgcut/rembg"
	"github.com/chaos-io/bgcut/segment"
	"github.com/chaos-io/bgcut/server"
	"github.com/chaos-io/bgcut/storage"
	"github.com/chaos-io/bgcut/util"
	nhttp "github.com/chaos-io/bgcut/util/http"
	"github.com/segmentio/ksuid"
	"go.uber.org/zap"
)

// 构建时通过 -ldflags 注入
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	configPath := flag.String("config", "config.yaml", "配置文件路径")
	serve := flag.Bool("serve", false, "启动 HTTP 服务")
	inputPath := flag.String("in", "", "输入图片，本地路径或 http(s) URL")
	outputPath := flag.String("out", "", "输出 PNG 路径，默认 <output.dir>/<ksuid>.png")
	mode := flag.String("mode", "", "smart 或 simple")
	tolerance := flag.Float64("tolerance", 0, "颜色容差 10-100")
	edge := flag.Float64("edge", 0, "边缘敏感度 1-10")
	feather := flag.Int("feather", -1, "羽化半径 0-5")
	channel := flag.String("channel", "", "边缘检测通道 red 或 luminance")
	trim := flag.Bool("trim", false, "裁剪到主体")
	square := flag.Bool("square", false, "裁剪为正方形，需配合 -trim")
	premul := flag.Bool("premultiply", false, "输出预乘 alpha")
	maskPath := flag.String("mask", "", "额外输出灰度掩码")
	thumbPath := flag.String("thumb", "", "额外输出棋盘格预览图")
	thumbSize := flag.Int("thumb-size", 256, "预览图边长")
	flag.Parse()

	cfg, err := config.New(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to load config:", err)
		os.Exit(1)
	}
	if err := util.InitLogger(cfg.Server.Mode); err != nil {
		fmt.Fprintln(os.Stderr, "Failed to init logger:", err)
		os.Exit(1)
	}
	defer util.Sync()

	if *serve {
		if err := runServer(cfg); err != nil {
			util.Logger.Fatal("server failed", zap.Error(err))
		}
		return
	}

	if *inputPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	// 命令行参数覆盖配置
	p := &cfg.Process
	if *mode != "" {
		p.Mode = *mode
	}
	if *tolerance > 0 {
		p.ColorTolerance = *tolerance
	}
	if *edge > 0 {
		p.EdgeSensitivity = *edge
	}
	if *feather >= 0 {
		p.FeatherRadius = *feather
	}
	if *channel != "" {
		p.EdgeChannel = *channel
	}

	settings, err := p.Settings()
	if err != nil {
		util.Logger.Fatal("invalid settings", zap.Error(err))
	}

	if *outputPath == "" {
		*outputPath = filepath.Join(cfg.Output.Dir, ksuid.New().String()+".png")
	}

	ctx := context.Background()
	var img image.Image
	if strings.HasPrefix(*inputPath, "http://") || strings.HasPrefix(*inputPath, "https://") {
		img, err = util.DownloadImage(ctx, nhttp.NewHTTPClient(), *inputPath)
	} else {
		img, err = util.OpenImage(*inputPath)
	}
	if err != nil {
		util.Logger.Fatal("failed to load image", zap.String("input", *inputPath), zap.Error(err))
	}

	remover := rembg.NewRecorder(settings)

	opts := cutout.DefaultOptions()
	opts.MaxSize = p.MaxSize
	opts.KeepExistingAlpha = p.KeepExistingAlpha
	opts.Trim = *trim
	opts.Square = *square
	opts.Premultiply = *premul

	done := util.Trace("remove background")
	out, err := cutout.NewProcessor(remover, opts).Process(ctx, img)
	done()
	if err != nil {
		util.Logger.Fatal("failed to remove background", zap.Error(err))
	}
	// 调色板来自实际参与分割的图像（缩放之后）
	if res := remover.Result; res != nil && settings.Mode == segment.ModeSmart {
		util.Logger.Info("background palette", zap.Strings("colors", util.PaletteHex(res.Palette)))
	}

	if err := util.SaveImage(out, *outputPath); err != nil {
		util.Logger.Fatal("failed to save image", zap.Error(err))
	}
	if *maskPath != "" {
		if err := util.SaveImage(cutout.MaskImage(out), *maskPath); err != nil {
			util.Logger.Fatal("failed to save mask", zap.Error(err))
		}
	}
	if *thumbPath != "" {
		if err := util.SaveImage(cutout.Thumbnail(out, *thumbSize), *thumbPath); err != nil {
			util.Logger.Fatal("failed to save thumbnail", zap.Error(err))
		}
	}

	util.Logger.Info("Done!",
		zap.String("output", *outputPath),
		zap.String("settings", settings.Key()))
}

func runServer(cfg *config.Config) error {
	store, err := storage.NewLocalStore(cfg.Output.Dir)
	if err != nil {
		return err
	}

	if cfg.Output.CleanupSpec != "" && cfg.Output.Retention > 0 {
		janitor, err := storage.NewJanitor(store, cfg.Output.CleanupSpec, cfg.Output.Retention)
		if err != nil {
			return err
		}
		janitor.Start()
		defer janitor.Stop()
	}

	// redis 不可用时不启用缓存
	var resultCache server.ResultCache
	if cfg.Redis.Enabled {
		rc := cache.NewRedisCache(&cfg.Redis)
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := rc.Ping(pingCtx)
		cancel()
		if err != nil {
			util.Logger.Warn("redis unavailable, cache disabled", zap.Error(err))
			_ = rc.Close()
		} else {
			defer func() { _ = rc.Close() }()
			resultCache = rc
		}
	}

	h := server.NewHandler(cfg, store, resultCache, server.BuildInfo{
		Version:   Version,
		BuildTime: BuildTime,
		GitCommit: GitCommit,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return server.Run(ctx, cfg, h)
}

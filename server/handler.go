package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/chaos-io/bgcut/cache"
	"github.com/chaos-io/bgcut/config"
	"github.com/chaos-io/bgcut/cutout"
	"github.com/chaos-io/bgcut/model"
	"github.com/chaos-io/bgcut/rembg"
	"github.com/chaos-io/bgcut/segment"
	"github.com/chaos-io/bgcut/storage"
	"github.com/chaos-io/bgcut/util"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const resultIDHeader = "X-Result-ID"

var errQueueTimeout = errors.New("processing queue timeout")

// ResultCache 结果元数据缓存，nil 表示不启用
type ResultCache interface {
	GetResult(ctx context.Context, key string) (*model.RemoveResult, error)
	SetResult(ctx context.Context, key string, result *model.RemoveResult) error
}

type Handler struct {
	cfg       *config.Config
	store     *storage.LocalStore
	cache     ResultCache
	build     BuildInfo
	semaphore chan struct{}
}

func NewHandler(cfg *config.Config, store *storage.LocalStore, cache ResultCache, build BuildInfo) *Handler {
	n := cfg.Server.MaxConcurrent
	if n <= 0 {
		n = 1
	}
	return &Handler{
		cfg:       cfg,
		store:     store,
		cache:     cache,
		build:     build,
		semaphore: make(chan struct{}, n),
	}
}

// removeForm 请求参数，未填写的沿用配置默认值
type removeForm struct {
	Mode            string   `form:"mode" binding:"omitempty,oneof=smart simple"`
	Tolerance       *float64 `form:"tolerance" binding:"omitempty,min=10,max=100"`
	EdgeSensitivity *float64 `form:"edge_sensitivity" binding:"omitempty,min=1,max=10"`
	FeatherRadius   *int     `form:"feather_radius" binding:"omitempty,min=0,max=5"`
	EdgeChannel     string   `form:"edge_channel" binding:"omitempty,oneof=red luminance"`
	Trim            bool     `form:"trim"`
	Square          bool     `form:"square"`
	Format          string   `form:"format" binding:"omitempty,oneof=json png"`
}

func (f removeForm) settings(base segment.Settings) (segment.Settings, error) {
	s := base
	if f.Mode != "" {
		mode, err := segment.ParseMode(f.Mode)
		if err != nil {
			return s, err
		}
		s.Mode = mode
	}
	if f.Tolerance != nil {
		s.ColorTolerance = *f.Tolerance
	}
	if f.EdgeSensitivity != nil {
		s.EdgeSensitivity = *f.EdgeSensitivity
	}
	if f.FeatherRadius != nil {
		s.FeatherRadius = *f.FeatherRadius
	}
	if f.EdgeChannel != "" {
		ch, ok := segment.ParseEdgeChannel(f.EdgeChannel)
		if !ok {
			return s, fmt.Errorf("unknown edge channel %q", f.EdgeChannel)
		}
		s.EdgeChannel = ch
	}
	return s.Clamp(), nil
}

// Remove 上传图片并去除背景
func (h *Handler) Remove(c *gin.Context) {
	data, ok := h.readUpload(c)
	if !ok {
		return
	}

	var form removeForm
	if err := c.ShouldBind(&form); err != nil {
		badRequest(c, "参数错误", err)
		return
	}

	base, err := h.cfg.Process.Settings()
	if err != nil {
		internalError(c, "默认处理参数错误", err)
		return
	}
	settings, err := form.settings(base)
	if err != nil {
		badRequest(c, "参数错误", err)
		return
	}

	opts := cutout.DefaultOptions()
	opts.MaxSize = h.cfg.Process.MaxSize
	opts.KeepExistingAlpha = h.cfg.Process.KeepExistingAlpha
	opts.Trim = form.Trim
	opts.Square = form.Square

	ctx := c.Request.Context()
	md5 := util.BytesMD5(data)
	cacheKey := cache.Key(md5, optionsKey(settings, opts))

	if result := h.cached(ctx, cacheKey); result != nil {
		util.Logger.Info("cache hit", zap.String("cache_key", cacheKey))
		h.respond(c, form.Format, result, nil)
		return
	}

	img, ok := h.decodeUpload(c, data)
	if !ok {
		return
	}

	if err := h.acquire(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, model.ErrorResponse{
			Success: false,
			Message: "服务繁忙，请稍后重试",
			Error:   err.Error(),
		})
		return
	}
	defer h.release()

	rec := rembg.NewRecorder(settings)
	out, err := cutout.NewProcessor(rec, opts).Process(ctx, img)
	if err != nil {
		if errors.Is(err, cutout.ErrNoForeground) {
			c.JSON(http.StatusUnprocessableEntity, model.ErrorResponse{
				Success: false,
				Message: "未检测到前景",
				Error:   err.Error(),
			})
			return
		}
		if errors.Is(err, segment.ErrInvalidInput) {
			badRequest(c, "图片尺寸无效", err)
			return
		}
		internalError(c, "图片处理失败", err)
		return
	}

	png, err := util.EncodePNG(out)
	if err != nil {
		internalError(c, "编码结果失败", err)
		return
	}
	id, err := h.store.Save(png)
	if err != nil {
		internalError(c, "保存结果失败", err)
		return
	}

	result := &model.RemoveResult{
		ID:          id,
		MD5:         md5,
		Width:       out.Bounds().Dx(),
		Height:      out.Bounds().Dy(),
		Mode:        settings.Mode.String(),
		Palette:     []string{},
		Transparent: countTransparent(out),
		DownloadURL: "/api/v1/result/" + id,
		Timestamp:   time.Now().Unix(),
	}
	if rec.Result != nil {
		result.Palette = util.PaletteHex(rec.Result.Palette)
		if rec.Result.Edges != nil {
			result.EdgePixels = rec.Result.Edges.Count()
		}
	}

	util.Logger.Info("image processed",
		zap.String("id", id),
		zap.String("md5", md5),
		zap.String("settings", settings.Key()),
		zap.Int("width", result.Width),
		zap.Int("height", result.Height))

	if h.cache != nil {
		if err := h.cache.SetResult(ctx, cacheKey, result); err != nil {
			util.Logger.Warn("failed to set cache", zap.Error(err))
		}
	}

	h.respond(c, form.Format, result, png)
}

// Palette 只做边框采样，返回背景色统计
func (h *Handler) Palette(c *gin.Context) {
	data, ok := h.readUpload(c)
	if !ok {
		return
	}

	img, ok := h.decodeUpload(c, data)
	if !ok {
		return
	}

	raster := segment.FromImage(img)
	if err := raster.Validate(); err != nil {
		badRequest(c, "图片尺寸无效", err)
		return
	}
	clusters := segment.SampleClusters(raster)
	samples := make([]model.PaletteSample, 0, len(clusters))
	for _, s := range clusters {
		samples = append(samples, model.PaletteSample{Color: util.HexColor(s.Color), Count: s.Count})
	}

	c.JSON(http.StatusOK, model.Response{
		Success: true,
		Message: "采样成功",
		Data: model.PaletteResult{
			Width:   raster.Width,
			Height:  raster.Height,
			Samples: samples,
			Palette: util.PaletteHex(segment.SampleBackground(raster)),
		},
	})
}

// Result 下载处理结果
func (h *Handler) Result(c *gin.Context) {
	path, err := h.store.Path(c.Param("id"))
	switch {
	case errors.Is(err, storage.ErrInvalidID):
		badRequest(c, "结果 ID 不合法", err)
	case errors.Is(err, storage.ErrNotFound):
		c.JSON(http.StatusNotFound, model.ErrorResponse{
			Success: false,
			Message: "结果不存在或已过期",
		})
	case err != nil:
		internalError(c, "查询结果失败", err)
	default:
		c.File(path)
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().Unix(),
	})
}

func (h *Handler) Version(c *gin.Context) {
	c.JSON(http.StatusOK, h.build)
}

// readUpload 读取 multipart 字段 image，校验大小和类型
func (h *Handler) readUpload(c *gin.Context) ([]byte, bool) {
	file, err := c.FormFile("image")
	if err != nil {
		badRequest(c, "请上传图片文件", err)
		return nil, false
	}

	if file.Size > h.cfg.Upload.MaxSize {
		c.JSON(http.StatusRequestEntityTooLarge, model.ErrorResponse{
			Success: false,
			Message: fmt.Sprintf("文件大小超过限制 (%d MB)", h.cfg.Upload.MaxSize/(1024*1024)),
		})
		return nil, false
	}

	if !h.isAllowedType(file.Header.Get("Content-Type")) {
		c.JSON(http.StatusUnsupportedMediaType, model.ErrorResponse{
			Success: false,
			Message: "不支持的文件类型",
		})
		return nil, false
	}

	f, err := file.Open()
	if err != nil {
		internalError(c, "读取上传文件失败", err)
		return nil, false
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		internalError(c, "读取上传文件失败", err)
		return nil, false
	}
	return data, true
}

// decodeUpload 先读取头部尺寸，超过像素上限时不再解码
func (h *Handler) decodeUpload(c *gin.Context, data []byte) (image.Image, bool) {
	conf, err := util.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		badRequest(c, "图片解码失败", err)
		return nil, false
	}

	limit := h.cfg.Upload.MaxPixels
	if limit > 0 && int64(conf.Width)*int64(conf.Height) > limit {
		c.JSON(http.StatusRequestEntityTooLarge, model.ErrorResponse{
			Success: false,
			Message: fmt.Sprintf("图片尺寸超过限制 (%d 像素)", limit),
			Error:   fmt.Sprintf("%dx%d", conf.Width, conf.Height),
		})
		return nil, false
	}

	img, err := util.DecodeImage(bytes.NewReader(data))
	if err != nil {
		badRequest(c, "图片解码失败", err)
		return nil, false
	}
	return img, true
}

func (h *Handler) isAllowedType(contentType string) bool {
	for _, allowed := range h.cfg.Upload.AllowedTypes {
		if strings.EqualFold(contentType, allowed) {
			return true
		}
	}
	return false
}

// cached 命中缓存且结果文件仍在时返回
func (h *Handler) cached(ctx context.Context, key string) *model.RemoveResult {
	if h.cache == nil {
		return nil
	}
	result, err := h.cache.GetResult(ctx, key)
	if err != nil {
		util.Logger.Warn("failed to get cache", zap.Error(err))
		return nil
	}
	if result == nil || !h.store.Exists(result.ID) {
		return nil
	}
	return result
}

func (h *Handler) acquire(ctx context.Context) error {
	timeout := h.cfg.Server.QueueTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	select {
	case h.semaphore <- struct{}{}:
		return nil
	case <-ctx.Done():
		return errQueueTimeout
	}
}

func (h *Handler) release() {
	<-h.semaphore
}

func (h *Handler) respond(c *gin.Context, format string, result *model.RemoveResult, png []byte) {
	if format != "png" {
		c.JSON(http.StatusOK, model.Response{
			Success: true,
			Message: "处理成功",
			Data:    result,
		})
		return
	}

	c.Header(resultIDHeader, result.ID)
	if png != nil {
		c.Data(http.StatusOK, "image/png", png)
		return
	}
	path, err := h.store.Path(result.ID)
	if err != nil {
		internalError(c, "查询结果失败", err)
		return
	}
	c.File(path)
}

func optionsKey(s segment.Settings, opts cutout.Options) string {
	return fmt.Sprintf("%s:max%d:trim%t:sq%t:keep%t", s.Key(), opts.MaxSize, opts.Trim, opts.Square, opts.KeepExistingAlpha)
}

func countTransparent(img *image.NRGBA) int {
	n := 0
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] == 0 {
			n++
		}
	}
	return n
}

func badRequest(c *gin.Context, msg string, err error) {
	c.JSON(http.StatusBadRequest, model.ErrorResponse{
		Success: false,
		Message: msg,
		Error:   err.Error(),
	})
}

func internalError(c *gin.Context, msg string, err error) {
	util.Logger.Error(msg, zap.Error(err))
	c.JSON(http.StatusInternalServerError, model.ErrorResponse{
		Success: false,
		Message: msg,
		Error:   err.Error(),
	})
}

package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/chaos-io/bgcut/config"
	"github.com/chaos-io/bgcut/util"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BuildInfo 构建信息，由 main 通过 -ldflags 注入
type BuildInfo struct {
	Version   string `json:"version"`
	BuildTime string `json:"build_time"`
	GitCommit string `json:"git_commit"`
}

func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(Logger())
	r.Use(CORS())
	r.MaxMultipartMemory = h.cfg.Upload.MaxSize

	r.GET("/health", h.Health)
	r.GET("/version", h.Version)

	api := r.Group("/api/v1")
	{
		api.POST("/remove", h.Remove)
		api.POST("/palette", h.Palette)
		api.GET("/result/:id", h.Result)
	}
	return r
}

// Run 启动 HTTP 服务，ctx 取消后优雅退出
func Run(ctx context.Context, cfg *config.Config, h *Handler) error {
	gin.SetMode(cfg.Server.Mode)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      NewRouter(h),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		util.Logger.Info("server starting", zap.String("port", cfg.Server.Port))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		util.Logger.Info("server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

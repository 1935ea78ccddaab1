package storage

import (
	"fmt"
	"time"

	"github.com/chaos-io/bgcut/util"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Janitor 按 cron 表达式定期清理过期结果
type Janitor struct {
	store     *LocalStore
	retention time.Duration
	cron      *cron.Cron
}

func NewJanitor(store *LocalStore, spec string, retention time.Duration) (*Janitor, error) {
	j := &Janitor{
		store:     store,
		retention: retention,
		cron:      cron.New(),
	}
	if _, err := j.cron.AddFunc(spec, j.RunOnce); err != nil {
		return nil, fmt.Errorf("invalid cleanup spec %q: %w", spec, err)
	}
	return j, nil
}

// RunOnce 立即清理一次
func (j *Janitor) RunOnce() {
	n, err := j.store.Sweep(time.Now(), j.retention)
	if err != nil {
		util.Logger.Warn("sweep output dir", zap.String("dir", j.store.Dir()), zap.Error(err))
	}
	if n > 0 {
		util.Logger.Info("expired results removed", zap.Int("count", n), zap.Duration("retention", j.retention))
	}
}

func (j *Janitor) Start() {
	j.cron.Start()
}

// Stop 停止调度并等待正在执行的清理结束
func (j *Janitor) Stop() {
	<-j.cron.Stop().Done()
}

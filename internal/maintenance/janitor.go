// Package maintenance 提供可选的后台清理：按固定间隔调用 Store.Sweep，
// 用于限制惰性过期遗留在磁盘上的文件数量。
package maintenance

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/filecache/filecache/internal/logging"
)

// Sweeper 是 Janitor 依赖的最小接口，cache.Store 满足该接口。
type Sweeper interface {
	Dir() (string, error)
	Sweep(ctx context.Context) (int, error)
}

// Janitor 周期性清理过期条目，Run 返回前不会留下 goroutine。
type Janitor struct {
	store    Sweeper
	interval time.Duration
	logger   logrus.FieldLogger
}

// NewJanitor 构造清理器，interval 必须大于 0。
func NewJanitor(store Sweeper, interval time.Duration, logger logrus.FieldLogger) (*Janitor, error) {
	if store == nil {
		return nil, errors.New("store is required")
	}
	if interval <= 0 {
		return nil, errors.New("sweep interval must be positive")
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Janitor{store: store, interval: interval, logger: logger}, nil
}

// RunOnce 执行一次清理，每次运行带独立的 run_id 便于关联日志。
func (j *Janitor) RunOnce(ctx context.Context) (int, error) {
	runID := uuid.NewString()
	dir, err := j.store.Dir()
	fields := logging.SweepFields(runID, dir)
	if err != nil {
		j.logger.WithFields(fields).WithError(err).Warn("缓存目录不可用，跳过清理")
		return 0, err
	}

	started := time.Now()
	removed, err := j.store.Sweep(ctx)
	fields["removed"] = removed
	fields["elapsed_ms"] = time.Since(started).Milliseconds()
	if err != nil {
		j.logger.WithFields(fields).WithError(err).Warn("缓存清理失败")
		return removed, err
	}
	j.logger.WithFields(fields).Info("缓存清理完成")
	return removed, nil
}

// Run 阻塞直到 ctx 结束；单次清理失败只记录日志，不会中断循环。
func (j *Janitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			_, _ = j.RunOnce(ctx)
		}
	}
}

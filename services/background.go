package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"adaptive_coach/logger"
)

// Background 执行与请求生命周期脱离的后台任务。
// 任务失败只记录日志，调用方不等待结果
type Background struct {
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewBackground(timeout time.Duration) *Background {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Background{timeout: timeout}
}

// Go 提交一个后台任务，使用独立的带超时 context
func (b *Background) Go(name string, task func(ctx context.Context) error) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
		defer cancel()

		start := time.Now()
		if err := run(ctx, task); err != nil {
			logger.Warn("后台任务失败", "task", name, "error", err, "cost", time.Since(start).String())
			return
		}
		logger.Debug("后台任务完成", "task", name, "cost", time.Since(start).String())
	}()
}

// Wait 等待已提交的任务结束，关闭服务与测试使用
func (b *Background) Wait() {
	b.wg.Wait()
}

func run(ctx context.Context, task func(ctx context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return task(ctx)
}

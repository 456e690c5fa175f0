package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"adaptive_coach/config"
	"adaptive_coach/logger"
)

// ProfileRebuilder 批量重建活跃用户画像
type ProfileRebuilder interface {
	RebuildActiveProfiles(ctx context.Context, lookbackDays, concurrency int) error
}

// InquiryPusher 推送到期的问询
type InquiryPusher interface {
	PushDue(ctx context.Context) (success, failed int, err error)
}

// 将秒数转换为时间间隔
func secondsToDuration(seconds int) time.Duration {
	return time.Duration(seconds) * time.Second
}

// 验证小时和分钟是否有效
func validateHourMinute(cfg *config.Config, hour, minute int) (int, int) {
	defaultHour := cfg.Scheduler.DefaultHour
	defaultMinute := cfg.Scheduler.DefaultMinute

	if hour < 0 || hour > 23 {
		logger.Warn("无效的小时值", "hour", hour, "default", defaultHour)
		hour = defaultHour
	}
	if minute < 0 || minute > 59 {
		logger.Warn("无效的分钟值", "minute", minute, "default", defaultMinute)
		minute = defaultMinute
	}
	return hour, minute
}

// 计算下一个指定时间点
func getNextTimePoint(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if next.Before(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// 任务类型
type TaskType int

const (
	TaskProfileRebuild TaskType = iota
	TaskInquiryPush
)

// 任务状态
type TaskStatus struct {
	LastRun     time.Time
	NextRun     time.Time
	IsRunning   bool
	Description string
}

// 任务调度器
type Scheduler struct {
	cfg         *config.Config
	concurrency int
	rebuilder   ProfileRebuilder
	pusher      InquiryPusher
	tasks       map[TaskType]*TaskStatus
	mutex       sync.Mutex
	wg          sync.WaitGroup
	now         func() time.Time
}

// 创建新的调度器，pusher 为 nil 时不注册推送任务
func NewScheduler(cfg *config.Config, rebuilder ProfileRebuilder, pusher InquiryPusher) *Scheduler {
	concurrency := cfg.Cron.Concurrency
	if concurrency <= 0 {
		concurrency = 10
	}

	return &Scheduler{
		cfg:         cfg,
		concurrency: concurrency,
		rebuilder:   rebuilder,
		pusher:      pusher,
		tasks:       make(map[TaskType]*TaskStatus),
		now:         time.Now,
	}
}

// Start 初始化任务并启动主循环，ctx 取消后停止
func (s *Scheduler) Start(ctx context.Context) {
	s.initTasks(s.now())

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(ctx)
	}()

	logger.Info("调度器已启动", "check_interval_sec", s.checkInterval()/time.Second)
}

// Wait 等待主循环与正在执行的任务结束
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

func (s *Scheduler) checkInterval() time.Duration {
	checkInterval := s.cfg.Scheduler.CheckIntervalSec
	if checkInterval <= 0 {
		checkInterval = 60 // 默认值
	}
	return secondsToDuration(checkInterval)
}

// 初始化任务
func (s *Scheduler) initTasks(now time.Time) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	// 画像重建任务 - 根据debug模式决定运行频率
	if s.cfg.Debug.Enabled {
		freqSeconds := s.cfg.Debug.ProfileFreq
		s.tasks[TaskProfileRebuild] = &TaskStatus{
			NextRun:     now.Add(secondsToDuration(freqSeconds)),
			Description: fmt.Sprintf("画像重建 (Debug模式: 每%d秒)", freqSeconds),
		}
		logger.Info("Debug模式已启用", "frequency_seconds", freqSeconds)
	} else {
		hour, minute := validateHourMinute(s.cfg, s.cfg.Cron.ProfileHour, s.cfg.Cron.ProfileMin)
		nextRun := getNextTimePoint(now, hour, minute)
		s.tasks[TaskProfileRebuild] = &TaskStatus{
			LastRun:     nextRun.AddDate(0, 0, -1),
			NextRun:     nextRun,
			Description: fmt.Sprintf("画像重建 (%02d:%02d)", hour, minute),
		}
		logger.Info("正常模式", "schedule_time", fmt.Sprintf("%02d:%02d", hour, minute))
	}

	// 问询推送任务 - 按固定间隔检查，是否推送由用户的活跃时间段决定
	if s.pusher != nil {
		interval := s.cfg.Scheduler.PushIntervalSec
		s.tasks[TaskInquiryPush] = &TaskStatus{
			NextRun:     now.Add(secondsToDuration(interval)),
			Description: fmt.Sprintf("问询推送 (每%d秒)", interval),
		}
	}

	logger.Info("定时任务初始化完成", "task_count", len(s.tasks))
}

// 主循环
func (s *Scheduler) run(ctx context.Context) {
	ticker := time.NewTicker(s.checkInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("调度器已停止")
			return
		case <-ticker.C:
			s.checkTasks(ctx, s.now())
		}
	}
}

// 检查任务
func (s *Scheduler) checkTasks(ctx context.Context, now time.Time) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for taskType, status := range s.tasks {
		// 如果任务正在运行，跳过
		if status.IsRunning {
			continue
		}

		// 如果任务的NextRun为零值，跳过（表示不需要定期调度）
		if status.NextRun.IsZero() {
			continue
		}

		// 如果到达或超过下次运行时间，执行任务
		if !now.Before(status.NextRun) {
			status.IsRunning = true
			s.wg.Add(1)
			go func(taskType TaskType) {
				defer s.wg.Done()
				s.runTask(ctx, taskType, now)
			}(taskType)
		}
	}
}

// 计算任务的下次运行时间
func (s *Scheduler) nextRun(taskType TaskType, now time.Time) time.Time {
	switch taskType {
	case TaskProfileRebuild:
		if s.cfg.Debug.Enabled {
			freqSeconds := s.cfg.Debug.ProfileFreq
			if freqSeconds <= 0 {
				freqSeconds = 1800
			}
			return now.Add(secondsToDuration(freqSeconds))
		}
		hour, minute := validateHourMinute(s.cfg, s.cfg.Cron.ProfileHour, s.cfg.Cron.ProfileMin)
		return getNextTimePoint(now.Add(time.Minute), hour, minute)
	case TaskInquiryPush:
		interval := s.cfg.Scheduler.PushIntervalSec
		if interval <= 0 {
			interval = 600
		}
		return now.Add(secondsToDuration(interval))
	}
	return time.Time{}
}

func (s *Scheduler) description(taskType TaskType) string {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if status, ok := s.tasks[taskType]; ok {
		return status.Description
	}
	return "Unknown Task"
}

// 运行任务
func (s *Scheduler) runTask(ctx context.Context, taskType TaskType, now time.Time) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("任务执行panic", "task", taskType, "panic", r)
		}

		s.mutex.Lock()
		defer s.mutex.Unlock()

		status := s.tasks[taskType]
		status.IsRunning = false
		status.LastRun = now
		status.NextRun = s.nextRun(taskType, now)

		logger.Info("任务执行完成", "task", status.Description, "next_run", status.NextRun.Format("2006-01-02 15:04:05"))
	}()

	logger.Info("开始执行任务", "task", s.description(taskType))

	switch taskType {
	case TaskProfileRebuild:
		if err := s.rebuilder.RebuildActiveProfiles(ctx, s.cfg.Cron.LookbackDays, s.concurrency); err != nil {
			logger.Error("画像重建失败", "error", err)
		}
	case TaskInquiryPush:
		success, failed, err := s.pusher.PushDue(ctx)
		if err != nil {
			logger.Error("问询推送任务执行错误", "error", err)
			return
		}
		logger.Info("问询推送任务执行完成", "success", success, "failed", failed)
	}
}

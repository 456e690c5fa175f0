package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"adaptive_coach/config"
	"adaptive_coach/logger"
)

type fakeRebuilder struct {
	calls    atomic.Int32
	lookback atomic.Int32
	panics   bool
}

func (f *fakeRebuilder) RebuildActiveProfiles(_ context.Context, lookbackDays, _ int) error {
	f.calls.Add(1)
	f.lookback.Store(int32(lookbackDays))
	if f.panics {
		panic("rebuild exploded")
	}
	return nil
}

type fakePusher struct {
	calls atomic.Int32
}

func (f *fakePusher) PushDue(context.Context) (int, int, error) {
	f.calls.Add(1)
	return 0, 0, errors.New("push endpoint down")
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Cron.ProfileHour = 3
	cfg.Cron.ProfileMin = 30
	cfg.Cron.LookbackDays = 7
	cfg.Scheduler.PushIntervalSec = 600
	cfg.Scheduler.DefaultHour = 2
	cfg.Debug.ProfileFreq = 120
	return cfg
}

func TestGetNextTimePoint(t *testing.T) {
	now := time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC)
	if got := getNextTimePoint(now, 12, 15); !got.Equal(time.Date(2025, 3, 4, 12, 15, 0, 0, time.UTC)) {
		t.Errorf("later today = %v", got)
	}
	if got := getNextTimePoint(now, 9, 0); !got.Equal(time.Date(2025, 3, 5, 9, 0, 0, 0, time.UTC)) {
		t.Errorf("already passed = %v", got)
	}
	if got := getNextTimePoint(now, 10, 0); !got.Equal(now) {
		t.Errorf("exactly now = %v", got)
	}
}

func TestValidateHourMinute(t *testing.T) {
	logger.InitDiscard()
	cfg := testConfig()
	if h, m := validateHourMinute(cfg, 25, 61); h != 2 || m != 0 {
		t.Errorf("invalid values = %d:%d, want defaults 2:0", h, m)
	}
	if h, m := validateHourMinute(cfg, 23, 59); h != 23 || m != 59 {
		t.Errorf("valid values changed to %d:%d", h, m)
	}
}

func TestDailyRebuildTask(t *testing.T) {
	logger.InitDiscard()
	ctx := context.Background()
	rebuilder := &fakeRebuilder{}
	s := NewScheduler(testConfig(), rebuilder, nil)

	now := time.Date(2025, 3, 4, 1, 0, 0, 0, time.UTC)
	s.initTasks(now)
	if _, ok := s.tasks[TaskInquiryPush]; ok {
		t.Fatal("push task registered without a pusher")
	}
	due := time.Date(2025, 3, 4, 3, 30, 0, 0, time.UTC)
	if next := s.tasks[TaskProfileRebuild].NextRun; !next.Equal(due) {
		t.Fatalf("next run = %v, want %v", next, due)
	}

	s.checkTasks(ctx, now)
	s.Wait()
	if rebuilder.calls.Load() != 0 {
		t.Fatal("task ran before its schedule")
	}

	s.checkTasks(ctx, due)
	s.Wait()
	if rebuilder.calls.Load() != 1 || rebuilder.lookback.Load() != 7 {
		t.Fatalf("calls = %d lookback = %d", rebuilder.calls.Load(), rebuilder.lookback.Load())
	}
	status := s.tasks[TaskProfileRebuild]
	if status.IsRunning || !status.LastRun.Equal(due) || !status.NextRun.Equal(due.AddDate(0, 0, 1)) {
		t.Errorf("status after run = %+v", status)
	}
}

func TestDebugAndPushTasks(t *testing.T) {
	logger.InitDiscard()
	ctx := context.Background()
	cfg := testConfig()
	cfg.Debug.Enabled = true
	rebuilder := &fakeRebuilder{panics: true}
	pusher := &fakePusher{}
	s := NewScheduler(cfg, rebuilder, pusher)

	now := time.Date(2025, 3, 4, 1, 0, 0, 0, time.UTC)
	s.initTasks(now)
	if next := s.tasks[TaskProfileRebuild].NextRun; !next.Equal(now.Add(2 * time.Minute)) {
		t.Errorf("debug next run = %v", next)
	}
	if next := s.tasks[TaskInquiryPush].NextRun; !next.Equal(now.Add(10 * time.Minute)) {
		t.Errorf("push next run = %v", next)
	}

	at := now.Add(10 * time.Minute)
	s.checkTasks(ctx, at)
	s.Wait()
	if rebuilder.calls.Load() != 1 || pusher.calls.Load() != 1 {
		t.Fatalf("rebuild calls = %d push calls = %d", rebuilder.calls.Load(), pusher.calls.Load())
	}
	// panic 与错误之后任务仍按间隔继续调度
	if next := s.tasks[TaskProfileRebuild].NextRun; !next.Equal(at.Add(2 * time.Minute)) {
		t.Errorf("rebuild rescheduled to %v", next)
	}
	if next := s.tasks[TaskInquiryPush].NextRun; !next.Equal(at.Add(10 * time.Minute)) {
		t.Errorf("push rescheduled to %v", next)
	}
}

func TestStartStopsOnCancel(t *testing.T) {
	logger.InitDiscard()
	cfg := testConfig()
	cfg.Scheduler.CheckIntervalSec = 1
	s := NewScheduler(cfg, &fakeRebuilder{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		s.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}
}

package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"adaptive_coach/logger"
	"adaptive_coach/models"
	"adaptive_coach/repository"
)

// RefreshService 重建画像快照并同步每日信号
type RefreshService struct {
	profiles     ProfileStore
	calibrations CalibrationStore
	builder      *ProfileService
	ranker       *Ranker
	cache        FeedCache
	loc          *time.Location
	now          func() time.Time
}

func NewRefreshService(profiles ProfileStore, calibrations CalibrationStore, builder *ProfileService,
	ranker *Ranker, cache FeedCache, loc *time.Location) *RefreshService {
	if loc == nil {
		loc = time.UTC
	}
	return &RefreshService{
		profiles:     profiles,
		calibrations: calibrations,
		builder:      builder,
		ranker:       ranker,
		cache:        cache,
		loc:          loc,
		now:          time.Now,
	}
}

// RebuildProfile 重新计算标签、关键词与关注主题并写入 user_profiles
func (s *RefreshService) RebuildProfile(ctx context.Context, userID string) error {
	p, _, err := s.builder.BuildInterestProfile(ctx, userID)
	if err != nil {
		return fmt.Errorf("build profile %s: %w", userID, err)
	}
	derived := &models.DerivedProfile{
		UserID:      userID,
		Tags:        p.Tags,
		Keywords:    TopKeywords(s.ranker.ExpandKeywords(p.Tags)),
		FocusTopics: p.FocusTopics,
		UpdatedAt:   s.now(),
	}
	if err := s.profiles.UpsertDerivedProfile(ctx, derived); err != nil {
		return fmt.Errorf("save derived profile %s: %w", userID, err)
	}
	logger.Debug("画像快照已更新", "user_id", userID, "tags", len(derived.Tags), "keywords", len(derived.Keywords))
	return nil
}

// DerivedProfile 读取画像快照，没有快照时返回 nil
func (s *RefreshService) DerivedProfile(ctx context.Context, userID string) (*models.DerivedProfile, error) {
	p, err := s.profiles.GetDerivedProfile(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	return p, err
}

// SyncProfile 把今天的校准数据同步到画像，并清除该用户的推荐流缓存
func (s *RefreshService) SyncProfile(ctx context.Context, userID string) error {
	rec, err := s.calibrations.LatestCalibration(ctx, userID)
	if err != nil {
		return fmt.Errorf("load calibration %s: %w", userID, err)
	}
	today := s.now().In(s.loc).Format("2006-01-02")
	if rec != nil && rec.Date == today {
		sig := models.Signals{SleepHours: rec.SleepHours, StressLevel: rec.StressLevel}
		err := s.profiles.SyncProfileSignals(ctx, userID, sig, s.now())
		switch {
		case errors.Is(err, repository.ErrNotFound):
			logger.Debug("用户没有画像记录，跳过信号同步", "user_id", userID)
		case err != nil:
			return fmt.Errorf("sync signals %s: %w", userID, err)
		}
	}

	if s.cache != nil {
		if err := s.cache.InvalidateUser(ctx, userID); err != nil {
			logger.Warn("清除推荐流缓存失败", "user_id", userID, "error", err)
		}
	}
	return nil
}

// RebuildActiveProfiles 重建回溯窗口内活跃用户的画像
func (s *RefreshService) RebuildActiveProfiles(ctx context.Context, lookbackDays, concurrency int) error {
	since := s.now().AddDate(0, 0, -lookbackDays)
	userIDs, err := s.profiles.ListActiveUserIDs(ctx, since)
	if err != nil {
		return fmt.Errorf("list active users: %w", err)
	}
	logger.Info("开始重建活跃用户画像", "count", len(userIDs), "lookback_days", lookbackDays)

	s.RebuildProfilesWithConcurrency(ctx, userIDs, concurrency)
	return nil
}

// RebuildProfilesWithConcurrency 并发重建用户画像
func (s *RefreshService) RebuildProfilesWithConcurrency(ctx context.Context, userIDs []string, concurrency int) {
	if concurrency <= 0 {
		concurrency = 1
	}
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, concurrency)

	var mu sync.Mutex
	processed, failed := 0, 0

	for _, id := range userIDs {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		semaphore <- struct{}{} // acquire semaphore

		go func(userID string) {
			defer wg.Done()
			defer func() { <-semaphore }() // release semaphore

			err := s.RebuildProfile(ctx, userID)
			mu.Lock()
			defer mu.Unlock()
			processed++
			if err != nil {
				failed++
				logger.Error("重建用户画像失败", "user_id", userID, "error", err)
				return
			}
		}(id)
	}

	wg.Wait()
	logger.Info("所有用户画像重建完成",
		"processed", processed,
		"failed", failed,
	)
}

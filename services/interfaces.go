package services

import (
	"context"
	"time"

	"adaptive_coach/models"
)

// ProfileStore 用户画像存储
type ProfileStore interface {
	GetProfile(ctx context.Context, userID string) (*models.ProfileRecord, error)
	SyncProfileSignals(ctx context.Context, userID string, sig models.Signals, now time.Time) error
	UpsertDerivedProfile(ctx context.Context, p *models.DerivedProfile) error
	GetDerivedProfile(ctx context.Context, userID string) (*models.DerivedProfile, error)
	ListActiveUserIDs(ctx context.Context, since time.Time) ([]string, error)
}

// InquiryStore 问询记录存储
type InquiryStore interface {
	InsertInquiry(ctx context.Context, q *models.InquiryQuestion) error
	GetInquiry(ctx context.Context, userID, id string) (*models.InquiryQuestion, error)
	LatestPendingInquiry(ctx context.Context, userID string) (*models.InquiryQuestion, error)
	LatestResponseAt(ctx context.Context, userID string) (*time.Time, error)
	AnsweredGapsSince(ctx context.Context, userID string, since time.Time) ([]string, error)
	MarkInquiryResponded(ctx context.Context, userID, id, response string, at time.Time) (*models.InquiryQuestion, error)
	RecentInquiries(ctx context.Context, userID string, since time.Time, limit int) ([]models.InquiryQuestion, error)
	PendingByDelivery(ctx context.Context, method models.DeliveryMethod, since time.Time) ([]models.InquiryQuestion, error)
}

// CalibrationStore 每日校准存储
type CalibrationStore interface {
	UpsertCalibration(ctx context.Context, userID, date string, v models.CalibrationValue, now time.Time) error
	LatestCalibration(ctx context.Context, userID string) (*models.CalibrationRecord, error)
	LatestSignals(ctx context.Context, userID, sinceDate string) (map[string]models.FieldSignal, error)
}

// ActivityStore 活跃时间段存储
type ActivityStore interface {
	TouchActivity(ctx context.Context, userID string, dayOfWeek, hour int, initial, alpha float64, now time.Time) error
	ActivityPatterns(ctx context.Context, userID string) ([]models.ActivityPattern, error)
}

// CandidateStore 候选内容队列
type CandidateStore interface {
	UpsertCandidates(ctx context.Context, items []models.CuratedContent, now time.Time) error
	TopUnpushedCandidate(ctx context.Context, userID string, minScore float64) (*models.CuratedContent, error)
	MarkCandidatePushed(ctx context.Context, userID, contentID string, at time.Time) error
}

// FeedCache 推荐流分页缓存
type FeedCache interface {
	Get(ctx context.Context, key string) (*models.FeedPage, bool)
	Set(ctx context.Context, key string, page *models.FeedPage)
	InvalidateUser(ctx context.Context, userID string) error
}

// ProfileRefresher 回答问询后刷新画像
type ProfileRefresher interface {
	RebuildProfile(ctx context.Context, userID string) error
	SyncProfile(ctx context.Context, userID string) error
}

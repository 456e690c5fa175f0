package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"adaptive_coach/logger"
	"adaptive_coach/models"
	"adaptive_coach/repository"
	"adaptive_coach/utils"
)

// ProfileService 由画像记录与近期问询构建用户兴趣画像
type ProfileService struct {
	profiles ProfileStore
	contexts *InquiryContextService
}

func NewProfileService(profiles ProfileStore, contexts *InquiryContextService) *ProfileService {
	return &ProfileService{profiles: profiles, contexts: contexts}
}

// LoadInterestProfile 构建推荐使用的画像。读取失败时降级为匿名画像，insights 可能为 nil
func (s *ProfileService) LoadInterestProfile(ctx context.Context, userID string) (*models.UserInterestProfile, *models.InquiryInsights) {
	if userID == "" {
		return anonymousProfile(), nil
	}
	p, insights, err := s.BuildInterestProfile(ctx, userID)
	if err != nil {
		logger.Warn("构建用户画像失败，按匿名用户处理", "user_id", userID, "error", err)
		return anonymousProfile(), nil
	}
	return p, insights
}

// BuildInterestProfile 读取画像记录并合并问询上下文，任一步失败返回错误
func (s *ProfileService) BuildInterestProfile(ctx context.Context, userID string) (*models.UserInterestProfile, *models.InquiryInsights, error) {
	p := &models.UserInterestProfile{UserID: userID, Tags: []string{}, FocusTopics: []string{}}

	rec, err := s.profiles.GetProfile(ctx, userID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		logger.Debug("用户没有画像记录", "user_id", userID)
	case err != nil:
		return nil, nil, fmt.Errorf("load profile: %w", err)
	default:
		applyProfileRecord(p, rec)
	}

	var insights *models.InquiryInsights
	if s.contexts != nil {
		c, err := s.contexts.GetContext(ctx, userID, models.LanguageZH)
		if err != nil {
			return nil, nil, fmt.Errorf("inquiry context: %w", err)
		}
		applyInquiryContext(p, c)
		insights = &c.Insights
	}

	p.Tags = utils.DeduplicateSlice(p.Tags)
	p.FocusTopics = utils.DeduplicateSlice(p.FocusTopics)
	return p, insights, nil
}

func anonymousProfile() *models.UserInterestProfile {
	return &models.UserInterestProfile{Tags: []string{}, FocusTopics: []string{}}
}

type scaleEntry struct {
	Score *float64 `json:"score"`
}

type metabolicProfile struct {
	Tags []string `json:"tags"`
}

// applyProfileRecord 解析 JSON 列，格式不对的列忽略
func applyProfileRecord(p *models.UserInterestProfile, rec *models.ProfileRecord) {
	if rec.InferredScaleScores != "" {
		var scales map[string]scaleEntry
		if err := json.Unmarshal([]byte(rec.InferredScaleScores), &scales); err != nil {
			logger.Debug("量表分数格式错误", "user_id", rec.UserID, "error", err)
		} else {
			p.Scores = models.ScaleScores{
				GAD7: scales["GAD7"].Score,
				PHQ9: scales["PHQ9"].Score,
				ISI:  scales["ISI"].Score,
			}
		}
	}
	if gad := p.Scores.GAD7; gad != nil && *gad >= 10 {
		p.Tags = append(p.Tags, "高皮质醇风险")
	}
	if gad := p.Scores.GAD7; gad != nil && *gad >= 15 {
		p.Tags = append(p.Tags, "重度焦虑")
	}
	if isi := p.Scores.ISI; isi != nil && *isi >= 15 {
		p.Tags = append(p.Tags, "失眠")
	}

	if rec.MetabolicProfile != "" {
		var m metabolicProfile
		if err := json.Unmarshal([]byte(rec.MetabolicProfile), &m); err != nil {
			logger.Debug("代谢画像格式错误", "user_id", rec.UserID, "error", err)
		} else {
			p.Tags = append(p.Tags, m.Tags...)
		}
	}

	if rec.PrimaryFocusTopics != "" {
		var topics []string
		if err := json.Unmarshal([]byte(rec.PrimaryFocusTopics), &topics); err != nil {
			logger.Debug("关注主题格式错误", "user_id", rec.UserID, "error", err)
		} else {
			p.FocusTopics = append(p.FocusTopics, topics...)
		}
	}
	p.Signals = rec.Signals
}

// applyInquiryContext 根据近期回答补充标签与主题
func applyInquiryContext(p *models.UserInterestProfile, c *models.InquiryContextSummary) {
	ins := c.Insights
	if ins.SleepQuality == "poor" {
		p.Tags = append(p.Tags, "睡眠问题")
		p.FocusTopics = append(p.FocusTopics, "sleep_optimization", "circadian_rhythm")
	}
	if ins.StressLevel == "high" {
		p.Tags = append(p.Tags, "高皮质醇风险")
		p.FocusTopics = append(p.FocusTopics, "stress_management", "cortisol_regulation")
	}
	if ins.ExerciseLevel == "none" {
		p.FocusTopics = append(p.FocusTopics, "exercise_benefits", "zone2_cardio")
	}
	if ins.Mood == "bad" {
		p.Tags = append(p.Tags, "情绪困扰")
		p.FocusTopics = append(p.FocusTopics, "mental_health", "neurotransmitters")
	}
	p.FocusTopics = append(p.FocusTopics, c.SuggestedTopics...)
}

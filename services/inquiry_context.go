package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"adaptive_coach/models"
)

const (
	contextLookback     = 7 * 24 * time.Hour
	contextInquiryLimit = 20
	contextResponses    = 5
)

// 各维度回答对应的建议话题
var suggestedTopicsByAnswer = map[string]map[string][]string{
	GapSleepHours:       {"under_6": {"sleep_optimization", "circadian_rhythm"}},
	GapStressLevel:      {"high": {"stress_management", "cortisol_regulation", "breathing_exercises"}},
	GapExerciseDuration: {"none": {"exercise_benefits", "zone2_cardio"}},
	GapMood:             {"bad": {"mental_health", "neurotransmitters"}},
}

// InquiryContextService 从近期问询回答中提炼用户状态
type InquiryContextService struct {
	inquiries InquiryStore
	now       func() time.Time
}

func NewInquiryContextService(inquiries InquiryStore) *InquiryContextService {
	return &InquiryContextService{inquiries: inquiries, now: time.Now}
}

// GetContext 最近 7 天内最多 20 条问询的汇总
func (s *InquiryContextService) GetContext(ctx context.Context, userID string, lang models.Language) (*models.InquiryContextSummary, error) {
	list, err := s.inquiries.RecentInquiries(ctx, userID, s.now().Add(-contextLookback), contextInquiryLimit)
	if err != nil {
		return nil, fmt.Errorf("recent inquiries: %w", err)
	}
	summary := BuildInquiryContext(list)
	summary.Summary = SummarizeInquiryContext(summary, lang)
	return summary, nil
}

// BuildInquiryContext 汇总问询列表，list 需按创建时间倒序。
// 每个维度只采用最近一次回答
func BuildInquiryContext(list []models.InquiryQuestion) *models.InquiryContextSummary {
	out := &models.InquiryContextSummary{
		RecentResponses: make([]models.RecentResponse, 0, contextResponses),
		SuggestedTopics: make([]string, 0),
	}
	ins := &out.Insights
	seenTopic := make(map[string]bool)

	for i := range list {
		q := &list[i]
		if ins.LastInquiryAt == nil {
			created := q.CreatedAt
			ins.LastInquiryAt = &created
		}
		if q.UserResponse == nil {
			continue
		}
		ins.TotalResponses++
		answer := *q.UserResponse
		gap := q.PrimaryGap()
		if gap == "" {
			gap = "unknown"
		}

		first := false
		switch gap {
		case GapSleepHours:
			if ins.SleepQuality == "" {
				ins.SleepQuality = sleepQuality(answer)
				first = true
			}
		case GapStressLevel:
			if ins.StressLevel == "" {
				ins.StressLevel = answer
				first = true
			}
		case GapExerciseDuration:
			if ins.ExerciseLevel == "" {
				ins.ExerciseLevel = answer
				first = true
			}
		case GapMood:
			if ins.Mood == "" {
				ins.Mood = answer
				first = true
			}
		}
		if first {
			for _, topic := range suggestedTopicsByAnswer[gap][answer] {
				if !seenTopic[topic] {
					seenTopic[topic] = true
					out.SuggestedTopics = append(out.SuggestedTopics, topic)
				}
			}
		}

		if len(out.RecentResponses) < contextResponses {
			ts := q.CreatedAt
			if q.RespondedAt != nil {
				ts = *q.RespondedAt
			}
			out.RecentResponses = append(out.RecentResponses, models.RecentResponse{
				Question:  q.QuestionText,
				Response:  answer,
				DataGap:   gap,
				Timestamp: ts,
			})
		}
	}
	if len(list) > 0 {
		ins.ResponseRate = float64(ins.TotalResponses) / float64(len(list))
	}
	return out
}

func sleepQuality(answer string) string {
	switch answer {
	case "under_6":
		return "poor"
	case "over_8":
		return "good"
	default:
		return "average"
	}
}

var insightText = map[models.Language]map[string]map[string]string{
	models.LanguageZH: {
		"sleep":    {"poor": "睡眠不足（少于6小时）", "average": "睡眠一般（6-8小时）", "good": "睡眠充足（8小时以上）"},
		"stress":   {"low": "压力较低", "medium": "压力中等", "high": "压力较大"},
		"exercise": {"none": "未运动", "light": "轻度运动", "moderate": "中等强度运动", "intense": "高强度运动"},
		"mood":     {"bad": "心情不佳", "okay": "心情一般", "great": "心情很好"},
	},
	models.LanguageEN: {
		"sleep":    {"poor": "Poor sleep (less than 6 hours)", "average": "Average sleep (6-8 hours)", "good": "Good sleep (8+ hours)"},
		"stress":   {"low": "Low stress", "medium": "Medium stress", "high": "High stress"},
		"exercise": {"none": "No exercise", "light": "Light exercise", "moderate": "Moderate exercise", "intense": "Intense exercise"},
		"mood":     {"bad": "Bad mood", "okay": "Okay mood", "great": "Great mood"},
	},
}

// SummarizeInquiryContext 生成近期状态的文字描述
func SummarizeInquiryContext(c *models.InquiryContextSummary, lang models.Language) string {
	if lang != models.LanguageEN {
		lang = models.LanguageZH
	}
	if len(c.RecentResponses) == 0 {
		return pick(lang == models.LanguageZH, "暂无最近的问询数据。", "No recent inquiry data available.")
	}

	texts := insightText[lang]
	labels := map[string]string{"sleep": "Sleep", "stress": "Stress", "exercise": "Exercise", "mood": "Mood"}
	if lang == models.LanguageZH {
		labels = map[string]string{"sleep": "睡眠", "stress": "压力", "exercise": "运动", "mood": "情绪"}
	}

	lines := []string{pick(lang == models.LanguageZH, "用户最近的状态：", "User's recent status:")}
	dims := []struct{ key, value string }{
		{"sleep", c.Insights.SleepQuality},
		{"stress", c.Insights.StressLevel},
		{"exercise", c.Insights.ExerciseLevel},
		{"mood", c.Insights.Mood},
	}
	for _, d := range dims {
		text, ok := texts[d.key][d.value]
		if !ok {
			continue
		}
		sep := ": "
		if lang == models.LanguageZH {
			sep = "："
		}
		lines = append(lines, "- "+labels[d.key]+sep+text)
	}

	rate := int(math.Round(c.Insights.ResponseRate * 100))
	lines = append(lines, "\n"+pick(lang == models.LanguageZH,
		fmt.Sprintf("响应率：%d%%", rate),
		fmt.Sprintf("Response rate: %d%%", rate)))
	return strings.Join(lines, "\n")
}

package services

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"adaptive_coach/models"
)

func answeredInquiry(gap, answer string, created time.Time) models.InquiryQuestion {
	q := models.InquiryQuestion{
		ID:                gap + "-" + answer,
		QuestionText:      "question about " + gap,
		DataGapsAddressed: []string{gap},
		CreatedAt:         created,
	}
	if answer != "" {
		at := created.Add(time.Minute)
		q.UserResponse = &answer
		q.RespondedAt = &at
	}
	return q
}

func TestBuildInquiryContext(t *testing.T) {
	base := time.Date(2025, 3, 4, 9, 0, 0, 0, time.UTC)
	// 按创建时间倒序
	list := []models.InquiryQuestion{
		answeredInquiry(GapSleepHours, "under_6", base),
		answeredInquiry(GapStressLevel, "", base.Add(-time.Hour)),
		answeredInquiry(GapSleepHours, "over_8", base.Add(-24*time.Hour)),
		answeredInquiry(GapStressLevel, "high", base.Add(-25*time.Hour)),
	}

	c := BuildInquiryContext(list)
	ins := c.Insights
	if ins.SleepQuality != "poor" {
		t.Errorf("sleep quality = %q, want the most recent answer (poor)", ins.SleepQuality)
	}
	if ins.StressLevel != "high" {
		t.Errorf("stress = %q", ins.StressLevel)
	}
	if ins.TotalResponses != 3 || ins.ResponseRate != 0.75 {
		t.Errorf("responses = %d rate = %v", ins.TotalResponses, ins.ResponseRate)
	}
	if ins.LastInquiryAt == nil || !ins.LastInquiryAt.Equal(base) {
		t.Errorf("last inquiry at = %v", ins.LastInquiryAt)
	}
	wantTopics := []string{"sleep_optimization", "circadian_rhythm", "stress_management", "cortisol_regulation", "breathing_exercises"}
	if !reflect.DeepEqual(c.SuggestedTopics, wantTopics) {
		t.Errorf("topics = %v, want %v", c.SuggestedTopics, wantTopics)
	}
	if len(c.RecentResponses) != 3 || c.RecentResponses[0].Response != "under_6" {
		t.Errorf("recent responses = %+v", c.RecentResponses)
	}

	en := SummarizeInquiryContext(c, models.LanguageEN)
	if !strings.Contains(en, "Poor sleep") || !strings.Contains(en, "Response rate: 75%") {
		t.Errorf("english summary = %q", en)
	}
	zh := SummarizeInquiryContext(c, models.LanguageZH)
	if !strings.Contains(zh, "睡眠不足") || !strings.Contains(zh, "响应率：75%") {
		t.Errorf("chinese summary = %q", zh)
	}
}

func TestInquiryContextEmpty(t *testing.T) {
	c := BuildInquiryContext(nil)
	if c.Insights.ResponseRate != 0 || len(c.RecentResponses) != 0 {
		t.Errorf("empty context = %+v", c)
	}
	if got := SummarizeInquiryContext(c, models.LanguageEN); got != "No recent inquiry data available." {
		t.Errorf("summary = %q", got)
	}
}

func TestBuildBenefit(t *testing.T) {
	sleepItem := models.ContentItem{ID: "p1", Title: "Sleep restriction and recovery", Source: models.SourcePubMed}

	if got := BuildBenefit(sleepItem, BenefitInput{Language: models.LanguageEN}); got != genericBenefitEN {
		t.Errorf("generic benefit = %q", got)
	}

	profile := &models.UserInterestProfile{Signals: models.Signals{SleepHours: f64(5.5)}}
	zh := BuildBenefit(sleepItem, BenefitInput{Profile: profile, Language: models.LanguageZH})
	want := "根据你记录的睡眠时长为5.5小时，这篇关于睡眠的研究可能帮助你改善目前的睡眠状况。"
	if zh != want {
		t.Errorf("zh benefit = %q, want %q", zh, want)
	}

	en := BuildBenefit(sleepItem, BenefitInput{
		Profile:  profile,
		Insights: &models.InquiryInsights{StressLevel: "high"},
		Language: models.LanguageEN,
	})
	if !strings.HasPrefix(en, "Based on you logged 5.5h of sleep and you reported high stress,") {
		t.Errorf("en benefit = %q", en)
	}

	// 与用户状态无关的内容使用通用说明
	other := models.ContentItem{ID: "p2", Title: "Gut microbiome diversity"}
	got := BuildBenefit(other, BenefitInput{Profile: profile, Language: models.LanguageEN})
	if !strings.HasSuffix(got, "this content relates to your health.") {
		t.Errorf("unrelated benefit = %q", got)
	}
}

func TestOptimalTiming(t *testing.T) {
	tuesday8 := time.Date(2025, 3, 4, 8, 0, 0, 0, time.UTC)

	got := OptimalTiming(nil, tuesday8)
	if got.SuggestedHour != 9 || got.Confidence != 0.5 || !got.SuggestedAt.Equal(tuesday8.Add(time.Hour)) {
		t.Errorf("default morning timing = %+v", got)
	}

	evening := time.Date(2025, 3, 4, 16, 0, 0, 0, time.UTC)
	got = OptimalTiming(nil, evening)
	if got.SuggestedHour != 9 || got.SuggestedAt.Day() != 5 {
		t.Errorf("after 15h the default rolls to tomorrow morning, got %+v", got)
	}

	otherDay := []models.ActivityPattern{{DayOfWeek: int(time.Friday), HourOfDay: 20, ActivityScore: 0.9}}
	got = OptimalTiming(otherDay, tuesday8)
	if got.Confidence != 0.3 || !got.SuggestedAt.Equal(tuesday8.Add(2*time.Hour)) {
		t.Errorf("no patterns today = %+v", got)
	}

	today := []models.ActivityPattern{
		{DayOfWeek: int(time.Tuesday), HourOfDay: 7, ActivityScore: 0.9},
		{DayOfWeek: int(time.Tuesday), HourOfDay: 20, ActivityScore: 0.8},
	}
	got = OptimalTiming(today, time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC))
	if got.SuggestedHour != 20 || got.Confidence != 0.8 {
		t.Errorf("next active hour today = %+v", got)
	}
	got = OptimalTiming(today, time.Date(2025, 3, 4, 21, 0, 0, 0, time.UTC))
	if got.SuggestedHour != 7 || got.SuggestedAt.Day() != 5 {
		t.Errorf("all hours passed should pick the best one tomorrow, got %+v", got)
	}
}

func TestBackgroundRecoversPanics(t *testing.T) {
	bg := NewBackground(time.Second)
	done := make(chan struct{})
	bg.Go("panics", func(context.Context) error { panic("boom") })
	bg.Go("fails", func(context.Context) error { return errors.New("nope") })
	bg.Go("deadline", func(ctx context.Context) error {
		defer close(done)
		if _, ok := ctx.Deadline(); !ok {
			t.Error("background context should carry a deadline")
		}
		return nil
	})
	bg.Wait()
	select {
	case <-done:
	default:
		t.Error("task did not run")
	}
}

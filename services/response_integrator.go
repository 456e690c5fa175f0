package services

import (
	"context"
	"time"

	"adaptive_coach/logger"
	"adaptive_coach/models"
)

// 选项值到数值的映射
var responseValues = map[string]map[string]float64{
	GapSleepHours:       {"under_6": 5, "6_7": 6.5, "7_8": 7.5, "over_8": 8.5},
	GapStressLevel:      {"low": 3, "medium": 6, "high": 9},
	GapExerciseDuration: {"none": 0, "light": 15, "moderate": 30, "intense": 60},
	GapMood:             {"bad": 3, "okay": 6, "great": 9},
}

// 字段对应的 daily_calibrations 列
var calibrationColumns = map[string]string{
	GapSleepHours:       "sleep_hours",
	GapStressLevel:      "stress_level",
	GapExerciseDuration: "exercise_duration",
	GapMood:             "mood_score",
	GapMealQuality:      "meal_quality",
	GapWaterIntake:      "water_intake",
}

// 原样保存文本的字段
var textResponseFields = map[string]bool{
	GapMealQuality: true,
	GapWaterIntake: true,
}

// CalibrationFor 将回答转为校准数据。没有映射的回答返回 false
func CalibrationFor(field, response string) (models.CalibrationValue, bool) {
	column, ok := calibrationColumns[field]
	if !ok {
		return models.CalibrationValue{}, false
	}
	if textResponseFields[field] {
		if response == "" {
			return models.CalibrationValue{}, false
		}
		text := response
		return models.CalibrationValue{Column: column, Text: &text}, true
	}
	v, ok := responseValues[field][response]
	if !ok {
		return models.CalibrationValue{}, false
	}
	return models.CalibrationValue{Column: column, Number: &v}, true
}

// integrateResponse 回答记录成功后的后续写入，失败只记录告警
func (s *InquiryService) integrateResponse(ctx context.Context, q *models.InquiryQuestion, response string, now time.Time) {
	log := logger.With("user_id", q.UserID, "inquiry_id", q.ID)
	local := now.In(s.loc)

	if v, ok := CalibrationFor(q.PrimaryGap(), response); ok {
		date := local.Format("2006-01-02")
		if err := s.calibrations.UpsertCalibration(ctx, q.UserID, date, v, now); err != nil {
			log.Warn("写入每日校准失败", "column", v.Column, "error", err)
		}
	} else {
		log.Debug("回答没有对应的校准数据", "gap", q.PrimaryGap(), "response", response)
	}

	if err := s.activity.TouchActivity(ctx, q.UserID, int(local.Weekday()), local.Hour(),
		s.cfg.ActivityInitialScore, s.cfg.ActivityAlpha, now); err != nil {
		log.Warn("更新活跃时间段失败", "error", err)
	}

	if s.refresher == nil {
		return
	}
	userID := q.UserID
	s.bg.Go("rebuild_profile", func(ctx context.Context) error {
		return s.refresher.RebuildProfile(ctx, userID)
	})
	s.bg.Go("sync_profile", func(ctx context.Context) error {
		return s.refresher.SyncProfile(ctx, userID)
	})
}

package services

import (
	"sort"
	"time"

	"adaptive_coach/config"
	"adaptive_coach/models"
)

// 可问询的数据字段
const (
	GapSleepHours       = "sleep_hours"
	GapStressLevel      = "stress_level"
	GapExerciseDuration = "exercise_duration"
	GapMealQuality      = "meal_quality"
	GapMood             = "mood"
	GapWaterIntake      = "water_intake"
)

// 字段定义，顺序即同优先级时的先后
var gapDefinitions = []models.DataGap{
	{Field: GapSleepHours, Importance: models.PriorityHigh, Description: "睡眠时长数据"},
	{Field: GapStressLevel, Importance: models.PriorityHigh, Description: "压力水平数据"},
	{Field: GapExerciseDuration, Importance: models.PriorityMedium, Description: "运动时长数据"},
	{Field: GapMealQuality, Importance: models.PriorityMedium, Description: "饮食质量数据"},
	{Field: GapMood, Importance: models.PriorityLow, Description: "情绪状态数据"},
	{Field: GapWaterIntake, Importance: models.PriorityLow, Description: "饮水量数据"},
}

// Signal 某个字段最近一次的取值
type Signal struct {
	Value     string
	UpdatedAt time.Time
}

// GapAnalyzer 找出缺失或过期的数据字段
type GapAnalyzer struct {
	defaultStale time.Duration
	staleByField map[string]time.Duration
}

// NewGapAnalyzer 按配置设置过期时间，字段配置为 0 表示该字段不过期
func NewGapAnalyzer(cfg config.InquiryConfig) *GapAnalyzer {
	a := &GapAnalyzer{
		defaultStale: time.Duration(cfg.DefaultStaleHours) * time.Hour,
		staleByField: make(map[string]time.Duration, len(cfg.StaleHours)),
	}
	for field, h := range cfg.StaleHours {
		a.staleByField[field] = time.Duration(h) * time.Hour
	}
	return a
}

func (a *GapAnalyzer) staleAfter(field string) time.Duration {
	if d, ok := a.staleByField[field]; ok {
		return d
	}
	return a.defaultStale
}

// Analyze 返回按重要程度排序的缺口，answered 中的字段今天已回答过，不再返回
func (a *GapAnalyzer) Analyze(snapshot map[string]Signal, answered map[string]bool, now time.Time) []models.DataGap {
	gaps := make([]models.DataGap, 0, len(gapDefinitions))
	for _, def := range gapDefinitions {
		if answered[def.Field] {
			continue
		}
		sig, ok := snapshot[def.Field]
		if !ok {
			gaps = append(gaps, def)
			continue
		}
		stale := a.staleAfter(def.Field)
		if stale > 0 && now.Sub(sig.UpdatedAt) > stale {
			gap := def
			updated := sig.UpdatedAt
			gap.LastUpdated = &updated
			gaps = append(gaps, gap)
		}
	}
	sort.SliceStable(gaps, func(i, j int) bool {
		return gaps[i].Importance.Rank() < gaps[j].Importance.Rank()
	})
	return gaps
}

// 字段对应的校准列
var gapColumns = map[string]string{
	GapSleepHours:       "sleep_hours",
	GapStressLevel:      "stress_level",
	GapExerciseDuration: "exercise_duration",
	GapMood:             "mood_score",
	GapMealQuality:      "meal_quality",
	GapWaterIntake:      "water_intake",
}

// SnapshotFromSignals 把按列返回的最近取值转换为按字段的快照，每个字段带自己的写入时间
func SnapshotFromSignals(signals map[string]models.FieldSignal) map[string]Signal {
	snap := make(map[string]Signal, len(signals))
	for field, col := range gapColumns {
		sig, ok := signals[col]
		if !ok {
			continue
		}
		switch {
		case sig.Number != nil:
			snap[field] = Signal{Value: formatNumber(*sig.Number), UpdatedAt: sig.UpdatedAt}
		case sig.Text != nil && *sig.Text != "":
			snap[field] = Signal{Value: *sig.Text, UpdatedAt: sig.UpdatedAt}
		}
	}
	return snap
}

package services

import (
	"fmt"
	"sort"
	"time"

	"adaptive_coach/models"
)

// 没有活跃度数据时的默认问询时间
var defaultInquiryHours = []int{9, 15}

// OptimalTiming 根据活跃时间段计算下一次问询的时间，now 需已转换到用户时区
func OptimalTiming(patterns []models.ActivityPattern, now time.Time) models.InquiryTiming {
	if len(patterns) == 0 {
		hour := defaultInquiryHours[0]
		for _, h := range defaultInquiryHours {
			if h > now.Hour() {
				hour = h
				break
			}
		}
		at := atHour(now, hour)
		return models.InquiryTiming{
			SuggestedAt:   at,
			SuggestedHour: hour,
			Confidence:    0.5,
			Reason:        "使用默认时间，因为还没有足够的活动数据",
		}
	}

	today := make([]models.ActivityPattern, 0, len(patterns))
	for _, p := range patterns {
		if p.DayOfWeek == int(now.Weekday()) {
			today = append(today, p)
		}
	}
	if len(today) == 0 {
		at := now.Add(2 * time.Hour)
		return models.InquiryTiming{
			SuggestedAt:   at,
			SuggestedHour: at.Hour(),
			Confidence:    0.3,
			Reason:        "今天没有活动数据，建议2小时后",
		}
	}

	sort.SliceStable(today, func(i, j int) bool { return today[i].ActivityScore > today[j].ActivityScore })
	best := today[0]
	for _, p := range today {
		if p.HourOfDay > now.Hour() {
			best = p
			break
		}
	}
	return models.InquiryTiming{
		SuggestedAt:   atHour(now, best.HourOfDay),
		SuggestedHour: best.HourOfDay,
		Confidence:    best.ActivityScore,
		Reason:        fmt.Sprintf("基于历史活动数据，%d点是你最活跃的时间", best.HourOfDay),
	}
}

// atHour 今天或明天的整点，已过去的整点顺延到明天
func atHour(now time.Time, hour int) time.Time {
	at := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if hour <= now.Hour() {
		at = at.AddDate(0, 0, 1)
	}
	return at
}

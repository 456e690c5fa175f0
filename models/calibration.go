package models

import "time"

// CalibrationRecord daily_calibrations 表中一天的校准数据
type CalibrationRecord struct {
	UserID           string    `json:"user_id"`
	Date             string    `json:"date"` // YYYY-MM-DD
	SleepHours       *float64  `json:"sleep_hours,omitempty"`
	StressLevel      *float64  `json:"stress_level,omitempty"`
	ExerciseDuration *float64  `json:"exercise_duration,omitempty"`
	MoodScore        *float64  `json:"mood_score,omitempty"`
	MealQuality      *string   `json:"meal_quality,omitempty"`
	WaterIntake      *string   `json:"water_intake,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// CalibrationValue 写入某一列的值，数值与文本二选一
type CalibrationValue struct {
	Column string
	Number *float64
	Text   *string
}

// FieldSignal 某一列最近一次写入的值与写入时间
type FieldSignal struct {
	Number    *float64
	Text      *string
	UpdatedAt time.Time
}

// ActivityPattern 用户在某个星期几某个小时的活跃度
type ActivityPattern struct {
	UserID        string    `json:"user_id"`
	DayOfWeek     int       `json:"day_of_week"`
	HourOfDay     int       `json:"hour_of_day"`
	ActivityScore float64   `json:"activity_score"`
	UpdatedAt     time.Time `json:"updated_at"`
}

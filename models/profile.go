package models

import "time"

// ScaleScores 量表推断分数，缺失为 nil
type ScaleScores struct {
	GAD7 *float64 `json:"gad7,omitempty"`
	PHQ9 *float64 `json:"phq9,omitempty"`
	ISI  *float64 `json:"isi,omitempty"`
}

// Signals 最近的生理信号
type Signals struct {
	SleepHours  *float64 `json:"sleep_hours,omitempty"`
	StressLevel *float64 `json:"stress_level,omitempty"`
	EnergyLevel *float64 `json:"energy_level,omitempty"`
}

// ProfileRecord profiles 表中的原始行，JSON 列保持原样
type ProfileRecord struct {
	UserID              string
	InferredScaleScores string
	MetabolicProfile    string
	PrimaryFocusTopics  string
	Signals             Signals
	UpdatedAt           *time.Time
}

// UserInterestProfile 推荐与问询使用的用户画像
type UserInterestProfile struct {
	UserID      string      `json:"user_id"`
	Tags        []string    `json:"tags"`
	FocusTopics []string    `json:"focus_topics"`
	Scores      ScaleScores `json:"scores"`
	Signals     Signals     `json:"signals"`
}

// DerivedProfile 定时重建后写入 user_profiles 的画像快照
type DerivedProfile struct {
	UserID      string    `json:"user_id"`
	Tags        []string  `json:"tags"`
	Keywords    []string  `json:"keywords"`
	FocusTopics []string  `json:"focus_topics"`
	UpdatedAt   time.Time `json:"updated_at"`
}

package models

import "time"

// Priority 问询优先级
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Rank 数值越小越优先
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	default:
		return 2
	}
}

// Valid 是否为合法优先级
func (p Priority) Valid() bool {
	return p == PriorityHigh || p == PriorityMedium || p == PriorityLow
}

type QuestionType string

const (
	QuestionDiagnostic         QuestionType = "diagnostic"
	QuestionFeedRecommendation QuestionType = "feed_recommendation"
)

func (t QuestionType) Valid() bool {
	return t == QuestionDiagnostic || t == QuestionFeedRecommendation
}

type DeliveryMethod string

const (
	DeliveryPush  DeliveryMethod = "push"
	DeliveryInApp DeliveryMethod = "in_app"
)

func (d DeliveryMethod) Valid() bool {
	return d == DeliveryPush || d == DeliveryInApp
}

// DataGap 缺失或过期的数据字段
type DataGap struct {
	Field       string     `json:"field"`
	Importance  Priority   `json:"importance"`
	Description string     `json:"description"`
	LastUpdated *time.Time `json:"last_updated,omitempty"`
}

// QuestionOption 问询选项
type QuestionOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// InquiryQuestion 一次问询。UserResponse 与 RespondedAt 同时为空或同时非空
type InquiryQuestion struct {
	ID                string           `json:"id"`
	UserID            string           `json:"user_id"`
	QuestionText      string           `json:"question_text"`
	QuestionType      QuestionType     `json:"question_type"`
	Priority          Priority         `json:"priority"`
	DataGapsAddressed []string         `json:"data_gaps_addressed"`
	UserResponse      *string          `json:"user_response"`
	RespondedAt       *time.Time       `json:"responded_at"`
	DeliveryMethod    DeliveryMethod   `json:"delivery_method"`
	CreatedAt         time.Time        `json:"created_at"`
	Options           []QuestionOption `json:"options,omitempty"`
	FeedContent       *CuratedContent  `json:"feedContent,omitempty"`
}

// Pending 尚未回答
func (q *InquiryQuestion) Pending() bool {
	return q.UserResponse == nil
}

// PrimaryGap 问询针对的第一个字段
func (q *InquiryQuestion) PrimaryGap() string {
	if len(q.DataGapsAddressed) == 0 {
		return ""
	}
	return q.DataGapsAddressed[0]
}

// InquiryInput 创建问询的请求体
type InquiryInput struct {
	QuestionText      string         `json:"question_text"`
	QuestionType      QuestionType   `json:"question_type"`
	Priority          Priority       `json:"priority"`
	DataGapsAddressed []string       `json:"data_gaps_addressed"`
	DeliveryMethod    DeliveryMethod `json:"delivery_method"`
}

// RespondInput 回答问询的请求体
type RespondInput struct {
	Response string `json:"response"`
}

// PendingInquiry getPendingInquiry 的返回
type PendingInquiry struct {
	HasInquiry bool             `json:"hasInquiry"`
	Inquiry    *InquiryQuestion `json:"inquiry,omitempty"`
}

// InquiryInsights 从近期回答中提炼的状态，未回答的维度为空
type InquiryInsights struct {
	SleepQuality   string     `json:"sleep_quality,omitempty"` // poor / average / good
	StressLevel    string     `json:"stress_level,omitempty"`  // low / medium / high
	ExerciseLevel  string     `json:"exercise_level,omitempty"`
	Mood           string     `json:"mood,omitempty"` // bad / okay / great
	LastInquiryAt  *time.Time `json:"last_inquiry_at,omitempty"`
	TotalResponses int        `json:"total_responses"`
	ResponseRate   float64    `json:"response_rate"`
}

// RecentResponse 一条近期回答
type RecentResponse struct {
	Question  string    `json:"question"`
	Response  string    `json:"response"`
	DataGap   string    `json:"data_gap"`
	Timestamp time.Time `json:"timestamp"`
}

// InquiryContextSummary 近期问询上下文
type InquiryContextSummary struct {
	Insights        InquiryInsights  `json:"insights"`
	RecentResponses []RecentResponse `json:"recent_responses"`
	SuggestedTopics []string         `json:"suggested_topics"`
	Summary         string           `json:"summary"`
}

// InquiryTiming 推荐的问询时间
type InquiryTiming struct {
	SuggestedAt   time.Time `json:"suggested_at"`
	SuggestedHour int       `json:"suggested_hour"`
	Confidence    float64   `json:"confidence"`
	Reason        string    `json:"reason"`
}

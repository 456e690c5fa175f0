package models

// APIResponse 通用API响应
type APIResponse struct {
	Code    int         `json:"code" example:"0"`
	Message string      `json:"message" example:"success"`
	Data    interface{} `json:"data,omitempty"`
}

// FeedErrorResponse 推荐流失败时的响应体
type FeedErrorResponse struct {
	Error string `json:"error" example:"Failed to load curated feed"`
}

// PendingInquiryResponse 待回答问询响应
type PendingInquiryResponse struct {
	Code    int            `json:"code" example:"0"`
	Message string         `json:"message" example:"success"`
	Data    PendingInquiry `json:"data"`
}

// InquiryResponse 单条问询响应
type InquiryResponse struct {
	Code    int             `json:"code" example:"0"`
	Message string          `json:"message" example:"success"`
	Data    InquiryQuestion `json:"data"`
}

// InquiryContextResponse 问询上下文响应
type InquiryContextResponse struct {
	Code    int                   `json:"code" example:"0"`
	Message string                `json:"message" example:"success"`
	Data    InquiryContextSummary `json:"data"`
}

// InquiryTimingResponse 问询时机响应
type InquiryTimingResponse struct {
	Code    int           `json:"code" example:"0"`
	Message string        `json:"message" example:"success"`
	Data    InquiryTiming `json:"data"`
}

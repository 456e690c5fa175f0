package handlers

import (
	"errors"
	"net/http"
	"strings"

	"adaptive_coach/logger"
	"adaptive_coach/models"
	"adaptive_coach/services"
	"adaptive_coach/utils"
)

// Handler 持有各接口依赖的服务
type Handler struct {
	Feed     *services.FeedService
	Inquiry  *services.InquiryService
	Contexts *services.InquiryContextService
	Refresh  *services.RefreshService
	Pusher   *services.InquiryPusher

	// 批量重建画像的回溯天数与并发数
	LookbackDays int
	Concurrency  int
}

// requestLanguage zh 开头的语言按中文处理，其余按英文，未传时用 def
func requestLanguage(raw string, def models.Language) models.Language {
	raw = strings.ToLower(strings.TrimSpace(raw))
	switch {
	case raw == "":
		return def
	case strings.HasPrefix(raw, "zh"):
		return models.LanguageZH
	default:
		return models.LanguageEN
	}
}

// writeServiceError 把服务层错误映射为响应码，存储错误的原文不返回给客户端
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrUnauthenticated):
		utils.WriteErrorResponse(w, models.CodeUnauthorized, map[string]interface{}{})
	case errors.Is(err, services.ErrMissingFields):
		utils.WriteErrorResponse(w, models.CodeMissingParams, map[string]interface{}{})
	case errors.Is(err, services.ErrInquiryNotFound):
		utils.WriteErrorResponse(w, models.CodeInquiryNotFound, map[string]interface{}{})
	default:
		logger.Error("请求处理失败", "path", r.URL.Path, "error", err)
		utils.WriteErrorResponse(w, models.CodeServerError, map[string]interface{}{})
	}
}

package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"adaptive_coach/auth"
	"adaptive_coach/models"
	"adaptive_coach/services"
	"adaptive_coach/utils"
)

// PendingInquiryHandler godoc
// @Summary 获取待回答的问询
// @Description 有未回答的问询时直接返回；否则根据数据缺口生成新问询，冷却期内返回 hasInquiry=false
// @Tags 问询
// @Produce json
// @Security BearerAuth
// @Param language query string false "语言，zh 开头为中文，其余为英文，默认中文"
// @Success 200 {object} models.PendingInquiryResponse "成功"
// @Router /api/inquiry/pending [get]
func (h *Handler) PendingInquiryHandler(w http.ResponseWriter, r *http.Request) {
	lang := requestLanguage(r.URL.Query().Get("language"), models.LanguageZH)
	pending, err := h.Inquiry.GetPendingInquiry(r.Context(), auth.UserID(r.Context()), lang)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteSuccessResponse(w, pending)
}

// CreateInquiryHandler godoc
// @Summary 创建问询
// @Description 直接创建一条问询，用户已有待回答的问询时返回已有的那条
// @Tags 问询
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body models.InquiryInput true "问询内容"
// @Success 200 {object} models.InquiryResponse "成功"
// @Router /api/inquiry [post]
func (h *Handler) CreateInquiryHandler(w http.ResponseWriter, r *http.Request) {
	var in models.InquiryInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.WriteErrorResponse(w, models.CodeInvalidParams, map[string]interface{}{})
		return
	}
	q, err := h.Inquiry.CreateInquiry(r.Context(), auth.UserID(r.Context()), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteSuccessResponse(w, q)
}

// RespondInquiryHandler godoc
// @Summary 回答问询
// @Description 记录用户的回答，并写入当天的校准数据与活跃时间段
// @Tags 问询
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "问询ID"
// @Param body body models.RespondInput true "回答"
// @Success 200 {object} models.InquiryResponse "成功"
// @Router /api/inquiry/{id}/respond [post]
func (h *Handler) RespondInquiryHandler(w http.ResponseWriter, r *http.Request) {
	var in models.RespondInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.WriteErrorResponse(w, models.CodeInvalidParams, map[string]interface{}{})
		return
	}
	q, err := h.Inquiry.RespondToInquiry(r.Context(), auth.UserID(r.Context()), chi.URLParam(r, "id"), in.Response)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteSuccessResponse(w, q)
}

// InquiryContextHandler godoc
// @Summary 获取问询上下文
// @Description 最近 7 天问询回答的汇总，包括状态判断、最近的回答和建议主题
// @Tags 问询
// @Produce json
// @Security BearerAuth
// @Param language query string false "语言，zh 开头为中文，其余为英文，默认中文"
// @Success 200 {object} models.InquiryContextResponse "成功"
// @Router /api/inquiry/context [get]
func (h *Handler) InquiryContextHandler(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if userID == "" {
		writeServiceError(w, r, services.ErrUnauthenticated)
		return
	}
	lang := requestLanguage(r.URL.Query().Get("language"), models.LanguageZH)
	c, err := h.Contexts.GetContext(r.Context(), userID, lang)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteSuccessResponse(w, c)
}

// InquiryTimingHandler godoc
// @Summary 获取推荐的问询时间
// @Description 根据用户的活跃时间段计算下一次问询的最佳时间
// @Tags 问询
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.InquiryTimingResponse "成功"
// @Router /api/inquiry/timing [get]
func (h *Handler) InquiryTimingHandler(w http.ResponseWriter, r *http.Request) {
	t, err := h.Inquiry.GetTiming(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteSuccessResponse(w, t)
}

package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"adaptive_coach/models"
	"adaptive_coach/utils"
)

// PushInquiriesHandler godoc
// @Summary 推送到期的问询
// @Description 手动触发一次问询推送，只推送推荐时间落在当前整点的问询
// @Tags 推送
// @Produce json
// @Success 200 {object} models.APIResponse "成功"
// @Failure 500 {object} models.APIResponse "服务器错误"
// @Router /api/push/inquiries [post]
func (h *Handler) PushInquiriesHandler(w http.ResponseWriter, r *http.Request) {
	if h.Pusher == nil {
		utils.WriteCustomErrorResponse(w, models.CodeThirdPartyAPIError, "inquiry push is not configured", map[string]interface{}{})
		return
	}
	success, failed, err := h.Pusher.PushDue(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteSuccessResponse(w, map[string]interface{}{
		"success": success,
		"failed":  failed,
	})
}

// RebuildAllProfilesHandler godoc
// @Summary 重建活跃用户的画像
// @Description 为回溯窗口内有问询或校准记录的用户重建画像快照
// @Tags 用户画像
// @Produce json
// @Success 200 {object} models.APIResponse "成功"
// @Failure 500 {object} models.APIResponse "服务器错误"
// @Router /api/profile/rebuild [post]
func (h *Handler) RebuildAllProfilesHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.Refresh.RebuildActiveProfiles(r.Context(), h.LookbackDays, h.Concurrency); err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteSuccessResponse(w, map[string]interface{}{
		"message": "Profile rebuild finished for active users",
	})
}

// RebuildUserProfileHandler godoc
// @Summary 重建指定用户的画像
// @Description 重新计算指定用户的兴趣标签、关键词与关注主题
// @Tags 用户画像
// @Produce json
// @Param userId path string true "用户ID"
// @Success 200 {object} models.APIResponse "成功"
// @Failure 500 {object} models.APIResponse "服务器错误"
// @Router /api/profile/rebuild/{userId} [post]
func (h *Handler) RebuildUserProfileHandler(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(chi.URLParam(r, "userId"))
	if userID == "" {
		utils.WriteErrorResponse(w, models.CodeMissingParams, map[string]interface{}{})
		return
	}
	if err := h.Refresh.RebuildProfile(r.Context(), userID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.writeDerivedProfile(w, r, userID)
}

// GetUserProfileHandler godoc
// @Summary 获取用户画像
// @Description 获取指定用户最近一次重建的画像快照
// @Tags 用户画像
// @Produce json
// @Param userId path string true "用户ID"
// @Success 200 {object} models.APIResponse "成功"
// @Failure 500 {object} models.APIResponse "服务器错误"
// @Router /api/profile/{userId} [get]
func (h *Handler) GetUserProfileHandler(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(chi.URLParam(r, "userId"))
	if userID == "" {
		utils.WriteErrorResponse(w, models.CodeMissingParams, map[string]interface{}{})
		return
	}
	h.writeDerivedProfile(w, r, userID)
}

func (h *Handler) writeDerivedProfile(w http.ResponseWriter, r *http.Request, userID string) {
	p, err := h.Refresh.DerivedProfile(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	// 还没有重建过画像
	if p == nil {
		utils.WriteSuccessResponse(w, map[string]interface{}{
			"user_id":     userID,
			"has_profile": false,
		})
		return
	}
	utils.WriteSuccessResponse(w, p)
}

package handlers

import (
	"math"
	"net/http"
	"strings"

	"adaptive_coach/auth"
	"adaptive_coach/logger"
	"adaptive_coach/models"
	"adaptive_coach/services"
	"adaptive_coach/utils"
)

// FeedHandler godoc
// @Summary 获取个性化推荐流
// @Description 聚合各内容源，按用户画像打分后返回一页推荐内容。同一用户、同一天、同一 cycle 的结果稳定
// @Tags 推荐流
// @Produce json
// @Param userId query string false "用户ID，缺省时使用登录用户，均没有时按匿名用户处理"
// @Param limit query int false "每页数量 (5-20)" default(10)
// @Param cursor query int false "分页游标" default(0)
// @Param cycle query int false "刷新轮次，不同轮次得到不同的排列" default(0)
// @Param language query string false "语言，zh 开头为中文，其余为英文"
// @Param exclude query string false "需要排除的内容ID，逗号分隔"
// @Success 200 {object} models.FeedPage "成功"
// @Failure 500 {object} models.FeedErrorResponse "服务器错误"
// @Router /feed [get]
func (h *Handler) FeedHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	userID := strings.TrimSpace(q.Get("userId"))
	if userID == "" {
		userID = auth.UserID(r.Context())
	}

	req := models.FeedRequest{
		UserID:   userID,
		Limit:    utils.QueryInt(r, "limit", services.DefaultFeedLimit, services.MinFeedLimit, services.MaxFeedLimit),
		Cursor:   utils.QueryInt(r, "cursor", 0, 0, math.MaxInt32),
		Cycle:    utils.QueryInt(r, "cycle", 0, 0, math.MaxInt32),
		Language: requestLanguage(q.Get("language"), models.LanguageEN),
		Exclude:  utils.SplitCSV(q.Get("exclude")),
	}

	page, err := h.Feed.GetFeed(r.Context(), req)
	if err != nil {
		logger.Error("生成推荐流失败", "user_id", userID, "error", err)
		utils.WriteJSON(w, http.StatusInternalServerError, models.FeedErrorResponse{
			Error: models.CodeMessages[models.CodeFeedError],
		})
		return
	}
	utils.WriteJSON(w, http.StatusOK, page)
}

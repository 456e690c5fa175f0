package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "adaptive_coach/docs" // 导入 swagger 文档
	"adaptive_coach/utils"
)

// HealthHandler godoc
// @Summary 健康检查
// @Tags 系统
// @Produce json
// @Success 200 {object} map[string]string "成功"
// @Router /healthz [get]
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// RegisterRoutes 注册所有路由
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Get("/healthz", HealthHandler)

	// 推荐流
	r.Get("/feed", h.FeedHandler)
	r.Get("/api/feed", h.FeedHandler)

	// 问询
	r.Route("/api/inquiry", func(r chi.Router) {
		r.Get("/pending", h.PendingInquiryHandler)
		r.Post("/", h.CreateInquiryHandler)
		r.Post("/{id}/respond", h.RespondInquiryHandler)
		r.Get("/context", h.InquiryContextHandler)
		r.Get("/timing", h.InquiryTimingHandler)
	})

	// 推送与画像管理
	r.Post("/api/push/inquiries", h.PushInquiriesHandler)
	r.Post("/api/profile/rebuild", h.RebuildAllProfilesHandler)
	r.Post("/api/profile/rebuild/{userId}", h.RebuildUserProfileHandler)
	r.Get("/api/profile/{userId}", h.GetUserProfileHandler)

	// Swagger 文档路由
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
}

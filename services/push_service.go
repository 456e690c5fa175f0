package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"adaptive_coach/logger"
	"adaptive_coach/models"
	"adaptive_coach/utils"
)

// 只推送最近 7 天内创建的问询
const pushLookback = 7 * 24 * time.Hour

// InquiryPushPayload 推送到外部API的问询数据
type InquiryPushPayload struct {
	CID     string             `json:"cid"`
	Inquiry InquiryPushMessage `json:"inquiry"`
}

// InquiryPushMessage 推送的问询内容
type InquiryPushMessage struct {
	ID       string                  `json:"id"`
	Question string                  `json:"question"`
	Priority models.Priority         `json:"priority"`
	Options  []models.QuestionOption `json:"options"`
}

// PushConfig 推送接口配置
type PushConfig struct {
	URL         string
	APIKey      string
	Concurrency int
	Timezone    *time.Location
}

// InquiryPusher 在用户最活跃的时间段推送待回答的问询
type InquiryPusher struct {
	inquiries InquiryStore
	activity  ActivityStore
	cfg       PushConfig
	client    *http.Client
	now       func() time.Time

	mu   sync.Mutex
	sent map[string]bool
}

func NewInquiryPusher(inquiries InquiryStore, activity ActivityStore, cfg PushConfig) *InquiryPusher {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.Timezone == nil {
		cfg.Timezone = time.UTC
	}
	return &InquiryPusher{
		inquiries: inquiries,
		activity:  activity,
		cfg:       cfg,
		client:    &http.Client{Timeout: 10 * time.Second},
		now:       time.Now,
		sent:      make(map[string]bool),
	}
}

// PushDue 推送当前整点到期的问询，返回成功与失败数
func (p *InquiryPusher) PushDue(ctx context.Context) (int, int, error) {
	now := p.now()
	pending, err := p.inquiries.PendingByDelivery(ctx, models.DeliveryPush, now.Add(-pushLookback))
	if err != nil {
		return 0, 0, fmt.Errorf("load push inquiries: %w", err)
	}

	// 每个用户只推送最早的一条
	byUser := make(map[string]models.InquiryQuestion)
	order := make([]string, 0)
	for _, q := range pending {
		if p.wasSent(q.ID) {
			continue
		}
		if _, ok := byUser[q.UserID]; !ok {
			byUser[q.UserID] = q
			order = append(order, q.UserID)
		}
	}

	due := make([]models.InquiryQuestion, 0, len(order))
	for _, userID := range order {
		patterns, err := p.activity.ActivityPatterns(ctx, userID)
		if err != nil {
			logger.Warn("读取活跃时间段失败，跳过推送", "user_id", userID, "error", err)
			continue
		}
		if dueThisHour(patterns, now.In(p.cfg.Timezone)) {
			due = append(due, byUser[userID])
		}
	}
	if len(due) == 0 {
		logger.Debug("没有到期的问询推送", "pending", len(pending))
		return 0, 0, nil
	}

	success, failed := p.pushWithConcurrency(ctx, due)
	return success, failed, nil
}

// dueThisHour 推荐的问询时间是否落在当前整点
func dueThisHour(patterns []models.ActivityPattern, now time.Time) bool {
	hourStart := time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), 0, 0, 0, now.Location())
	today := make([]models.ActivityPattern, 0, len(patterns))
	for _, pt := range patterns {
		if pt.DayOfWeek == int(now.Weekday()) {
			today = append(today, pt)
		}
	}
	// 从上一小时末开始计算，使当前整点也能被选中；今天没有数据时使用默认时间
	t := OptimalTiming(today, hourStart.Add(-time.Second))
	return !t.SuggestedAt.Before(hourStart) && t.SuggestedAt.Before(hourStart.Add(time.Hour))
}

func (p *InquiryPusher) wasSent(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sent[id]
}

func (p *InquiryPusher) markSent(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent[id] = true
}

// pushWithConcurrency 并发推送问询
func (p *InquiryPusher) pushWithConcurrency(ctx context.Context, list []models.InquiryQuestion) (int, int) {
	logger.Info("开始并发推送问询", "total_users", len(list), "concurrency", p.cfg.Concurrency)

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, p.cfg.Concurrency)

	var mu sync.Mutex
	var successCount, failCount int

	for _, q := range list {
		wg.Add(1)
		semaphore <- struct{}{} // acquire semaphore

		go func(q models.InquiryQuestion) {
			defer wg.Done()
			defer func() { <-semaphore }() // release semaphore

			err := p.pushViaHTTP(ctx, q)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failCount++
				logger.Error("问询推送失败", "user_id", q.UserID, "inquiry_id", q.ID, "error", err)
				return
			}
			successCount++
			p.markSent(q.ID)
			logger.Info("问询推送成功", "user_id", q.UserID, "inquiry_id", q.ID)
		}(q)
	}

	wg.Wait()
	logger.Info("并发推送完成", "success", successCount, "failed", failCount, "concurrency", p.cfg.Concurrency)
	return successCount, failCount
}

// pushViaHTTP 通过HTTP推送问询给第三方服务器
func (p *InquiryPusher) pushViaHTTP(ctx context.Context, q models.InquiryQuestion) error {
	localizeInquiry(&q, models.LanguageZH)
	payload := InquiryPushPayload{
		CID: q.UserID,
		Inquiry: InquiryPushMessage{
			ID:       q.ID,
			Question: utils.FilterSpecialSymbols(q.QuestionText),
			Priority: q.Priority,
			Options:  q.Options,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	auth := utils.NewPushAuth(p.cfg.APIKey, p.now())
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("timestamp", auth.Timestamp)
	req.Header.Set("Authorization", auth.Authorization)
	req.Header.Set("apiKey", p.cfg.APIKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var result struct {
		ErrCode int    `json:"errCode"`
		Msg     string `json:"msg"`
		Success bool   `json:"success"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if !result.Success || result.ErrCode != 200 {
		return fmt.Errorf("push rejected: code=%d msg=%s", result.ErrCode, result.Msg)
	}
	return nil
}

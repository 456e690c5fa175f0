package services

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"adaptive_coach/config"
	"adaptive_coach/logger"
	"adaptive_coach/models"
	"adaptive_coach/repository"
)

// 回看多少天的校准记录来找每个字段最近的取值
const signalLookbackDays = 7

// InquiryDeps 问询服务依赖的存储与后台任务
type InquiryDeps struct {
	Inquiries    InquiryStore
	Calibrations CalibrationStore
	Activity     ActivityStore
	Candidates   CandidateStore
	Refresher    ProfileRefresher
	Background   *Background
}

// InquiryService 决定何时向用户提问，并把回答写回健康数据
type InquiryService struct {
	inquiries    InquiryStore
	calibrations CalibrationStore
	activity     ActivityStore
	candidates   CandidateStore
	refresher    ProfileRefresher
	bg           *Background

	cfg      config.InquiryConfig
	cooldown time.Duration
	analyzer *GapAnalyzer
	loc      *time.Location
	locks    *userLocks
	now      func() time.Time
}

func NewInquiryService(cfg config.InquiryConfig, deps InquiryDeps) *InquiryService {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Warn("无法加载问询时区，使用UTC", "timezone", cfg.Timezone, "error", err)
		loc = time.UTC
	}
	bg := deps.Background
	if bg == nil {
		bg = NewBackground(0)
	}
	return &InquiryService{
		inquiries:    deps.Inquiries,
		calibrations: deps.Calibrations,
		activity:     deps.Activity,
		candidates:   deps.Candidates,
		refresher:    deps.Refresher,
		bg:           bg,
		cfg:          cfg,
		cooldown:     time.Duration(cfg.CooldownMin) * time.Minute,
		analyzer:     NewGapAnalyzer(cfg),
		loc:          loc,
		locks:        newUserLocks(),
		now:          time.Now,
	}
}

// localMidnight 配置时区下今天的零点
func (s *InquiryService) localMidnight(now time.Time) time.Time {
	local := now.In(s.loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.loc)
}

// GetPendingInquiry 返回用户当前待回答的问询。
// 已有待回答问询时原样返回；冷却期内或没有缺口时返回 hasInquiry=false
func (s *InquiryService) GetPendingInquiry(ctx context.Context, userID string, lang models.Language) (*models.PendingInquiry, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	unlock := s.locks.lock(userID)
	defer unlock()

	log := logger.With("user_id", userID)
	now := s.now()

	pending, err := s.inquiries.LatestPendingInquiry(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: load pending inquiry: %v", ErrPersistence, err)
	}
	if pending != nil {
		localizeInquiry(pending, lang)
		return &models.PendingInquiry{HasInquiry: true, Inquiry: pending}, nil
	}

	lastAt, err := s.inquiries.LatestResponseAt(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: load last response: %v", ErrPersistence, err)
	}
	if lastAt != nil && now.Sub(*lastAt) < s.cooldown {
		log.Debug("问询冷却中", "last_response_at", *lastAt)
		return &models.PendingInquiry{HasInquiry: false}, nil
	}

	answered, err := s.inquiries.AnsweredGapsSince(ctx, userID, s.localMidnight(now))
	if err != nil {
		return nil, fmt.Errorf("%w: load answered gaps: %v", ErrPersistence, err)
	}
	answeredSet := make(map[string]bool, len(answered))
	for _, f := range answered {
		answeredSet[f] = true
	}

	since := s.localMidnight(now).AddDate(0, 0, -signalLookbackDays).Format("2006-01-02")
	signals, err := s.calibrations.LatestSignals(ctx, userID, since)
	if err != nil {
		// 读不到校准数据时按全部缺失处理
		log.Warn("读取校准记录失败", "error", err)
		signals = nil
	}

	gaps := s.analyzer.Analyze(SnapshotFromSignals(signals), answeredSet, now)
	if len(gaps) == 0 {
		return &models.PendingInquiry{HasInquiry: false}, nil
	}
	top := gaps[0]
	tmpl, ok := TemplateFor(top.Field, lang)
	if !ok {
		return &models.PendingInquiry{HasInquiry: false}, nil
	}

	q := &models.InquiryQuestion{
		ID:                uuid.NewString(),
		UserID:            userID,
		QuestionText:      tmpl.Text,
		QuestionType:      tmpl.Type,
		Priority:          tmpl.Priority,
		DataGapsAddressed: []string{top.Field},
		DeliveryMethod:    models.DeliveryInApp,
		CreatedAt:         now.UTC(),
		Options:           append([]models.QuestionOption(nil), tmpl.Options...),
	}
	if err := s.inquiries.InsertInquiry(ctx, q); err != nil {
		return nil, fmt.Errorf("%w: store inquiry: %v", ErrPersistence, err)
	}
	log.Info("生成新的问询", "inquiry_id", q.ID, "gap", top.Field, "priority", q.Priority)

	q.FeedContent = s.attachCandidate(ctx, userID, now)
	return &models.PendingInquiry{HasInquiry: true, Inquiry: q}, nil
}

// attachCandidate 取相关度最高且未推送过的候选内容，并标记为已推送
func (s *InquiryService) attachCandidate(ctx context.Context, userID string, now time.Time) *models.CuratedContent {
	if s.candidates == nil {
		return nil
	}
	c, err := s.candidates.TopUnpushedCandidate(ctx, userID, s.cfg.CandidateMinScore)
	if err != nil {
		logger.Warn("读取候选内容失败", "user_id", userID, "error", err)
		return nil
	}
	if c == nil {
		return nil
	}
	if err := s.candidates.MarkCandidatePushed(ctx, userID, c.ContentID, now); err != nil {
		logger.Warn("标记候选内容已推送失败", "user_id", userID, "content_id", c.ContentID, "error", err)
	} else {
		at := now.UTC()
		c.IsPushed = true
		c.PushedAt = &at
	}
	return c
}

// CreateInquiry 直接创建一条问询。用户已有待回答问询时返回已有的那条
func (s *InquiryService) CreateInquiry(ctx context.Context, userID string, in models.InquiryInput) (*models.InquiryQuestion, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	text := strings.TrimSpace(in.QuestionText)
	if text == "" || !in.QuestionType.Valid() || !in.Priority.Valid() {
		return nil, ErrMissingFields
	}
	method := in.DeliveryMethod
	if method == "" {
		method = models.DeliveryInApp
	}
	if !method.Valid() {
		return nil, ErrMissingFields
	}
	gaps := in.DataGapsAddressed
	if gaps == nil {
		gaps = []string{}
	}

	unlock := s.locks.lock(userID)
	defer unlock()

	pending, err := s.inquiries.LatestPendingInquiry(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: load pending inquiry: %v", ErrPersistence, err)
	}
	if pending != nil {
		logger.Info("已有待回答的问询，不重复创建", "user_id", userID, "inquiry_id", pending.ID)
		return pending, nil
	}

	q := &models.InquiryQuestion{
		ID:                uuid.NewString(),
		UserID:            userID,
		QuestionText:      text,
		QuestionType:      in.QuestionType,
		Priority:          in.Priority,
		DataGapsAddressed: gaps,
		DeliveryMethod:    method,
		CreatedAt:         s.now().UTC(),
	}
	if err := s.inquiries.InsertInquiry(ctx, q); err != nil {
		return nil, fmt.Errorf("%w: store inquiry: %v", ErrPersistence, err)
	}
	return q, nil
}

// RespondToInquiry 记录回答。只有回答本身写入失败才返回错误，
// 校准与活跃度写入失败只记录告警
func (s *InquiryService) RespondToInquiry(ctx context.Context, userID, inquiryID, response string) (*models.InquiryQuestion, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	inquiryID = strings.TrimSpace(inquiryID)
	response = strings.TrimSpace(response)
	if inquiryID == "" || response == "" {
		return nil, ErrMissingFields
	}

	unlock := s.locks.lock(userID)
	defer unlock()

	now := s.now()
	q, err := s.inquiries.MarkInquiryResponded(ctx, userID, inquiryID, response, now)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInquiryNotFound
		}
		return nil, fmt.Errorf("%w: record response: %v", ErrPersistence, err)
	}
	logger.Info("问询已回答", "user_id", userID, "inquiry_id", q.ID, "gap", q.PrimaryGap(), "response", response)

	s.integrateResponse(ctx, q, response, now)
	return q, nil
}

// GetTiming 用户下一次问询的推荐时间
func (s *InquiryService) GetTiming(ctx context.Context, userID string) (*models.InquiryTiming, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	patterns, err := s.activity.ActivityPatterns(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: load activity patterns: %v", ErrPersistence, err)
	}
	t := OptimalTiming(patterns, s.now().In(s.loc))
	return &t, nil
}

// userLocks 按用户分段加锁，不同用户之间互不阻塞（哈希冲突除外）
type userLocks struct {
	stripes [64]sync.Mutex
}

func newUserLocks() *userLocks {
	return &userLocks{}
}

func (l *userLocks) lock(userID string) func() {
	h := fnv.New32a()
	h.Write([]byte(userID))
	m := &l.stripes[h.Sum32()%uint32(len(l.stripes))]
	m.Lock()
	return m.Unlock
}

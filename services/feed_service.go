package services

import (
	"context"
	"time"

	"adaptive_coach/cache"
	"adaptive_coach/logger"
	"adaptive_coach/models"
	"adaptive_coach/sources"
)

// 分页大小范围
const (
	MinFeedLimit     = 5
	MaxFeedLimit     = 20
	DefaultFeedLimit = 10
)

// FeedDeps 推荐流依赖
type FeedDeps struct {
	Profiles     *ProfileService
	Aggregator   *Aggregator
	Ranker       *Ranker
	Candidates   CandidateStore
	Cache        FeedCache
	Background   *Background
	PersistLimit int
}

// FeedService 生成个性化推荐流
type FeedService struct {
	profiles     *ProfileService
	aggregator   *Aggregator
	ranker       *Ranker
	candidates   CandidateStore
	cache        FeedCache
	bg           *Background
	persistLimit int
	now          func() time.Time
}

func NewFeedService(deps FeedDeps) *FeedService {
	c := deps.Cache
	if c == nil {
		c = cache.Noop{}
	}
	bg := deps.Background
	if bg == nil {
		bg = NewBackground(0)
	}
	return &FeedService{
		profiles:     deps.Profiles,
		aggregator:   deps.Aggregator,
		ranker:       deps.Ranker,
		candidates:   deps.Candidates,
		cache:        c,
		bg:           bg,
		persistLimit: deps.PersistLimit,
		now:          time.Now,
	}
}

// GetFeed 拉取、打分、抽样并返回一页内容。
// 内容源、画像、缓存与候选写入的失败都只降级不报错
func (s *FeedService) GetFeed(ctx context.Context, req models.FeedRequest) (*models.FeedPage, error) {
	if req.Limit <= 0 {
		req.Limit = DefaultFeedLimit
	}
	req.Limit = min(max(req.Limit, MinFeedLimit), MaxFeedLimit)
	req.Cursor = max(req.Cursor, 0)
	req.Cycle = max(req.Cycle, 0)
	if req.Language == "" {
		req.Language = models.LanguageEN
	}

	now := s.now().UTC()
	day := now.Format("2006-01-02")
	key := cache.FeedKey(req.UserID, day, req.Cycle, req.Language, req.Limit, req.Cursor, req.Exclude)
	if page, ok := s.cache.Get(ctx, key); ok {
		logger.Debug("推荐流命中缓存", "user_id", req.UserID, "key", key)
		return page, nil
	}

	profile, insights := s.profiles.LoadInterestProfile(ctx, req.UserID)
	keywords := s.ranker.ExpandKeywords(profile.Tags)
	log := logger.With("user_id", req.UserID)
	log.Info("开始生成推荐流", "tags", profile.Tags, "keywords", keywords)

	cands := s.aggregator.Aggregate(ctx, sources.Query{
		Keywords: keywords,
		Tags:     profile.Tags,
		Language: req.Language,
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cands = filterLanguage(cands, req.Language)
	ranked := s.ranker.Rank(cands, keywords, profile.Tags)
	s.persistCandidates(req.UserID, ranked, now)

	exclude := make(map[string]bool, len(req.Exclude))
	for _, id := range req.Exclude {
		exclude[id] = true
	}
	items, next, total := SamplePage(ranked, req.Limit, req.Cursor, FeedSeed(req.UserID, now, req.Cycle), exclude)

	in := BenefitInput{Profile: profile, Insights: insights, Language: req.Language}
	for i := range items {
		items[i].Benefit = BuildBenefit(items[i].ContentItem, in)
	}

	page := &models.FeedPage{
		Items:       items,
		NextCursor:  next,
		Total:       total,
		Keywords:    TopKeywords(keywords),
		GeneratedAt: now,
	}
	s.cache.Set(ctx, key, page)
	log.Info("推荐流生成完成", "candidates", len(ranked), "total", total, "returned", len(items))
	return page, nil
}

// persistCandidates 后台写入候选队列，供问询附带推荐内容
func (s *FeedService) persistCandidates(userID string, ranked []models.FeedItem, now time.Time) {
	if userID == "" || s.candidates == nil || len(ranked) == 0 {
		return
	}
	top := ranked
	if s.persistLimit > 0 && len(top) > s.persistLimit {
		top = top[:s.persistLimit]
	}
	rows := make([]models.CuratedContent, 0, len(top))
	for _, it := range top {
		if it.MatchScore < minMatchScore {
			continue
		}
		rows = append(rows, models.CuratedContent{
			UserID:         userID,
			ContentID:      it.ID,
			Title:          it.Title,
			Summary:        it.Summary,
			URL:            it.URL,
			Source:         it.Source,
			SourceLabel:    it.SourceLabel,
			Language:       it.Language,
			RelevanceScore: float64(it.MatchScore) / 100,
		})
	}
	s.bg.Go("persist_feed_candidates", func(ctx context.Context) error {
		return s.candidates.UpsertCandidates(ctx, rows, now)
	})
}

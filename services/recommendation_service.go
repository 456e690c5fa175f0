package services

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"adaptive_coach/logger"
	"adaptive_coach/models"
	"adaptive_coach/sources"
)

// Aggregator 并行调用各内容源并合并结果
type Aggregator struct {
	sources []sources.Source
	timeout time.Duration
}

// NewAggregator 按给定顺序合并内容源的结果，timeout 为单个内容源的超时时间
func NewAggregator(timeout time.Duration, srcs ...sources.Source) *Aggregator {
	return &Aggregator{sources: srcs, timeout: timeout}
}

// Aggregate 返回归一化、去重后的候选内容。
// 单个内容源失败或超时只记录日志，不影响其他内容源
func (a *Aggregator) Aggregate(ctx context.Context, q sources.Query) []Candidate {
	start := time.Now()
	perSource := make([][]models.RawRecord, len(a.sources))

	g, gctx := errgroup.WithContext(ctx)
	for i, src := range a.sources {
		i, src := i, src
		g.Go(func() error {
			sctx := gctx
			if a.timeout > 0 {
				var cancel context.CancelFunc
				sctx, cancel = context.WithTimeout(gctx, a.timeout)
				defer cancel()
			}
			records, err := fetchSafely(sctx, src, q)
			if err != nil {
				logger.Warn("内容源获取失败，跳过", "source", src.Name(), "error", err)
				return nil
			}
			perSource[i] = records
			logger.Debug("内容源获取完成", "source", src.Name(), "count", len(records))
			return nil
		})
	}
	_ = g.Wait()

	items := make([]models.ContentItem, 0)
	hints := make(map[string]models.RawRecord)
	fetched := 0
	for _, records := range perSource {
		fetched += len(records)
		for _, raw := range records {
			item, ok := NormalizeRecord(raw)
			if !ok {
				continue
			}
			if _, seen := hints[item.ID]; !seen {
				hints[item.ID] = raw
			}
			items = append(items, item)
		}
	}
	items = DedupeItems(items)

	cands := make([]Candidate, 0, len(items))
	for _, it := range items {
		raw := hints[it.ID]
		cands = append(cands, Candidate{Item: it, Relevance: raw.Relevance, Popularity: raw.Popularity})
	}
	logger.Info("内容聚合完成",
		"fetched", fetched,
		"after_dedup", len(cands),
		"cost", time.Since(start).String())
	return cands
}

// fetchSafely 内容源 panic 时按失败处理
func fetchSafely(ctx context.Context, src sources.Source, q sources.Query) (records []models.RawRecord, err error) {
	err = run(ctx, func(ctx context.Context) error {
		var ferr error
		records, ferr = src.Fetch(ctx, q)
		return ferr
	})
	return records, err
}

// filterLanguage 非中文请求只保留英文内容，过滤后为空时保留全部
func filterLanguage(cands []Candidate, lang models.Language) []Candidate {
	if lang == models.LanguageZH {
		return cands
	}
	en := make([]Candidate, 0, len(cands))
	for _, c := range cands {
		if c.Item.Language == models.LanguageEN {
			en = append(en, c)
		}
	}
	if len(en) == 0 {
		return cands
	}
	return en
}

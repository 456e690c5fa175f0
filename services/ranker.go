package services

import (
	"math"
	"sort"
	"strings"

	"adaptive_coach/models"
)

const (
	defaultPopularity = 4.2
	defaultRelevance  = 0.7
	minMatchScore     = 60
	maxMatchScore     = 100
)

// Candidate 参与排序的内容及来源给出的提示
type Candidate struct {
	Item       models.ContentItem
	Relevance  *float64
	Popularity *float64
}

// Ranker 根据用户标签给内容打分
type Ranker struct {
	tagKeywords     map[string][]string
	defaultKeywords []string
}

func NewRanker(tagKeywords map[string][]string, fallback []string) *Ranker {
	return &Ranker{tagKeywords: tagKeywords, defaultKeywords: fallback}
}

// ExpandKeywords 标签展开为检索关键词，保持顺序去重。
// 没有可识别标签时返回默认关键词
func (r *Ranker) ExpandKeywords(tags []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, tag := range tags {
		for _, kw := range r.tagKeywords[tag] {
			if !seen[kw] {
				seen[kw] = true
				out = append(out, kw)
			}
		}
	}
	if len(out) == 0 {
		out = append(out, r.defaultKeywords...)
	}
	return out
}

// TopKeywords 对外展示用的前 6 个关键词，打分仍用完整列表
func TopKeywords(keywords []string) []string {
	if len(keywords) > maxKeywords {
		return keywords[:maxKeywords:maxKeywords]
	}
	return keywords
}

// TagBoost 命中至少一个关键词的用户标签占比
func (r *Ranker) TagBoost(item models.ContentItem, tags []string) float64 {
	if len(tags) == 0 {
		return 0
	}
	text := strings.ToLower(item.Title + " " + item.Summary)
	hit := 0
	for _, tag := range tags {
		for _, kw := range r.tagKeywords[tag] {
			if strings.Contains(text, strings.ToLower(kw)) {
				hit++
				break
			}
		}
	}
	return float64(hit) / float64(len(tags))
}

// KeywordScore 70 + 命中率*30
func KeywordScore(item models.ContentItem, keywords []string) float64 {
	if len(keywords) == 0 {
		return 70
	}
	text := strings.ToLower(item.Title + " " + item.Summary)
	hit := 0
	for _, kw := range keywords {
		if strings.Contains(text, strings.ToLower(kw)) {
			hit++
		}
	}
	return 70 + float64(hit)/float64(len(keywords))*30
}

// BaseScore 社交来源按热度，其他来源按相关度
func BaseScore(c Candidate) float64 {
	if c.Item.Source.IsSocial() {
		pop := defaultPopularity
		if c.Popularity != nil {
			pop = *c.Popularity
		}
		return pop / 5 * 100
	}
	rel := defaultRelevance
	if c.Relevance != nil {
		rel = *c.Relevance
	}
	return 70 + rel*30
}

// MatchScore 综合得分，取整后限制在 [60, 100]
func MatchScore(c Candidate, keywords []string, tagBoost float64) int {
	raw := (BaseScore(c)+KeywordScore(c.Item, keywords))/2 + tagBoost*10
	score := int(math.Round(raw))
	if score < minMatchScore {
		return minMatchScore
	}
	if score > maxMatchScore {
		return maxMatchScore
	}
	return score
}

// Rank 打分并按得分降序排列，同分保持输入顺序
func (r *Ranker) Rank(cands []Candidate, keywords, tags []string) []models.FeedItem {
	items := make([]models.FeedItem, 0, len(cands))
	for _, c := range cands {
		items = append(items, models.FeedItem{
			ContentItem: c.Item,
			MatchScore:  MatchScore(c, keywords, r.TagBoost(c.Item, tags)),
		})
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].MatchScore > items[j].MatchScore })
	return items
}

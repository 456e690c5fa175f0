package services

import (
	"fmt"
	"sort"
	"time"

	"adaptive_coach/models"
)

// FeedSeed 同一用户同一天同一轮次得到相同的种子
func FeedSeed(userID string, day time.Time, cycle int) string {
	if userID == "" {
		userID = "anon"
	}
	return fmt.Sprintf("%s-%s-%d", userID, day.Format("2006-01-02"), cycle)
}

// seededRandom 由字符串种子得到 [0,1) 的确定性序列：FNV-1a 哈希作初值，mulberry32 生成
func seededRandom(seed string) func() float64 {
	h := uint32(2166136261)
	for i := 0; i < len(seed); i++ {
		h ^= uint32(seed[i])
		h *= 16777619
	}
	return func() float64 {
		h += 0x6d2b79f5
		t := (h ^ (h >> 15)) * (1 | h)
		t ^= t + (t^(t>>7))*(61|t)
		return float64(t^(t>>14)) / 4294967296
	}
}

// shuffle 从尾部开始的 Fisher-Yates 洗牌，返回新切片
func shuffle[T any](items []T, seed string) []T {
	out := append([]T(nil), items...)
	rng := seededRandom(seed)
	for i := len(out) - 1; i > 0; i-- {
		j := int(rng() * float64(i+1))
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// orderFeed 从已排序的候选中取头部池洗牌，截取窗口后按得分重排。
// ranked 需已按得分降序
func orderFeed(ranked []models.FeedItem, limit int, seed string) []models.FeedItem {
	pool := ranked
	if n := max(limit*12, 80); len(pool) > n {
		pool = pool[:n]
	}
	window := shuffle(pool, seed)
	if n := max(limit*8, 60); len(window) > n {
		window = window[:n]
	}
	sort.SliceStable(window, func(i, j int) bool { return window[i].MatchScore > window[j].MatchScore })
	return window
}

// SamplePage 排除已展示内容后取一页。返回当前页、下一页游标与总数
func SamplePage(ranked []models.FeedItem, limit, cursor int, seed string, exclude map[string]bool) ([]models.FeedItem, *int, int) {
	filtered := make([]models.FeedItem, 0, len(ranked))
	for _, it := range ranked {
		if !exclude[it.ID] {
			filtered = append(filtered, it)
		}
	}
	ordered := orderFeed(filtered, limit, seed)

	total := len(ordered)
	if cursor >= total {
		return []models.FeedItem{}, nil, total
	}
	end := min(cursor+limit, total)
	page := append([]models.FeedItem(nil), ordered[cursor:end]...)

	var next *int
	if end < total {
		next = &end
	}
	return page, next, total
}

package services

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"adaptive_coach/models"
)

// 中文字符占比超过该值判定为中文
const cjkRatioThreshold = 0.08

// DetectLanguage 按 CJK 统一表意字符占比判定语言
func DetectLanguage(text string) models.Language {
	total := utf8.RuneCountInString(text)
	if total == 0 {
		return models.LanguageEN
	}
	cjk := 0
	for _, r := range text {
		if r >= '一' && r <= '鿿' {
			cjk++
		}
	}
	if float64(cjk)/float64(total) > cjkRatioThreshold {
		return models.LanguageZH
	}
	return models.LanguageEN
}

// NormalizeRecord 将原始记录转为统一内容。缺少 id、标题或链接时返回 false
func NormalizeRecord(raw models.RawRecord) (models.ContentItem, bool) {
	id := strings.TrimSpace(raw.ID)
	title := strings.TrimSpace(raw.Title)
	link := strings.TrimSpace(raw.URL)
	if id == "" || title == "" || link == "" {
		return models.ContentItem{}, false
	}
	summary := strings.TrimSpace(raw.Summary)

	label := raw.Label
	if label == "" {
		label = raw.Kind.Label()
	}

	item := models.ContentItem{
		ID:          id,
		Title:       title,
		Summary:     summary,
		URL:         link,
		Source:      raw.Kind,
		SourceLabel: label,
		PublishedAt: raw.PublishedAt,
		Language:    DetectLanguage(title + " " + summary),
		MatchedTags: raw.MatchedTags,
	}
	if a := strings.TrimSpace(raw.Author); a != "" {
		item.Author = &a
	}
	if th := strings.TrimSpace(raw.Thumbnail); th != "" {
		item.Thumbnail = &th
	}
	return item, true
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]`)

// titleKey 标题去重键：小写后只保留字母数字，取前 30 个字符
func titleKey(title string) string {
	key := nonAlnum.ReplaceAllString(strings.ToLower(title), "")
	if len(key) > 30 {
		key = key[:30]
	}
	return key
}

// DedupeItems 按 id 与标题前缀去重，保留先出现的条目
func DedupeItems(items []models.ContentItem) []models.ContentItem {
	seenID := make(map[string]bool, len(items))
	seenTitle := make(map[string]bool, len(items))
	out := make([]models.ContentItem, 0, len(items))
	for _, it := range items {
		if seenID[it.ID] {
			continue
		}
		key := titleKey(it.Title)
		// 纯中文标题去掉非字母数字后为空，不参与标题去重
		if key != "" && seenTitle[key] {
			continue
		}
		seenID[it.ID] = true
		if key != "" {
			seenTitle[key] = true
		}
		out = append(out, it)
	}
	return out
}

package models

import (
	"strings"
	"time"
)

// SourceKind 内容来源
type SourceKind string

const (
	SourcePubMed          SourceKind = "pubmed"
	SourceSemanticScholar SourceKind = "semantic_scholar"
	SourceYouTube         SourceKind = "youtube"
	SourceX               SourceKind = "x"
	SourceReddit          SourceKind = "reddit"
	SourceKnowledgeBase   SourceKind = "knowledge_base"
)

var sourceLabels = map[SourceKind]string{
	SourcePubMed:          "PubMed",
	SourceSemanticScholar: "Semantic Scholar",
	SourceYouTube:         "YouTube",
	SourceX:               "X",
	SourceReddit:          "Reddit",
	SourceKnowledgeBase:   "Knowledge Base",
}

// Label 展示用的来源名称
func (k SourceKind) Label() string {
	if l, ok := sourceLabels[k]; ok {
		return l
	}
	return string(k)
}

// IsSocial 社交平台内容按热度打分
func (k SourceKind) IsSocial() bool {
	return k == SourceX || k == SourceReddit
}

// Language 内容语言
type Language string

const (
	LanguageZH Language = "zh"
	LanguageEN Language = "en"
)

// ParseLanguage 解析请求语言，只接受 zh / en
func ParseLanguage(s string) (Language, bool) {
	switch Language(strings.ToLower(strings.TrimSpace(s))) {
	case LanguageZH:
		return LanguageZH, true
	case LanguageEN:
		return LanguageEN, true
	}
	return "", false
}

// RawRecord 内容源返回的原始记录
type RawRecord struct {
	Kind        SourceKind
	ID          string
	Title       string
	Summary     string
	URL         string
	Label       string // 覆盖默认来源名称
	PublishedAt *time.Time
	Author      string
	Thumbnail   string
	MatchedTags []string
	Relevance   *float64 // 0-1 的相关度提示
	Popularity  *float64 // 0-5 的热度，仅社交来源
}

// ContentItem 归一化后的内容
type ContentItem struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Summary     string     `json:"summary"`
	URL         string     `json:"url"`
	Source      SourceKind `json:"source"`
	SourceLabel string     `json:"sourceLabel"`
	PublishedAt *time.Time `json:"publishedAt"`
	Author      *string    `json:"author"`
	Thumbnail   *string    `json:"thumbnail"`
	Language    Language   `json:"language"`
	MatchedTags []string   `json:"matchedTags,omitempty"`
}

// FeedItem 带评分与推荐理由的内容
type FeedItem struct {
	ContentItem
	MatchScore int    `json:"matchScore"`
	Benefit    string `json:"benefit"`
}

// FeedPage 推荐流分页结果
type FeedPage struct {
	Items       []FeedItem `json:"items"`
	NextCursor  *int       `json:"nextCursor"`
	Total       int        `json:"total"`
	Keywords    []string   `json:"keywords"`
	GeneratedAt time.Time  `json:"generatedAt"`
}

// FeedRequest 推荐流请求参数
type FeedRequest struct {
	UserID   string
	Limit    int
	Cursor   int
	Cycle    int
	Language Language
	Exclude  []string
}

// CuratedContent 候选内容队列中的一条记录
type CuratedContent struct {
	UserID         string     `json:"user_id"`
	ContentID      string     `json:"content_id"`
	Title          string     `json:"title"`
	Summary        string     `json:"summary"`
	URL            string     `json:"url"`
	Source         SourceKind `json:"source"`
	SourceLabel    string     `json:"source_label"`
	Language       Language   `json:"language"`
	RelevanceScore float64    `json:"relevance_score"`
	IsPushed       bool       `json:"is_pushed"`
	PushedAt       *time.Time `json:"pushed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

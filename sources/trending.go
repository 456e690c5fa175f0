package sources

import (
	"context"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"adaptive_coach/models"
)

// TrendingTopic 社交平台热门话题
type TrendingTopic struct {
	ID          string   `yaml:"id"`
	Platform    string   `yaml:"platform"` // x / reddit
	Title       string   `yaml:"title"`
	Summary     string   `yaml:"summary"`
	URL         string   `yaml:"url"`
	Author      string   `yaml:"author"`
	Popularity  *float64 `yaml:"popularity"` // 0-5
	Tags        []string `yaml:"tags"`
	PublishedAt string   `yaml:"published_at"` // YYYY-MM-DD
}

// Trending 从静态文件读取的社交热门话题
type Trending struct {
	topics []TrendingTopic
}

// LoadTrending 读取热门话题文件
func LoadTrending(path string) (*Trending, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file struct {
		Topics []TrendingTopic `yaml:"topics"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return NewTrending(file.Topics), nil
}

func NewTrending(topics []TrendingTopic) *Trending {
	return &Trending{topics: topics}
}

func (t *Trending) Name() string { return "trending" }

func (t *Trending) Fetch(_ context.Context, q Query) ([]models.RawRecord, error) {
	userTags := make(map[string]bool, len(q.Tags))
	for _, tag := range q.Tags {
		userTags[tag] = true
	}

	records := make([]models.RawRecord, 0, len(t.topics))
	for _, topic := range t.topics {
		kind := models.SourceKind(topic.Platform)
		if !kind.IsSocial() {
			continue
		}
		rec := models.RawRecord{
			Kind:       kind,
			ID:         topic.ID,
			Title:      topic.Title,
			Summary:    topic.Summary,
			URL:        topic.URL,
			Author:     topic.Author,
			Popularity: topic.Popularity,
		}
		for _, tag := range topic.Tags {
			if userTags[tag] {
				rec.MatchedTags = append(rec.MatchedTags, tag)
			}
		}
		if ts, err := time.Parse("2006-01-02", topic.PublishedAt); err == nil {
			rec.PublishedAt = &ts
		}
		records = append(records, rec)
	}
	return records, nil
}

package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"adaptive_coach/logger"
	"adaptive_coach/models"
)

// Knowledge 内部知识库检索（RAG 服务）
type Knowledge struct {
	URL            string
	APIKey         string
	KnowledgeIDs   []string
	TopK           int
	Threshold      float32
	DocURLTemplate string
	Client         *http.Client
}

type ragResp struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		Results []struct {
			DocumentID string  `json:"document_id"`
			Title      string  `json:"title"`
			Content    string  `json:"content"`
			Summary    string  `json:"summary"`
			Score      float64 `json:"score"`
		} `json:"results"`
	} `json:"data"`
}

func (k *Knowledge) Name() string { return string(models.SourceKnowledgeBase) }

func (k *Knowledge) Fetch(ctx context.Context, q Query) ([]models.RawRecord, error) {
	if len(q.Keywords) == 0 {
		return nil, nil
	}
	payload, err := json.Marshal(map[string]any{
		"knowledge_ids": k.KnowledgeIDs,
		"query":         strings.Join(q.Keywords, " "),
		"threshold":     k.Threshold,
		"top_k":         k.TopK,
	})
	if err != nil {
		return nil, err
	}

	body, err := doWithRetry(ctx, k.Client, k.Name(), func() (*http.Request, error) {
		req, err := http.NewRequest(http.MethodPost, k.URL, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("accept", "application/json")
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", k.APIKey))
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	if err != nil {
		return nil, err
	}

	var rr ragResp
	if err := json.Unmarshal(body, &rr); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", k.Name(), err)
	}
	// 检查业务状态码
	if rr.Code != 0 {
		return nil, fmt.Errorf("%s: business error %d: %s", k.Name(), rr.Code, rr.Message)
	}

	records := make([]models.RawRecord, 0, len(rr.Data.Results))
	for _, r := range rr.Data.Results {
		title := removeMarkdownHeaders(r.Title)
		summary := removeMarkdownHeaders(firstNonEmpty(r.Summary, r.Content))
		if title == "" || r.DocumentID == "" {
			logger.Debug("跳过空的知识库条目", "document_id", r.DocumentID)
			continue
		}
		score := r.Score
		if score > 1 {
			score = 1
		}
		records = append(records, models.RawRecord{
			Kind:      models.SourceKnowledgeBase,
			ID:        "kb_" + r.DocumentID,
			Title:     title,
			Summary:   summary,
			URL:       k.docURL(r.DocumentID),
			Relevance: &score,
		})
	}
	return records, nil
}

// 未配置链接模板时返回空，归一化阶段会丢弃该条目
func (k *Knowledge) docURL(documentID string) string {
	if !strings.Contains(k.DocURLTemplate, "%s") {
		return ""
	}
	return fmt.Sprintf(k.DocURLTemplate, documentID)
}

// removeMarkdownHeaders 去掉 ## 标题前缀，保留文字
func removeMarkdownHeaders(content string) string {
	lines := strings.Split(content, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") {
			trimmed = strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
		}
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return strings.Join(out, "\n")
}

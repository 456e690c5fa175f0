package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"adaptive_coach/models"
)

// PubMed 通过 E-utilities 的 esearch + esummary 检索文献
type PubMed struct {
	BaseURL string
	APIKey  string
	Limit   int
	Client  *http.Client
}

func (p *PubMed) Name() string { return string(models.SourcePubMed) }

type esearchResp struct {
	ESearchResult struct {
		IDList []string `json:"idlist"`
	} `json:"esearchresult"`
}

type esummaryDoc struct {
	UID     string `json:"uid"`
	Title   string `json:"title"`
	PubDate string `json:"pubdate"`
	Source  string `json:"source"`
	Authors []struct {
		Name string `json:"name"`
	} `json:"authors"`
}

func (p *PubMed) Fetch(ctx context.Context, q Query) ([]models.RawRecord, error) {
	if len(q.Keywords) == 0 {
		return nil, nil
	}
	term := buildPubMedTerm(q.Keywords)
	searchURL := fmt.Sprintf("%s/esearch.fcgi?db=pubmed&term=%s&retmax=%d&retmode=json&sort=relevance%s",
		p.BaseURL, url.QueryEscape(term), p.Limit, p.keyParam())

	var search esearchResp
	if err := getJSON(ctx, p.Client, p.Name(), searchURL, nil, &search); err != nil {
		return nil, err
	}
	ids := search.ESearchResult.IDList
	if len(ids) == 0 {
		return nil, nil
	}

	summaryURL := fmt.Sprintf("%s/esummary.fcgi?db=pubmed&id=%s&retmode=json%s",
		p.BaseURL, strings.Join(ids, ","), p.keyParam())
	var summary struct {
		Result map[string]any `json:"result"`
	}
	if err := getJSON(ctx, p.Client, p.Name(), summaryURL, nil, &summary); err != nil {
		return nil, err
	}

	records := make([]models.RawRecord, 0, len(ids))
	for _, pmid := range ids {
		doc, ok := decodeSummaryDoc(summary.Result[pmid])
		if !ok || strings.TrimSpace(doc.Title) == "" {
			continue
		}
		rec := models.RawRecord{
			Kind:      models.SourcePubMed,
			ID:        "pubmed_" + pmid,
			Title:     doc.Title,
			Summary:   doc.Source,
			URL:       fmt.Sprintf("https://pubmed.ncbi.nlm.nih.gov/%s/", pmid),
			Relevance: ptr(0.8),
		}
		if len(doc.Authors) > 0 {
			rec.Author = doc.Authors[0].Name
		}
		if t, ok := parsePubDate(doc.PubDate); ok {
			rec.PublishedAt = &t
		}
		records = append(records, rec)
	}
	return records, nil
}

func (p *PubMed) keyParam() string {
	if p.APIKey == "" {
		return ""
	}
	return "&api_key=" + url.QueryEscape(p.APIKey)
}

// 最多 5 个关键词，OR 连接
func buildPubMedTerm(keywords []string) string {
	if len(keywords) > 5 {
		keywords = keywords[:5]
	}
	parts := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.TrimSpace(k)
		if k != "" {
			parts = append(parts, "("+k+")")
		}
	}
	return strings.Join(parts, " OR ")
}

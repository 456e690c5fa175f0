package sources

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"adaptive_coach/models"
	"adaptive_coach/utils"
)

const (
	semanticScholarFields = "paperId,title,abstract,year,citationCount,url,externalIds,authors"
	maxAbstractRunes      = 300
)

// SemanticScholar 检索 Semantic Scholar Graph API
type SemanticScholar struct {
	BaseURL string
	APIKey  string
	Limit   int
	Client  *http.Client
}

func (s *SemanticScholar) Name() string { return string(models.SourceSemanticScholar) }

type semanticPaper struct {
	PaperID       string `json:"paperId"`
	Title         string `json:"title"`
	Abstract      string `json:"abstract"`
	Year          *int   `json:"year"`
	CitationCount *int   `json:"citationCount"`
	URL           string `json:"url"`
	ExternalIDs   struct {
		DOI string `json:"DOI"`
	} `json:"externalIds"`
	Authors []struct {
		Name string `json:"name"`
	} `json:"authors"`
}

func (s *SemanticScholar) Fetch(ctx context.Context, q Query) ([]models.RawRecord, error) {
	if len(q.Keywords) == 0 {
		return nil, nil
	}
	terms := q.Keywords
	if len(terms) > 3 {
		terms = terms[:3]
	}
	searchURL := fmt.Sprintf("%s/paper/search?query=%s&limit=%d&fields=%s",
		s.BaseURL, url.QueryEscape(strings.Join(terms, " ")), s.Limit, semanticScholarFields)

	headers := map[string]string{}
	if s.APIKey != "" {
		headers["x-api-key"] = s.APIKey
	}
	var resp struct {
		Data []semanticPaper `json:"data"`
	}
	if err := getJSON(ctx, s.Client, s.Name(), searchURL, headers, &resp); err != nil {
		return nil, err
	}

	records := make([]models.RawRecord, 0, len(resp.Data))
	for _, p := range resp.Data {
		if p.PaperID == "" || strings.TrimSpace(p.Title) == "" {
			continue
		}
		rec := models.RawRecord{
			Kind:      models.SourceSemanticScholar,
			ID:        "semantic_" + p.PaperID,
			Title:     p.Title,
			Summary:   utils.TruncateRunes(p.Abstract, maxAbstractRunes),
			URL:       paperURL(p),
			Relevance: ptr(citationRelevance(p.CitationCount)),
		}
		if len(p.Authors) > 0 {
			rec.Author = p.Authors[0].Name
		}
		if p.Year != nil && *p.Year > 0 {
			t := time.Date(*p.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
			rec.PublishedAt = &t
		}
		records = append(records, rec)
	}
	return records, nil
}

func paperURL(p semanticPaper) string {
	switch {
	case p.URL != "":
		return p.URL
	case p.ExternalIDs.DOI != "":
		return "https://doi.org/" + p.ExternalIDs.DOI
	default:
		return "https://www.semanticscholar.org/paper/" + p.PaperID
	}
}

// 引用数越高相关度越高，上限 0.95
func citationRelevance(citations *int) float64 {
	if citations == nil || *citations <= 0 {
		return 0.7
	}
	return math.Min(0.5+float64(*citations)/1000, 0.95)
}


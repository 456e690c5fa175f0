package services

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"adaptive_coach/models"
	"adaptive_coach/repository"
	"adaptive_coach/sources"
)

// stubSource 返回固定记录的内容源
type stubSource struct {
	name    string
	records []models.RawRecord
	err     error
	panics  bool
	calls   atomic.Int32
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Fetch(_ context.Context, _ sources.Query) ([]models.RawRecord, error) {
	s.calls.Add(1)
	if s.panics {
		panic("upstream exploded")
	}
	return s.records, s.err
}

func raw(kind models.SourceKind, id, title string) models.RawRecord {
	return models.RawRecord{Kind: kind, ID: id, Title: title, URL: "https://example.com/" + id}
}

// memoryCache 进程内的推荐流缓存
type memoryCache struct {
	mu    sync.Mutex
	pages map[string]*models.FeedPage
}

func (c *memoryCache) Get(_ context.Context, key string) (*models.FeedPage, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.pages[key]
	return p, ok
}

func (c *memoryCache) Set(_ context.Context, key string, page *models.FeedPage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pages[key] = page
}

func (c *memoryCache) InvalidateUser(context.Context, string) error { return nil }

func newTestFeedService(store *repository.Store, bg *Background, cache FeedCache, srcs ...sources.Source) *FeedService {
	contexts := NewInquiryContextService(store)
	deps := FeedDeps{
		Profiles:     NewProfileService(store, contexts),
		Aggregator:   NewAggregator(time.Second, srcs...),
		Ranker:       NewRanker(DefaultTagKeywords(), DefaultKeywords()),
		Candidates:   store,
		Cache:        cache,
		Background:   bg,
		PersistLimit: 20,
	}
	return NewFeedService(deps)
}

func TestFeedWithoutSourcesUsesDefaultKeywords(t *testing.T) {
	store := newTestStore(t)
	svc := newTestFeedService(store, NewBackground(time.Second), nil)

	page, err := svc.GetFeed(context.Background(), models.FeedRequest{Limit: 10})
	if err != nil {
		t.Fatalf("feed: %v", err)
	}
	if len(page.Items) != 0 || page.Total != 0 || page.NextCursor != nil {
		t.Errorf("expected empty page, got %+v", page)
	}
	if !reflect.DeepEqual(page.Keywords, DefaultKeywords()) {
		t.Errorf("keywords = %v, want defaults", page.Keywords)
	}
}

func TestFeedToleratesFailingSources(t *testing.T) {
	store := newTestStore(t)
	bg := NewBackground(time.Second)

	good := &stubSource{name: "pubmed", records: []models.RawRecord{
		raw(models.SourcePubMed, "pubmed_1", "Mindfulness and stress management"),
		raw(models.SourcePubMed, "pubmed_2", "HRV biofeedback in clinical practice"),
	}}
	broken := &stubSource{name: "semantic_scholar", err: errors.New("503 from upstream")}
	panicky := &stubSource{name: "youtube", panics: true}
	social := &stubSource{name: "trending", records: []models.RawRecord{
		raw(models.SourceReddit, "reddit_1", "Box breathing before meetings"),
	}}

	svc := newTestFeedService(store, bg, nil, good, broken, panicky, social)
	page, err := svc.GetFeed(context.Background(), models.FeedRequest{UserID: "u1", Limit: 5, Language: models.LanguageEN})
	if err != nil {
		t.Fatalf("feed: %v", err)
	}
	if page.Total != 3 || len(page.Items) != 3 {
		t.Fatalf("total = %d items = %d, want 3", page.Total, len(page.Items))
	}
	for _, it := range page.Items {
		if it.MatchScore < 60 || it.MatchScore > 100 {
			t.Errorf("%s score %d out of range", it.ID, it.MatchScore)
		}
		if it.Benefit == "" {
			t.Errorf("%s has no benefit text", it.ID)
		}
	}

	bg.Wait()
	top, err := store.TopUnpushedCandidate(context.Background(), "u1", 0.6)
	if err != nil {
		t.Fatalf("top candidate: %v", err)
	}
	if top == nil {
		t.Error("ranked items should be persisted as candidates")
	}
}

func TestFeedLanguageFilter(t *testing.T) {
	store := newTestStore(t)
	src := &stubSource{name: "mixed", records: []models.RawRecord{
		raw(models.SourceKnowledgeBase, "kb_1", "睡眠与皮质醇的关系"),
		raw(models.SourcePubMed, "pubmed_1", "Sleep and cortisol"),
	}}
	svc := newTestFeedService(store, NewBackground(time.Second), nil, src)

	en, err := svc.GetFeed(context.Background(), models.FeedRequest{Limit: 5, Language: models.LanguageEN})
	if err != nil {
		t.Fatalf("en feed: %v", err)
	}
	if en.Total != 1 || en.Items[0].ID != "pubmed_1" {
		t.Errorf("english feed should drop chinese items, got %+v", en.Items)
	}

	zh, err := svc.GetFeed(context.Background(), models.FeedRequest{Limit: 5, Language: models.LanguageZH})
	if err != nil {
		t.Fatalf("zh feed: %v", err)
	}
	if zh.Total != 2 {
		t.Errorf("chinese feed should keep all items, got %d", zh.Total)
	}
}

func TestFeedClampsLimitAndUsesCache(t *testing.T) {
	store := newTestStore(t)
	records := make([]models.RawRecord, 0, 30)
	for i := 0; i < 30; i++ {
		records = append(records, raw(models.SourcePubMed, fmt.Sprintf("pubmed_%d", i), fmt.Sprintf("Study number %d", i)))
	}
	src := &stubSource{name: "pubmed", records: records}
	cache := &memoryCache{pages: make(map[string]*models.FeedPage)}
	svc := newTestFeedService(store, NewBackground(time.Second), cache, src)

	req := models.FeedRequest{Limit: 100, Language: models.LanguageEN}
	first, err := svc.GetFeed(context.Background(), req)
	if err != nil {
		t.Fatalf("feed: %v", err)
	}
	if len(first.Items) != MaxFeedLimit {
		t.Errorf("items = %d, want %d", len(first.Items), MaxFeedLimit)
	}

	second, err := svc.GetFeed(context.Background(), req)
	if err != nil {
		t.Fatalf("cached feed: %v", err)
	}
	if second != first {
		t.Error("second request should be served from cache")
	}
	if n := src.calls.Load(); n != 1 {
		t.Errorf("source called %d times, want 1", n)
	}
}

func TestFeedCanceledContext(t *testing.T) {
	store := newTestStore(t)
	svc := newTestFeedService(store, NewBackground(time.Second), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := svc.GetFeed(ctx, models.FeedRequest{}); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

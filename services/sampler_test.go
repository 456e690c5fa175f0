package services

import (
	"fmt"
	"reflect"
	"testing"
	"time"

	"adaptive_coach/models"
)

func rankedItems(n int) []models.FeedItem {
	out := make([]models.FeedItem, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, models.FeedItem{
			ContentItem: models.ContentItem{ID: fmt.Sprintf("item-%03d", i)},
			MatchScore:  100 - i%40,
		})
	}
	return out
}

func pageIDs(items []models.FeedItem) []string {
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	return ids
}

func TestFeedSeed(t *testing.T) {
	day := time.Date(2025, 3, 4, 23, 0, 0, 0, time.UTC)
	if got := FeedSeed("u1", day, 2); got != "u1-2025-03-04-2" {
		t.Errorf("seed = %q", got)
	}
	if got := FeedSeed("", day, 0); got != "anon-2025-03-04-0" {
		t.Errorf("anonymous seed = %q", got)
	}
}

func TestSeededRandomDeterministic(t *testing.T) {
	a, b := seededRandom("same"), seededRandom("same")
	for i := 0; i < 100; i++ {
		x, y := a(), b()
		if x != y {
			t.Fatalf("step %d: %v != %v", i, x, y)
		}
		if x < 0 || x >= 1 {
			t.Fatalf("value %v out of [0,1)", x)
		}
	}
}

func TestSamplePageDeterministic(t *testing.T) {
	ranked := rankedItems(100)
	p1, _, _ := SamplePage(ranked, 10, 0, "u1-2025-03-04-0", nil)
	p2, _, _ := SamplePage(ranked, 10, 0, "u1-2025-03-04-0", nil)
	if !reflect.DeepEqual(pageIDs(p1), pageIDs(p2)) {
		t.Errorf("same seed produced different pages: %v vs %v", pageIDs(p1), pageIDs(p2))
	}

	varied := false
	for cycle := 1; cycle <= 5; cycle++ {
		p, _, _ := SamplePage(ranked, 10, 0, fmt.Sprintf("u1-2025-03-04-%d", cycle), nil)
		if !reflect.DeepEqual(pageIDs(p1), pageIDs(p)) {
			varied = true
			break
		}
	}
	if !varied {
		t.Errorf("changing the cycle never changed the page: %v", pageIDs(p1))
	}
}

func TestSamplePageWindowAndOrder(t *testing.T) {
	ranked := rankedItems(200)
	page, next, total := SamplePage(ranked, 5, 0, "seed", nil)
	// 池 max(60,80)=80，窗口 max(40,60)=60
	if total != 60 {
		t.Errorf("total = %d, want 60", total)
	}
	if next == nil || *next != 5 {
		t.Errorf("next = %v, want 5", next)
	}
	for i := 1; i < len(page); i++ {
		if page[i-1].MatchScore < page[i].MatchScore {
			t.Errorf("page not sorted by score: %v", page)
		}
	}
	pool := make(map[string]bool)
	for _, it := range ranked[:80] {
		pool[it.ID] = true
	}
	for _, it := range page {
		if !pool[it.ID] {
			t.Errorf("%s is outside the candidate pool", it.ID)
		}
	}
}

func TestSamplePageCursorAndExclude(t *testing.T) {
	ranked := rankedItems(12)
	exclude := map[string]bool{"item-000": true, "item-001": true}

	first, next, total := SamplePage(ranked, 5, 0, "seed", exclude)
	if total != 10 {
		t.Fatalf("total = %d, want 10", total)
	}
	if next == nil || *next != 5 {
		t.Fatalf("next = %v, want 5", next)
	}
	second, next, _ := SamplePage(ranked, 5, *next, "seed", exclude)
	if next != nil {
		t.Errorf("last page should have nil next cursor, got %d", *next)
	}

	seen := make(map[string]bool)
	for _, it := range append(first, second...) {
		if exclude[it.ID] {
			t.Errorf("excluded item %s returned", it.ID)
		}
		if seen[it.ID] {
			t.Errorf("item %s returned twice", it.ID)
		}
		seen[it.ID] = true
	}
	if len(seen) != 10 {
		t.Errorf("got %d distinct items, want 10", len(seen))
	}

	empty, next, _ := SamplePage(ranked, 5, 50, "seed", exclude)
	if len(empty) != 0 || next != nil {
		t.Errorf("cursor past end = %v, %v", empty, next)
	}
}

package cache

import (
	"path"
	"strings"
	"testing"

	"adaptive_coach/models"
)

func TestFeedKeyIgnoresExcludeOrder(t *testing.T) {
	a := FeedKey("u1", "2025-03-04", 1, models.LanguageEN, 10, 0, []string{"b", "a"})
	b := FeedKey("u1", "2025-03-04", 1, models.LanguageEN, 10, 0, []string{"a", "b"})
	if a != b {
		t.Errorf("keys differ: %s vs %s", a, b)
	}
	if !strings.HasPrefix(a, "feed:u1:2025-03-04:1:en:10:0:") {
		t.Errorf("unexpected key %s", a)
	}
	if c := FeedKey("u1", "2025-03-04", 2, models.LanguageEN, 10, 0, nil); c == a {
		t.Errorf("cycle must change the key")
	}
}

func TestFeedKeyAnonymous(t *testing.T) {
	if got := FeedKey("", "2025-03-04", 0, models.LanguageZH, 10, 0, nil); got != "feed:anon:2025-03-04:0:zh:10:0:0" {
		t.Errorf("key = %s", got)
	}
}

func TestUserPatternMatchesKeys(t *testing.T) {
	key := FeedKey("u1", "2025-03-04", 0, models.LanguageZH, 10, 0, nil)
	if !strings.HasPrefix(key, strings.TrimSuffix(userPattern("u1"), "*")) {
		t.Errorf("pattern %s does not cover %s", userPattern("u1"), key)
	}
}

func TestUserPatternEscapesGlob(t *testing.T) {
	if got, want := userPattern("a*b"), `feed:a\*b:*`; got != want {
		t.Errorf("pattern = %s, want %s", got, want)
	}
	if got, want := userPattern(`x?[y]\`), `feed:x\?\[y\]\\:*`; got != want {
		t.Errorf("pattern = %s, want %s", got, want)
	}

	own := FeedKey("a*b", "2025-03-04", 0, models.LanguageZH, 10, 0, nil)
	other := FeedKey("axyzb", "2025-03-04", 0, models.LanguageZH, 10, 0, nil)
	// path.Match 的转义规则与 Redis 的 glob 一致
	if ok, err := path.Match(userPattern("a*b"), own); err != nil || !ok {
		t.Errorf("pattern should match own key %s: %v %v", own, ok, err)
	}
	if ok, _ := path.Match(userPattern("a*b"), other); ok {
		t.Errorf("pattern must not match other user's key %s", other)
	}
	if ok, _ := path.Match("feed:a*b:*", other); !ok {
		t.Errorf("unescaped pattern should match %s", other)
	}
}

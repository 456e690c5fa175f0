package utils

import (
	"net/http/httptest"
	"reflect"
	"testing"
	"time"
)

func TestSplitCSV(t *testing.T) {
	if got := SplitCSV(" a, b ,,a,c "); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("SplitCSV = %v", got)
	}
	if got := SplitCSV("  "); len(got) != 0 {
		t.Errorf("blank input = %v", got)
	}
}

func TestTruncateRunes(t *testing.T) {
	if got := TruncateRunes("睡眠与压力管理", 4); got != "睡眠与压…" {
		t.Errorf("truncate = %q", got)
	}
	if got := TruncateRunes(" short ", 10); got != "short" {
		t.Errorf("short text = %q", got)
	}
}

func TestFilterSpecialSymbols(t *testing.T) {
	if got := FilterSpecialSymbols("  今天睡得好吗？😴 Sleep *well*! "); got != "今天睡得好吗？ Sleep well!" {
		t.Errorf("filtered = %q", got)
	}
}

func TestNewPushAuth(t *testing.T) {
	now := time.UnixMilli(1741078800123)
	auth := NewPushAuth("key", now)
	if auth.Timestamp != "1741078800123" {
		t.Errorf("timestamp = %s", auth.Timestamp)
	}
	if auth.Authorization != CalculateMD5("key0123") {
		t.Errorf("authorization = %s", auth.Authorization)
	}
	if len(auth.Authorization) != 32 {
		t.Errorf("md5 length = %d", len(auth.Authorization))
	}
}

func TestQueryInt(t *testing.T) {
	r := httptest.NewRequest("GET", "/feed?limit=50&cursor=-3&cycle=x", nil)
	if got := QueryInt(r, "limit", 10, 5, 20); got != 20 {
		t.Errorf("limit = %d", got)
	}
	if got := QueryInt(r, "cursor", 0, 0, 100); got != 0 {
		t.Errorf("cursor = %d", got)
	}
	if got := QueryInt(r, "cycle", 7, 0, 100); got != 7 {
		t.Errorf("cycle = %d", got)
	}
	if got := QueryInt(r, "missing", 10, 5, 20); got != 10 {
		t.Errorf("missing = %d", got)
	}
}

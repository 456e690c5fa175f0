package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"adaptive_coach/models"
	"adaptive_coach/utils"
)

func TestDueThisHour(t *testing.T) {
	at := func(h, m int) time.Time { return time.Date(2025, 3, 4, h, m, 0, 0, time.UTC) }
	evening := []models.ActivityPattern{{DayOfWeek: int(time.Tuesday), HourOfDay: 20, ActivityScore: 0.8}}
	friday := []models.ActivityPattern{{DayOfWeek: int(time.Friday), HourOfDay: 8, ActivityScore: 0.9}}

	cases := []struct {
		name     string
		patterns []models.ActivityPattern
		now      time.Time
		want     bool
	}{
		{"默认时间9点", nil, at(9, 10), true},
		{"默认时间未到", nil, at(8, 10), false},
		{"默认时间15点", nil, at(15, 59), true},
		{"活跃时段", evening, at(20, 5), true},
		{"活跃时段未到", evening, at(10, 5), false},
		{"其他日期的数据不参与", friday, at(8, 30), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := dueThisHour(tc.patterns, tc.now); got != tc.want {
				t.Errorf("dueThisHour(%v) = %v, want %v", tc.now, got, tc.want)
			}
		})
	}
}

type pushRecorder struct {
	mu       sync.Mutex
	payloads []InquiryPushPayload
	headers  []http.Header
	reject   bool
}

func (r *pushRecorder) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	var p InquiryPushPayload
	if err := json.NewDecoder(req.Body).Decode(&p); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	r.mu.Lock()
	r.payloads = append(r.payloads, p)
	r.headers = append(r.headers, req.Header.Clone())
	reject := r.reject
	r.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if reject {
		w.Write([]byte(`{"errCode":500,"msg":"busy","success":false}`))
		return
	}
	w.Write([]byte(`{"errCode":200,"msg":"ok","success":true}`))
}

func TestInquiryPusherPushDue(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	now := time.Date(2025, 3, 4, 9, 10, 0, 0, time.UTC)

	insert := func(id, userID string, delivery models.DeliveryMethod, created time.Time) {
		t.Helper()
		err := store.InsertInquiry(ctx, &models.InquiryQuestion{
			ID:                id,
			UserID:            userID,
			QuestionText:      "How did you sleep last night?",
			QuestionType:      models.QuestionDiagnostic,
			Priority:          models.PriorityHigh,
			DataGapsAddressed: []string{GapSleepHours},
			DeliveryMethod:    delivery,
			CreatedAt:         created,
		})
		if err != nil {
			t.Fatalf("insert %s: %v", id, err)
		}
	}
	insert("q-old", "u1", models.DeliveryPush, now.Add(-2*time.Hour))
	insert("q-new", "u1", models.DeliveryPush, now.Add(-time.Hour))
	insert("q-app", "u2", models.DeliveryInApp, now.Add(-time.Hour))
	insert("q-stale", "u3", models.DeliveryPush, now.AddDate(0, 0, -8))

	rec := &pushRecorder{}
	srv := httptest.NewServer(rec)
	defer srv.Close()

	pusher := NewInquiryPusher(store, store, PushConfig{URL: srv.URL, APIKey: "key-1", Concurrency: 2})
	pusher.now = func() time.Time { return now }

	success, failed, err := pusher.PushDue(ctx)
	if err != nil {
		t.Fatalf("push: %v", err)
	}
	if success != 1 || failed != 0 {
		t.Fatalf("success=%d failed=%d, want 1/0", success, failed)
	}
	p := rec.payloads[0]
	if p.CID != "u1" || p.Inquiry.ID != "q-old" {
		t.Errorf("pushed %s/%s, want the oldest inquiry of u1", p.CID, p.Inquiry.ID)
	}
	if p.Inquiry.Question != "昨晚睡得怎么样？大概睡了几个小时？" || len(p.Inquiry.Options) != 4 {
		t.Errorf("payload not localized: %+v", p.Inquiry)
	}
	h := rec.headers[0]
	ts := h.Get("timestamp")
	if h.Get("apiKey") != "key-1" || len(ts) < 4 {
		t.Fatalf("missing auth headers: %v", h)
	}
	if want := utils.CalculateMD5("key-1" + ts[len(ts)-4:]); h.Get("Authorization") != want {
		t.Errorf("authorization = %s, want %s", h.Get("Authorization"), want)
	}

	// 已推送的问询不会重复推送
	success, _, err = pusher.PushDue(ctx)
	if err != nil || success != 1 || rec.payloads[1].Inquiry.ID != "q-new" {
		t.Fatalf("second round: success=%d err=%v", success, err)
	}
	success, failed, err = pusher.PushDue(ctx)
	if err != nil || success != 0 || failed != 0 {
		t.Errorf("third round: success=%d failed=%d err=%v", success, failed, err)
	}
}

func TestInquiryPusherRetriesRejected(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	now := time.Date(2025, 3, 4, 15, 30, 0, 0, time.UTC)
	err := store.InsertInquiry(ctx, &models.InquiryQuestion{
		ID:             "q1",
		UserID:         "u1",
		QuestionText:   "Drink some water?",
		QuestionType:   models.QuestionDiagnostic,
		Priority:       models.PriorityLow,
		DeliveryMethod: models.DeliveryPush,
		CreatedAt:      now.Add(-time.Minute),
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	rec := &pushRecorder{reject: true}
	srv := httptest.NewServer(rec)
	defer srv.Close()
	pusher := NewInquiryPusher(store, store, PushConfig{URL: srv.URL, APIKey: "k"})
	pusher.now = func() time.Time { return now }

	success, failed, err := pusher.PushDue(ctx)
	if err != nil || success != 0 || failed != 1 {
		t.Fatalf("rejected push: success=%d failed=%d err=%v", success, failed, err)
	}

	rec.mu.Lock()
	rec.reject = false
	rec.mu.Unlock()
	success, failed, _ = pusher.PushDue(ctx)
	if success != 1 || failed != 0 {
		t.Errorf("retry: success=%d failed=%d", success, failed)
	}
	if got := rec.payloads[1].Inquiry.Options; len(got) != 2 {
		t.Errorf("custom inquiry should carry yes/no options, got %v", got)
	}
}

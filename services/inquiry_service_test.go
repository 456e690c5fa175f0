package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"adaptive_coach/models"
	"adaptive_coach/repository"
)

func newTestInquiryService(t *testing.T, store *repository.Store, clock *testClock, deps InquiryDeps) *InquiryService {
	t.Helper()
	if deps.Inquiries == nil {
		deps.Inquiries = store
	}
	if deps.Calibrations == nil {
		deps.Calibrations = store
	}
	if deps.Activity == nil {
		deps.Activity = store
	}
	if deps.Candidates == nil {
		deps.Candidates = store
	}
	svc := NewInquiryService(testInquiryConfig(), deps)
	svc.now = clock.now
	return svc
}

func TestPendingInquiryLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	clock := &testClock{t: time.Date(2025, 3, 4, 8, 0, 0, 0, time.UTC)}
	svc := newTestInquiryService(t, store, clock, InquiryDeps{})

	first, err := svc.GetPendingInquiry(ctx, "u1", models.LanguageEN)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if !first.HasInquiry || first.Inquiry == nil {
		t.Fatal("new user should get an inquiry")
	}
	q := first.Inquiry
	if q.PrimaryGap() != GapSleepHours || q.Priority != models.PriorityHigh {
		t.Errorf("gap = %s priority = %s, want sleep_hours/high", q.PrimaryGap(), q.Priority)
	}
	if q.QuestionText != "How did you sleep last night? About how many hours?" || len(q.Options) != 4 {
		t.Errorf("unexpected question %q with %d options", q.QuestionText, len(q.Options))
	}

	again, err := svc.GetPendingInquiry(ctx, "u1", models.LanguageZH)
	if err != nil {
		t.Fatalf("pending again: %v", err)
	}
	if again.Inquiry == nil || again.Inquiry.ID != q.ID {
		t.Fatalf("expected the same pending inquiry %s, got %+v", q.ID, again.Inquiry)
	}
	if again.Inquiry.QuestionText != "昨晚睡得怎么样？大概睡了几个小时？" {
		t.Errorf("pending inquiry not localized: %q", again.Inquiry.QuestionText)
	}

	answered, err := svc.RespondToInquiry(ctx, "u1", q.ID, "7_8")
	if err != nil {
		t.Fatalf("respond: %v", err)
	}
	if answered.UserResponse == nil || *answered.UserResponse != "7_8" || answered.RespondedAt == nil {
		t.Errorf("response not recorded: %+v", answered)
	}
	rec, err := store.LatestCalibration(ctx, "u1")
	if err != nil || rec == nil {
		t.Fatalf("calibration: %v %v", rec, err)
	}
	if rec.Date != "2025-03-04" || rec.SleepHours == nil || *rec.SleepHours != 7.5 {
		t.Errorf("calibration = %+v, want sleep_hours 7.5 on 2025-03-04", rec)
	}

	// 冷却期内不再提问
	cooling, err := svc.GetPendingInquiry(ctx, "u1", models.LanguageEN)
	if err != nil {
		t.Fatalf("pending during cooldown: %v", err)
	}
	if cooling.HasInquiry {
		t.Errorf("expected no inquiry during cooldown, got %+v", cooling.Inquiry)
	}

	clock.advance(21 * time.Minute)
	next, err := svc.GetPendingInquiry(ctx, "u1", models.LanguageEN)
	if err != nil {
		t.Fatalf("pending after cooldown: %v", err)
	}
	if !next.HasInquiry || next.Inquiry.PrimaryGap() != GapStressLevel {
		t.Fatalf("expected stress_level inquiry, got %+v", next.Inquiry)
	}
	if _, err := svc.RespondToInquiry(ctx, "u1", next.Inquiry.ID, "high"); err != nil {
		t.Fatalf("respond stress: %v", err)
	}
	rec, err = store.LatestCalibration(ctx, "u1")
	if err != nil || rec == nil {
		t.Fatalf("calibration: %v %v", rec, err)
	}
	if rec.StressLevel == nil || *rec.StressLevel != 9 {
		t.Errorf("stress_level = %v, want 9", rec.StressLevel)
	}
	if rec.SleepHours == nil || *rec.SleepHours != 7.5 {
		t.Errorf("sleep_hours changed to %v", rec.SleepHours)
	}

	patterns, err := store.ActivityPatterns(ctx, "u1")
	if err != nil {
		t.Fatalf("patterns: %v", err)
	}
	if len(patterns) != 1 || patterns[0].DayOfWeek != int(time.Tuesday) || patterns[0].HourOfDay != 8 {
		t.Fatalf("patterns = %+v, want one row for Tuesday 8h", patterns)
	}
	if got := patterns[0].ActivityScore; got < 0.789 || got > 0.791 {
		t.Errorf("activity_score = %v, want 0.79", got)
	}
}

func TestRespondLastAnswerWins(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	clock := &testClock{t: time.Date(2025, 3, 4, 8, 0, 0, 0, time.UTC)}
	svc := newTestInquiryService(t, store, clock, InquiryDeps{})

	p, err := svc.GetPendingInquiry(ctx, "u1", models.LanguageEN)
	if err != nil || !p.HasInquiry {
		t.Fatalf("pending: %+v %v", p, err)
	}
	if _, err := svc.RespondToInquiry(ctx, "u1", p.Inquiry.ID, "7_8"); err != nil {
		t.Fatalf("first answer: %v", err)
	}
	clock.advance(time.Minute)
	q, err := svc.RespondToInquiry(ctx, "u1", p.Inquiry.ID, "under_6")
	if err != nil {
		t.Fatalf("second answer: %v", err)
	}
	if *q.UserResponse != "under_6" {
		t.Errorf("response = %s, want under_6", *q.UserResponse)
	}
	rec, _ := store.LatestCalibration(ctx, "u1")
	if rec == nil || rec.SleepHours == nil || *rec.SleepHours != 5 {
		t.Errorf("calibration should follow the last answer, got %+v", rec)
	}
}

func TestRespondValidation(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	clock := &testClock{t: time.Date(2025, 3, 4, 8, 0, 0, 0, time.UTC)}
	svc := newTestInquiryService(t, store, clock, InquiryDeps{})

	p, err := svc.GetPendingInquiry(ctx, "u1", models.LanguageEN)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}

	cases := []struct {
		name     string
		user, id string
		response string
		want     error
	}{
		{"anonymous", "", p.Inquiry.ID, "7_8", ErrUnauthenticated},
		{"blank response", "u1", p.Inquiry.ID, "  ", ErrMissingFields},
		{"blank id", "u1", "", "7_8", ErrMissingFields},
		{"unknown id", "u1", "missing", "7_8", ErrInquiryNotFound},
		{"other user", "u2", p.Inquiry.ID, "7_8", ErrInquiryNotFound},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := svc.RespondToInquiry(ctx, c.user, c.id, c.response)
			if !errors.Is(err, c.want) {
				t.Errorf("err = %v, want %v", err, c.want)
			}
		})
	}

	if _, err := svc.GetPendingInquiry(ctx, "", models.LanguageEN); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("anonymous pending err = %v", err)
	}
	if _, err := svc.GetTiming(ctx, ""); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("anonymous timing err = %v", err)
	}
}

// failingSecondaryStore 校准与活跃度写入总是失败
type failingSecondaryStore struct {
	*repository.Store
}

func (failingSecondaryStore) UpsertCalibration(context.Context, string, string, models.CalibrationValue, time.Time) error {
	return errors.New("calibration table locked")
}

func (failingSecondaryStore) TouchActivity(context.Context, string, int, int, float64, float64, time.Time) error {
	return errors.New("activity table locked")
}

func TestRespondSurvivesSecondaryWriteFailures(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	clock := &testClock{t: time.Date(2025, 3, 4, 8, 0, 0, 0, time.UTC)}
	failing := failingSecondaryStore{store}
	refresher := &countingRefresher{}
	bg := NewBackground(time.Second)
	svc := newTestInquiryService(t, store, clock, InquiryDeps{
		Calibrations: failing,
		Activity:     failing,
		Refresher:    refresher,
		Background:   bg,
	})

	p, err := svc.GetPendingInquiry(ctx, "u1", models.LanguageEN)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	q, err := svc.RespondToInquiry(ctx, "u1", p.Inquiry.ID, "7_8")
	if err != nil {
		t.Fatalf("respond should succeed when only secondary writes fail: %v", err)
	}
	if q.UserResponse == nil || *q.UserResponse != "7_8" {
		t.Errorf("response not recorded: %+v", q)
	}

	bg.Wait()
	if refresher.rebuilds.Load() != 1 || refresher.syncs.Load() != 1 {
		t.Errorf("refresh calls = %d/%d, want 1/1", refresher.rebuilds.Load(), refresher.syncs.Load())
	}
}

// failingInsertStore 问询写入总是失败
type failingInsertStore struct {
	*repository.Store
}

func (failingInsertStore) InsertInquiry(context.Context, *models.InquiryQuestion) error {
	return errors.New("disk full")
}

func TestPendingInquiryInsertFailure(t *testing.T) {
	store := newTestStore(t)
	clock := &testClock{t: time.Date(2025, 3, 4, 8, 0, 0, 0, time.UTC)}
	svc := newTestInquiryService(t, store, clock, InquiryDeps{Inquiries: failingInsertStore{store}})

	_, err := svc.GetPendingInquiry(context.Background(), "u1", models.LanguageEN)
	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("err = %v, want ErrPersistence", err)
	}
}

func TestPendingInquiryAttachesCandidate(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	clock := &testClock{t: time.Date(2025, 3, 4, 8, 0, 0, 0, time.UTC)}
	svc := newTestInquiryService(t, store, clock, InquiryDeps{})

	err := store.UpsertCandidates(ctx, []models.CuratedContent{
		{UserID: "u1", ContentID: "pubmed_1", Title: "Sleep and cortisol", URL: "https://pubmed.ncbi.nlm.nih.gov/1/",
			Source: models.SourcePubMed, SourceLabel: "PubMed", Language: models.LanguageEN, RelevanceScore: 0.9},
		{UserID: "u1", ContentID: "pubmed_2", Title: "Low score", URL: "https://pubmed.ncbi.nlm.nih.gov/2/",
			Source: models.SourcePubMed, SourceLabel: "PubMed", Language: models.LanguageEN, RelevanceScore: 0.4},
	}, clock.now())
	if err != nil {
		t.Fatalf("upsert candidates: %v", err)
	}

	p, err := svc.GetPendingInquiry(ctx, "u1", models.LanguageEN)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	fc := p.Inquiry.FeedContent
	if fc == nil || fc.ContentID != "pubmed_1" || !fc.IsPushed {
		t.Fatalf("feed content = %+v, want pubmed_1 marked pushed", fc)
	}
	left, err := store.TopUnpushedCandidate(ctx, "u1", 0.6)
	if err != nil {
		t.Fatalf("top candidate: %v", err)
	}
	if left != nil {
		t.Errorf("candidate above threshold should be consumed, got %+v", left)
	}
}

func TestCreateInquiryKeepsSinglePending(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	clock := &testClock{t: time.Date(2025, 3, 4, 8, 0, 0, 0, time.UTC)}
	svc := newTestInquiryService(t, store, clock, InquiryDeps{})

	if _, err := svc.CreateInquiry(ctx, "u1", models.InquiryInput{QuestionText: "hi", QuestionType: "chat", Priority: models.PriorityLow}); !errors.Is(err, ErrMissingFields) {
		t.Errorf("invalid type err = %v", err)
	}
	if _, err := svc.CreateInquiry(ctx, "", models.InquiryInput{}); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("anonymous err = %v", err)
	}

	in := models.InquiryInput{
		QuestionText:      "Did you take a walk after lunch?",
		QuestionType:      models.QuestionDiagnostic,
		Priority:          models.PriorityMedium,
		DataGapsAddressed: []string{GapExerciseDuration},
	}
	created, err := svc.CreateInquiry(ctx, "u1", in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.DeliveryMethod != models.DeliveryInApp || !created.Pending() {
		t.Errorf("created = %+v", created)
	}

	in.QuestionText = "Another question"
	second, err := svc.CreateInquiry(ctx, "u1", in)
	if err != nil {
		t.Fatalf("second create: %v", err)
	}
	if second.ID != created.ID {
		t.Errorf("second create returned %s, want existing %s", second.ID, created.ID)
	}
}

func TestGapAnalyzer(t *testing.T) {
	now := time.Date(2025, 3, 4, 12, 0, 0, 0, time.UTC)
	cfg := testInquiryConfig()
	cfg.StaleHours = map[string]int{GapWaterIntake: 0}
	a := NewGapAnalyzer(cfg)

	snapshot := map[string]Signal{
		GapSleepHours:       {Value: "7.5", UpdatedAt: now.Add(-2 * time.Hour)},
		GapStressLevel:      {Value: "6", UpdatedAt: now.Add(-30 * time.Hour)},
		GapWaterIntake:      {Value: "low", UpdatedAt: now.Add(-90 * time.Hour)},
		GapMealQuality:      {Value: "healthy", UpdatedAt: now.Add(-time.Hour)},
		GapExerciseDuration: {Value: "30", UpdatedAt: now.Add(-time.Hour)},
	}
	gaps := a.Analyze(snapshot, map[string]bool{GapMood: true}, now)

	fields := make([]string, 0, len(gaps))
	for _, g := range gaps {
		fields = append(fields, g.Field)
	}
	if len(fields) != 1 || fields[0] != GapStressLevel {
		t.Fatalf("gaps = %v, want only stale stress_level", fields)
	}
	if gaps[0].LastUpdated == nil {
		t.Error("stale gap should carry last updated time")
	}

	all := a.Analyze(nil, nil, now)
	want := []string{GapSleepHours, GapStressLevel, GapExerciseDuration, GapMealQuality, GapMood, GapWaterIntake}
	if len(all) != len(want) {
		t.Fatalf("got %d gaps, want %d", len(all), len(want))
	}
	for i, g := range all {
		if g.Field != want[i] {
			t.Errorf("gap %d = %s, want %s", i, g.Field, want[i])
		}
	}

	answered := a.Analyze(nil, map[string]bool{GapSleepHours: true}, now)
	if answered[0].Field != GapStressLevel {
		t.Errorf("field answered today should be skipped, first gap = %s", answered[0].Field)
	}
}

func TestPendingInquiryUsesPerFieldFreshness(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	sleepAt := time.Date(2025, 3, 4, 20, 0, 0, 0, time.UTC)
	stressAt := time.Date(2025, 3, 5, 0, 30, 0, 0, time.UTC)
	sleep, stress := 7.5, 6.0
	if err := store.UpsertCalibration(ctx, "u1", "2025-03-04", models.CalibrationValue{Column: "sleep_hours", Number: &sleep}, sleepAt); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := store.UpsertCalibration(ctx, "u1", "2025-03-05", models.CalibrationValue{Column: "stress_level", Number: &stress}, stressAt); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	clock := &testClock{t: time.Date(2025, 3, 5, 0, 51, 0, 0, time.UTC)}
	svc := newTestInquiryService(t, store, clock, InquiryDeps{})
	got, err := svc.GetPendingInquiry(ctx, "u1", models.LanguageEN)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if !got.HasInquiry || got.Inquiry == nil {
		t.Fatal("expected an inquiry")
	}
	if gap := got.Inquiry.PrimaryGap(); gap != GapExerciseDuration {
		t.Errorf("gap = %s, want exercise_duration since sleep from last night is still fresh", gap)
	}
}

func TestSnapshotFromSignals(t *testing.T) {
	at := time.Date(2025, 3, 4, 20, 0, 0, 0, time.UTC)
	mood, meal, empty := 7.0, "healthy", ""
	snap := SnapshotFromSignals(map[string]models.FieldSignal{
		"mood_score":   {Number: &mood, UpdatedAt: at},
		"meal_quality": {Text: &meal, UpdatedAt: at.Add(time.Hour)},
		"water_intake": {Text: &empty, UpdatedAt: at},
	})
	if got := snap[GapMood]; got.Value != "7" || !got.UpdatedAt.Equal(at) {
		t.Errorf("mood = %+v", got)
	}
	if got := snap[GapMealQuality]; got.Value != "healthy" || !got.UpdatedAt.Equal(at.Add(time.Hour)) {
		t.Errorf("meal_quality = %+v", got)
	}
	if _, ok := snap[GapWaterIntake]; ok {
		t.Error("empty text should count as missing")
	}
	if len(SnapshotFromSignals(nil)) != 0 {
		t.Error("nil signals should give an empty snapshot")
	}
}

func TestCalibrationFor(t *testing.T) {
	cases := []struct {
		field, response string
		column          string
		number          float64
	}{
		{GapSleepHours, "7_8", "sleep_hours", 7.5},
		{GapSleepHours, "under_6", "sleep_hours", 5},
		{GapStressLevel, "high", "stress_level", 9},
		{GapExerciseDuration, "moderate", "exercise_duration", 30},
		{GapMood, "bad", "mood_score", 3},
	}
	for _, c := range cases {
		v, ok := CalibrationFor(c.field, c.response)
		if !ok || v.Column != c.column || v.Number == nil || *v.Number != c.number {
			t.Errorf("CalibrationFor(%s, %s) = %+v, %v", c.field, c.response, v, ok)
		}
	}

	v, ok := CalibrationFor(GapMealQuality, "healthy")
	if !ok || v.Column != "meal_quality" || v.Text == nil || *v.Text != "healthy" {
		t.Errorf("meal quality = %+v, %v", v, ok)
	}
	if _, ok := CalibrationFor(GapSleepHours, "a lot"); ok {
		t.Error("unmapped option should be ignored")
	}
	if _, ok := CalibrationFor("unknown", "yes"); ok {
		t.Error("unknown field should be ignored")
	}
}

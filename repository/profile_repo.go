package repository

import (
	"context"
	"database/sql"
	"time"

	"adaptive_coach/models"
	"adaptive_coach/utils"
)

// =====================
// 用户画像相关
// =====================

// GetProfile 读取 profiles 表中的原始画像
func (s *Store) GetProfile(ctx context.Context, userID string) (*models.ProfileRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, inferred_scale_scores, metabolic_profile, primary_focus_topics,
			sleep_hours, stress_level, energy_level, updated_at
		FROM profiles WHERE id = ?`, userID)

	var (
		rec                      models.ProfileRecord
		scores, metabolic, focus sql.NullString
		sleep, stress, energy    sql.NullFloat64
		updated                  sql.NullTime
	)
	if err := row.Scan(&rec.UserID, &scores, &metabolic, &focus, &sleep, &stress, &energy, &updated); err != nil {
		if utils.IsSQLNoRowsError(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	rec.InferredScaleScores = scores.String
	rec.MetabolicProfile = metabolic.String
	rec.PrimaryFocusTopics = focus.String
	rec.Signals = models.Signals{
		SleepHours:  floatPtr(sleep),
		StressLevel: floatPtr(stress),
		EnergyLevel: floatPtr(energy),
	}
	rec.UpdatedAt = timePtr(updated)
	return &rec, nil
}

// UpsertProfile 写入 profiles 表，问卷与评估模块使用
func (s *Store) UpsertProfile(ctx context.Context, rec *models.ProfileRecord, now time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (id, inferred_scale_scores, metabolic_profile, primary_focus_topics,
			sleep_hours, stress_level, energy_level, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`+
		s.upsert([]string{"id"},
			"inferred_scale_scores = new(inferred_scale_scores)",
			"metabolic_profile = new(metabolic_profile)",
			"primary_focus_topics = new(primary_focus_topics)",
			"sleep_hours = new(sleep_hours)",
			"stress_level = new(stress_level)",
			"energy_level = new(energy_level)",
			"updated_at = new(updated_at)"),
		rec.UserID, rec.InferredScaleScores, rec.MetabolicProfile, rec.PrimaryFocusTopics,
		nullFloat(rec.Signals.SleepHours), nullFloat(rec.Signals.StressLevel), nullFloat(rec.Signals.EnergyLevel),
		utc(now))
	return err
}

// SyncProfileSignals 将最新信号同步到 profiles，只覆盖非空字段
func (s *Store) SyncProfileSignals(ctx context.Context, userID string, sig models.Signals, now time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE profiles SET
			sleep_hours = COALESCE(?, sleep_hours),
			stress_level = COALESCE(?, stress_level),
			energy_level = COALESCE(?, energy_level),
			updated_at = ?
		WHERE id = ?`,
		nullFloat(sig.SleepHours), nullFloat(sig.StressLevel), nullFloat(sig.EnergyLevel), utc(now), userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpsertDerivedProfile 保存重建后的画像快照
func (s *Store) UpsertDerivedProfile(ctx context.Context, p *models.DerivedProfile) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_profiles (user_id, tags, keywords, focus_topics, updated_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`+
		s.upsert([]string{"user_id"},
			"tags = new(tags)",
			"keywords = new(keywords)",
			"focus_topics = new(focus_topics)",
			"updated_at = new(updated_at)"),
		p.UserID, marshalStrings(p.Tags), marshalStrings(p.Keywords), marshalStrings(p.FocusTopics),
		utc(p.UpdatedAt), utc(p.UpdatedAt))
	return err
}

// GetDerivedProfile 读取画像快照
func (s *Store) GetDerivedProfile(ctx context.Context, userID string) (*models.DerivedProfile, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT user_id, tags, keywords, focus_topics, updated_at FROM user_profiles WHERE user_id = ?`, userID)
	var (
		p                     models.DerivedProfile
		tags, keywords, focus string
	)
	if err := row.Scan(&p.UserID, &tags, &keywords, &focus, &p.UpdatedAt); err != nil {
		if utils.IsSQLNoRowsError(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	p.Tags = unmarshalStrings(tags)
	p.Keywords = unmarshalStrings(keywords)
	p.FocusTopics = unmarshalStrings(focus)
	return &p, nil
}

// =====================
// 候选用户列表
// =====================

// ListActiveUserIDs 返回 since 之后有问询或校准记录的用户
func (s *Store) ListActiveUserIDs(ctx context.Context, since time.Time) ([]string, error) {
	ids := make([]string, 0)
	seen := make(map[string]bool)

	queries := []string{
		`SELECT DISTINCT user_id FROM inquiry_history WHERE created_at >= ?`,
		`SELECT DISTINCT user_id FROM daily_calibrations WHERE updated_at >= ?`,
	}
	for _, q := range queries {
		found, err := s.queryStrings(ctx, q, utc(since))
		if err != nil {
			return nil, err
		}
		for _, id := range found {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	return ids, nil
}

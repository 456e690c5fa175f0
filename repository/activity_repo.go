package repository

import (
	"context"
	"time"

	"adaptive_coach/models"
)

// TouchActivity 记录用户在 (星期几, 小时) 的一次互动。
// 首次写入 initial，之后按 score += alpha*(1-score) 向 1 收敛
func (s *Store) TouchActivity(ctx context.Context, userID string, dayOfWeek, hour int, initial, alpha float64, now time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_activity_patterns (user_id, day_of_week, hour_of_day, activity_score, updated_at)
		VALUES (?, ?, ?, ?, ?)`+
		s.upsert([]string{"user_id", "day_of_week", "hour_of_day"},
			"activity_score = activity_score + ? * (1 - activity_score)",
			"updated_at = new(updated_at)"),
		userID, dayOfWeek, hour, initial, utc(now), alpha)
	return err
}

// ActivityPatterns 用户全部活跃度记录
func (s *Store) ActivityPatterns(ctx context.Context, userID string) ([]models.ActivityPattern, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, day_of_week, hour_of_day, activity_score, updated_at
		FROM user_activity_patterns WHERE user_id = ?
		ORDER BY day_of_week, hour_of_day`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]models.ActivityPattern, 0)
	for rows.Next() {
		var p models.ActivityPattern
		if err := rows.Scan(&p.UserID, &p.DayOfWeek, &p.HourOfDay, &p.ActivityScore, &p.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

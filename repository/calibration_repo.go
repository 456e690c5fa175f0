package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"adaptive_coach/models"
	"adaptive_coach/utils"
)

// 允许写入的校准列
var calibrationColumns = map[string]bool{
	"sleep_hours":       true,
	"stress_level":      true,
	"exercise_duration": true,
	"mood_score":        true,
	"meal_quality":      true,
	"water_intake":      true,
}

// UpsertCalibration 写入当天校准记录的一列，同一天多次写入以最后一次为准
func (s *Store) UpsertCalibration(ctx context.Context, userID, date string, v models.CalibrationValue, now time.Time) error {
	if !calibrationColumns[v.Column] {
		return fmt.Errorf("unknown calibration column %q", v.Column)
	}
	var value any
	switch {
	case v.Number != nil:
		value = *v.Number
	case v.Text != nil:
		value = *v.Text
	default:
		return fmt.Errorf("empty calibration value for %s", v.Column)
	}

	// 每列单独记录写入时间，用于判断该字段是否过期
	col, colAt := v.Column, v.Column+"_at"
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO daily_calibrations (user_id, date, `+col+`, `+colAt+`, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`+
		s.upsert([]string{"user_id", "date"},
			col+" = new("+col+")",
			colAt+" = new("+colAt+")",
			"updated_at = new(updated_at)"),
		userID, date, value, utc(now), utc(now), utc(now))
	return err
}

// LatestSignals sinceDate（含）之后每一列最近一次非空的值，按列名返回。
// 旧数据没有列写入时间时使用所在行的 updated_at
func (s *Store) LatestSignals(ctx context.Context, userID, sinceDate string) (map[string]models.FieldSignal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT sleep_hours, stress_level, exercise_duration, mood_score, meal_quality, water_intake,
			sleep_hours_at, stress_level_at, exercise_duration_at, mood_score_at, meal_quality_at, water_intake_at,
			updated_at
		FROM daily_calibrations WHERE user_id = ? AND date >= ?
		ORDER BY date DESC`, userID, sinceDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]models.FieldSignal)
	for rows.Next() {
		var (
			sleep, stress, exercise, mood                          sql.NullFloat64
			meal, water                                            sql.NullString
			sleepAt, stressAt, exerciseAt, moodAt, mealAt, waterAt sql.NullTime
			updatedAt                                              time.Time
		)
		if err := rows.Scan(&sleep, &stress, &exercise, &mood, &meal, &water,
			&sleepAt, &stressAt, &exerciseAt, &moodAt, &mealAt, &waterAt, &updatedAt); err != nil {
			return nil, err
		}
		at := func(t sql.NullTime) time.Time {
			if t.Valid {
				return t.Time.UTC()
			}
			return updatedAt.UTC()
		}
		num := func(col string, v sql.NullFloat64, t sql.NullTime) {
			if _, seen := out[col]; !seen && v.Valid {
				out[col] = models.FieldSignal{Number: floatPtr(v), UpdatedAt: at(t)}
			}
		}
		text := func(col string, v sql.NullString, t sql.NullTime) {
			if _, seen := out[col]; !seen && v.Valid && v.String != "" {
				out[col] = models.FieldSignal{Text: stringPtr(v), UpdatedAt: at(t)}
			}
		}
		num("sleep_hours", sleep, sleepAt)
		num("stress_level", stress, stressAt)
		num("exercise_duration", exercise, exerciseAt)
		num("mood_score", mood, moodAt)
		text("meal_quality", meal, mealAt)
		text("water_intake", water, waterAt)
	}
	return out, rows.Err()
}

// LatestCalibration 最近一天的校准记录，不存在时返回 nil
func (s *Store) LatestCalibration(ctx context.Context, userID string) (*models.CalibrationRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT user_id, date, sleep_hours, stress_level, exercise_duration, mood_score,
			meal_quality, water_intake, created_at, updated_at
		FROM daily_calibrations WHERE user_id = ?
		ORDER BY date DESC LIMIT 1`, userID)

	var (
		rec                           models.CalibrationRecord
		sleep, stress, exercise, mood sql.NullFloat64
		meal, water                   sql.NullString
	)
	err := row.Scan(&rec.UserID, &rec.Date, &sleep, &stress, &exercise, &mood, &meal, &water,
		&rec.CreatedAt, &rec.UpdatedAt)
	if utils.IsSQLNoRowsError(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	rec.SleepHours = floatPtr(sleep)
	rec.StressLevel = floatPtr(stress)
	rec.ExerciseDuration = floatPtr(exercise)
	rec.MoodScore = floatPtr(mood)
	rec.MealQuality = stringPtr(meal)
	rec.WaterIntake = stringPtr(water)
	rec.CreatedAt = rec.CreatedAt.UTC()
	rec.UpdatedAt = rec.UpdatedAt.UTC()
	return &rec, nil
}

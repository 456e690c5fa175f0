package repository

import (
	"context"
	"database/sql"
	"time"

	"adaptive_coach/models"
	"adaptive_coach/utils"
)

// UpsertCandidates 写入候选内容队列。已存在的内容只刷新内容和相关度，不改动推送状态
func (s *Store) UpsertCandidates(ctx context.Context, items []models.CuratedContent, now time.Time) error {
	if len(items) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO curated_feed_queue (user_id, content_id, title, summary, url, source, source_label,
			language, relevance_score, is_pushed, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?)`+
		s.upsert([]string{"user_id", "content_id"},
			"title = new(title)",
			"summary = new(summary)",
			"url = new(url)",
			"relevance_score = new(relevance_score)",
			"updated_at = new(updated_at)"))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, it := range items {
		if _, err := stmt.ExecContext(ctx, it.UserID, it.ContentID, it.Title, it.Summary, it.URL,
			string(it.Source), it.SourceLabel, string(it.Language), it.RelevanceScore, utc(now), utc(now)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// TopUnpushedCandidate 相关度最高且未推送的候选内容，不存在时返回 nil
func (s *Store) TopUnpushedCandidate(ctx context.Context, userID string, minScore float64) (*models.CuratedContent, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT user_id, content_id, title, summary, url, source, source_label, language,
			relevance_score, is_pushed, pushed_at, created_at
		FROM curated_feed_queue
		WHERE user_id = ? AND is_pushed = 0 AND relevance_score >= ?
		ORDER BY relevance_score DESC, created_at DESC LIMIT 1`, userID, minScore)

	var (
		c      models.CuratedContent
		pushed sql.NullTime
	)
	err := row.Scan(&c.UserID, &c.ContentID, &c.Title, &c.Summary, &c.URL, &c.Source, &c.SourceLabel,
		&c.Language, &c.RelevanceScore, &c.IsPushed, &pushed, &c.CreatedAt)
	if utils.IsSQLNoRowsError(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	c.PushedAt = timePtr(pushed)
	c.CreatedAt = c.CreatedAt.UTC()
	return &c, nil
}

// MarkCandidatePushed 标记候选内容已推送
func (s *Store) MarkCandidatePushed(ctx context.Context, userID, contentID string, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE curated_feed_queue SET is_pushed = 1, pushed_at = ?, updated_at = ?
		WHERE user_id = ? AND content_id = ? AND is_pushed = 0`,
		utc(at), utc(at), userID, contentID)
	return err
}

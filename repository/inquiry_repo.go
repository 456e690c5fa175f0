package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"adaptive_coach/models"
	"adaptive_coach/utils"
)

const inquiryColumns = `id, user_id, question_text, question_type, priority, data_gaps_addressed,
	user_response, responded_at, delivery_method, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInquiry(row rowScanner) (*models.InquiryQuestion, error) {
	var (
		q        models.InquiryQuestion
		gaps     string
		response sql.NullString
		answered sql.NullTime
	)
	if err := row.Scan(&q.ID, &q.UserID, &q.QuestionText, &q.QuestionType, &q.Priority, &gaps,
		&response, &answered, &q.DeliveryMethod, &q.CreatedAt); err != nil {
		return nil, err
	}
	q.DataGapsAddressed = unmarshalStrings(gaps)
	q.UserResponse = stringPtr(response)
	q.RespondedAt = timePtr(answered)
	q.CreatedAt = q.CreatedAt.UTC()
	return &q, nil
}

func (s *Store) queryInquiries(ctx context.Context, query string, args ...any) ([]models.InquiryQuestion, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]models.InquiryQuestion, 0)
	for rows.Next() {
		q, err := scanInquiry(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *q)
	}
	return list, rows.Err()
}

// InsertInquiry 新增问询记录
func (s *Store) InsertInquiry(ctx context.Context, q *models.InquiryQuestion) error {
	gaps, err := json.Marshal(q.DataGapsAddressed)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO inquiry_history (`+inquiryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		q.ID, q.UserID, q.QuestionText, string(q.QuestionType), string(q.Priority), string(gaps),
		nullString(q.UserResponse), nullTime(q.RespondedAt), string(q.DeliveryMethod), utc(q.CreatedAt))
	return err
}

// GetInquiry 按 id 读取用户的问询
func (s *Store) GetInquiry(ctx context.Context, userID, id string) (*models.InquiryQuestion, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+inquiryColumns+` FROM inquiry_history WHERE id = ? AND user_id = ?`, id, userID)
	q, err := scanInquiry(row)
	if utils.IsSQLNoRowsError(err) {
		return nil, ErrNotFound
	}
	return q, err
}

// LatestPendingInquiry 最近一条未回答的问询，不存在时返回 nil
func (s *Store) LatestPendingInquiry(ctx context.Context, userID string) (*models.InquiryQuestion, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+inquiryColumns+` FROM inquiry_history
		WHERE user_id = ? AND user_response IS NULL
		ORDER BY created_at DESC LIMIT 1`, userID)
	q, err := scanInquiry(row)
	if utils.IsSQLNoRowsError(err) {
		return nil, nil
	}
	return q, err
}

// LatestResponseAt 最近一次回答的时间，没有回答时返回 nil
func (s *Store) LatestResponseAt(ctx context.Context, userID string) (*time.Time, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT responded_at FROM inquiry_history
		WHERE user_id = ? AND responded_at IS NOT NULL
		ORDER BY responded_at DESC LIMIT 1`, userID)
	var at sql.NullTime
	if err := row.Scan(&at); err != nil {
		if utils.IsSQLNoRowsError(err) {
			return nil, nil
		}
		return nil, err
	}
	return timePtr(at), nil
}

// AnsweredGapsSince since 之后创建且已回答的问询覆盖的字段
func (s *Store) AnsweredGapsSince(ctx context.Context, userID string, since time.Time) ([]string, error) {
	raw, err := s.queryStrings(ctx, `
		SELECT data_gaps_addressed FROM inquiry_history
		WHERE user_id = ? AND user_response IS NOT NULL AND created_at >= ?`, userID, utc(since))
	if err != nil {
		return nil, err
	}
	fields := make([]string, 0)
	for _, r := range raw {
		fields = append(fields, unmarshalStrings(r)...)
	}
	return fields, nil
}

// MarkInquiryResponded 原地写入回答，同一问询多次回答以最后一次为准
func (s *Store) MarkInquiryResponded(ctx context.Context, userID, id, response string, at time.Time) (*models.InquiryQuestion, error) {
	_, err := s.db.ExecContext(ctx, `
		UPDATE inquiry_history SET user_response = ?, responded_at = ?
		WHERE id = ? AND user_id = ?`,
		response, utc(at), id, userID)
	if err != nil {
		return nil, err
	}
	// 不存在或不属于该用户时返回 ErrNotFound
	return s.GetInquiry(ctx, userID, id)
}

// RecentInquiries since 之后的问询，按创建时间倒序
func (s *Store) RecentInquiries(ctx context.Context, userID string, since time.Time, limit int) ([]models.InquiryQuestion, error) {
	return s.queryInquiries(ctx, `
		SELECT `+inquiryColumns+` FROM inquiry_history
		WHERE user_id = ? AND created_at >= ?
		ORDER BY created_at DESC LIMIT ?`, userID, utc(since), limit)
}

// PendingByDelivery 指定投递方式下所有未回答的问询
func (s *Store) PendingByDelivery(ctx context.Context, method models.DeliveryMethod, since time.Time) ([]models.InquiryQuestion, error) {
	return s.queryInquiries(ctx, `
		SELECT `+inquiryColumns+` FROM inquiry_history
		WHERE delivery_method = ? AND user_response IS NULL AND created_at >= ?
		ORDER BY created_at ASC`, string(method), utc(since))
}

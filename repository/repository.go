package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"adaptive_coach/db"
)

// ErrNotFound 记录不存在
var ErrNotFound = errors.New("record not found")

// Store 基于 database/sql 的存储，兼容 MySQL 与 SQLite
type Store struct {
	db      *sql.DB
	dialect db.Dialect
}

// New 创建存储
func New(conn *sql.DB, dialect db.Dialect) *Store {
	return &Store{db: conn, dialect: dialect}
}

// =====================
// 通用工具函数
// =====================

// upsert 拼接方言相关的冲突更新子句，updates 为 "col = expr" 片段，
// 其中 new(col) 表示本次写入的值
func (s *Store) upsert(conflict []string, updates ...string) string {
	parts := make([]string, 0, len(updates))
	for _, u := range updates {
		parts = append(parts, s.expandNew(u))
	}
	if s.dialect == db.SQLite {
		return " ON CONFLICT(" + strings.Join(conflict, ", ") + ") DO UPDATE SET " + strings.Join(parts, ", ")
	}
	return " ON DUPLICATE KEY UPDATE " + strings.Join(parts, ", ")
}

func (s *Store) expandNew(expr string) string {
	for {
		i := strings.Index(expr, "new(")
		if i < 0 {
			return expr
		}
		j := strings.Index(expr[i:], ")")
		col := expr[i+4 : i+j]
		repl := "VALUES(" + col + ")"
		if s.dialect == db.SQLite {
			repl = "excluded." + col
		}
		expr = expr[:i] + repl + expr[i+j+1:]
	}
}

// queryStrings 执行查询并返回字符串结果列表
func (s *Store) queryStrings(ctx context.Context, query string, args ...interface{}) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]string, 0)
	for rows.Next() {
		var val sql.NullString
		if err := rows.Scan(&val); err != nil {
			return nil, err
		}
		if v := strings.TrimSpace(val.String); val.Valid && v != "" {
			results = append(results, v)
		}
	}
	return results, rows.Err()
}

func utc(t time.Time) time.Time {
	return t.UTC()
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

func nullTime(v *time.Time) sql.NullTime {
	if v == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: v.UTC(), Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func stringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func timePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time.UTC()
	return &t
}

func marshalStrings(v []string) string {
	if v == nil {
		v = []string{}
	}
	b, _ := json.Marshal(v)
	return string(b)
}

func unmarshalStrings(raw string) []string {
	var arr []string
	if raw == "" {
		return []string{}
	}
	if err := json.Unmarshal([]byte(raw), &arr); err != nil || arr == nil {
		return []string{}
	}
	return arr
}

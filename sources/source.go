// Package sources 从外部内容源拉取原始记录
package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"adaptive_coach/logger"
	"adaptive_coach/models"
)

// Query 一次拉取的检索条件
type Query struct {
	Keywords []string
	Tags     []string
	Language models.Language
}

// Source 内容源
type Source interface {
	Name() string
	Fetch(ctx context.Context, q Query) ([]models.RawRecord, error)
}

// StatusError 上游返回非 2xx
type StatusError struct {
	Source string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d", e.Source, e.Status)
}

const maxRetries = 2

// retryBackoff 限流后的首次等待时间，之后翻倍
var retryBackoff = time.Second

// doWithRetry 发送请求，429 时按 1s、2s 退避重试
func doWithRetry(ctx context.Context, client *http.Client, name string, newReq func() (*http.Request, error)) ([]byte, error) {
	for attempt := 0; ; attempt++ {
		req, err := newReq()
		if err != nil {
			return nil, err
		}
		resp, err := client.Do(req.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		body, readErr := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
		resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests && attempt < maxRetries {
			wait := retryBackoff << attempt
			logger.Warn("source rate limited, backing off", "source", name, "attempt", attempt+1, "wait", wait.String())
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
			continue
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, &StatusError{Source: name, Status: resp.StatusCode}
		}
		if readErr != nil {
			return nil, fmt.Errorf("%s: read body: %w", name, readErr)
		}
		return body, nil
	}
}

func getJSON(ctx context.Context, client *http.Client, name, url string, headers map[string]string, out any) error {
	body, err := doWithRetry(ctx, client, name, func() (*http.Request, error) {
		req, err := http.NewRequest(http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		return req, nil
	})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", name, err)
	}
	return nil
}

func ptr[T any](v T) *T { return &v }

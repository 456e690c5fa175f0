package utils

import (
	"crypto/md5"
	"encoding/hex"
	"strconv"
	"time"
)

// CalculateMD5 计算字符串的MD5哈希值，返回32位小写十六进制字符串
func CalculateMD5(input string) string {
	hasher := md5.New()
	hasher.Write([]byte(input))
	return hex.EncodeToString(hasher.Sum(nil))
}

// PushAuth 推送接口的鉴权请求头
type PushAuth struct {
	Timestamp     string // 毫秒时间戳
	Authorization string // md5(apiKey + 时间戳后4位)
}

// NewPushAuth 根据当前时间生成鉴权请求头
func NewPushAuth(apiKey string, now time.Time) PushAuth {
	ts := strconv.FormatInt(now.UnixMilli(), 10)
	last4 := ts
	if len(ts) > 4 {
		last4 = ts[len(ts)-4:]
	}
	return PushAuth{
		Timestamp:     ts,
		Authorization: CalculateMD5(apiKey + last4),
	}
}

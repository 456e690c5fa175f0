package utils

import (
	"strings"
)

// DeduplicateSlice 去重字符串切片，保持顺序并去掉空白项
func DeduplicateSlice(input []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0)

	for _, val := range input {
		val = strings.TrimSpace(val)
		if val != "" && !seen[val] {
			result = append(result, val)
			seen[val] = true
		}
	}

	return result
}

// SplitCSV 按逗号拆分参数值，去掉空白项与重复项
func SplitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{}
	}
	return DeduplicateSlice(strings.Split(raw, ","))
}

// TruncateRunes 按字符数截断文本，超出部分用省略号代替
func TruncateRunes(text string, n int) string {
	r := []rune(strings.TrimSpace(text))
	if n <= 0 || len(r) <= n {
		return string(r)
	}
	return string(r[:n]) + "…"
}

// FilterSpecialSymbols 过滤文本中的特殊符号，只保留常见标点符号和正常内容
func FilterSpecialSymbols(text string) string {
	// 定义要保留的常见标点符号
	commonPunctuation := map[rune]bool{
		'，': true, '。': true, '！': true, '？': true, '：': true, '；': true,
		'、': true, '（': true, '）': true,
		'【': true, '】': true, '《': true, '》': true,
		',': true, '.': true, '!': true, '?': true, ':': true, ';': true,
		'"': true, '\'': true, '(': true, ')': true, '[': true, ']': true,
		'-': true, '_': true, '/': true, '%': true, ' ': true,
		'\n': true,
	}

	var result strings.Builder
	for _, r := range text {
		// 保留中文字符、英文字母、数字和常见标点符号
		if (r >= '一' && r <= '龥') ||
			(r >= 'A' && r <= 'Z') ||
			(r >= 'a' && r <= 'z') ||
			(r >= '0' && r <= '9') ||
			commonPunctuation[r] {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}

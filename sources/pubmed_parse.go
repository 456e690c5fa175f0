package sources

import (
	"encoding/json"
	"strings"
	"time"
)

// esummary 的 result 中混有 "uids" 数组，逐个转换
func decodeSummaryDoc(v any) (esummaryDoc, bool) {
	var doc esummaryDoc
	if v == nil {
		return doc, false
	}
	b, err := json.Marshal(v)
	if err != nil {
		return doc, false
	}
	if err := json.Unmarshal(b, &doc); err != nil {
		return doc, false
	}
	return doc, true
}

// pubdate 形如 "2023 Jan 15"、"2023 Jan" 或 "2023"
func parsePubDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"2006 Jan 2", "2006 Jan", "2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	fields := strings.Fields(s)
	if len(fields) > 0 {
		if t, err := time.Parse("2006", fields[0]); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

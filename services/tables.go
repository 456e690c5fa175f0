package services

// 标签到检索关键词的映射
var defaultTagKeywords = map[string][]string{
	"高皮质醇风险": {"cortisol", "stress response", "anxiety disorder"},
	"重度焦虑":   {"severe anxiety", "GAD treatment", "anxiolytic therapy"},
	"亚健康状态":  {"sub-health", "fatigue syndrome", "wellness intervention"},
	"慢性疲劳":   {"chronic fatigue", "mitochondrial function", "energy metabolism"},
	"情绪困扰":   {"mood disorder", "emotional regulation", "depression treatment"},
	"免疫力差":   {"immune function", "inflammation markers", "immunomodulation"},
	"睡眠问题":   {"sleep quality", "insomnia treatment", "circadian rhythm"},
	"失眠":     {"insomnia", "sleep disorder", "melatonin"},
}

// 没有任何可识别标签时使用
var defaultKeywords = []string{"mental health", "stress management", "HRV biofeedback", "mindfulness"}

// 返回给客户端的关键词数
const maxKeywords = 6

// DefaultTagKeywords 返回标签关键词表的副本
func DefaultTagKeywords() map[string][]string {
	out := make(map[string][]string, len(defaultTagKeywords))
	for k, v := range defaultTagKeywords {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// DefaultKeywords 返回默认关键词的副本
func DefaultKeywords() []string {
	return append([]string(nil), defaultKeywords...)
}

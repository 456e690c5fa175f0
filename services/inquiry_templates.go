package services

import "adaptive_coach/models"

// InquiryTemplate 某个字段在某种语言下的问题
type InquiryTemplate struct {
	Text     string
	Type     models.QuestionType
	Priority models.Priority
	Options  []models.QuestionOption
}

type opt = models.QuestionOption

var inquiryTemplates = map[string]map[models.Language]InquiryTemplate{
	GapSleepHours: {
		models.LanguageZH: {
			Text: "昨晚睡得怎么样？大概睡了几个小时？", Type: models.QuestionDiagnostic, Priority: models.PriorityHigh,
			Options: []opt{{Label: "不到6小时", Value: "under_6"}, {Label: "6-7小时", Value: "6_7"}, {Label: "7-8小时", Value: "7_8"}, {Label: "8小时以上", Value: "over_8"}},
		},
		models.LanguageEN: {
			Text: "How did you sleep last night? About how many hours?", Type: models.QuestionDiagnostic, Priority: models.PriorityHigh,
			Options: []opt{{Label: "Less than 6 hours", Value: "under_6"}, {Label: "6-7 hours", Value: "6_7"}, {Label: "7-8 hours", Value: "7_8"}, {Label: "More than 8 hours", Value: "over_8"}},
		},
	},
	GapStressLevel: {
		models.LanguageZH: {
			Text: "今天感觉压力大吗？", Type: models.QuestionDiagnostic, Priority: models.PriorityHigh,
			Options: []opt{{Label: "很轻松", Value: "low"}, {Label: "有点紧张", Value: "medium"}, {Label: "压力很大", Value: "high"}},
		},
		models.LanguageEN: {
			Text: "Are you feeling stressed today?", Type: models.QuestionDiagnostic, Priority: models.PriorityHigh,
			Options: []opt{{Label: "Very relaxed", Value: "low"}, {Label: "A bit tense", Value: "medium"}, {Label: "Very stressed", Value: "high"}},
		},
	},
	GapExerciseDuration: {
		models.LanguageZH: {
			Text: "今天有运动吗？", Type: models.QuestionDiagnostic, Priority: models.PriorityMedium,
			Options: []opt{{Label: "没有", Value: "none"}, {Label: "轻度活动", Value: "light"}, {Label: "中等强度", Value: "moderate"}, {Label: "高强度", Value: "intense"}},
		},
		models.LanguageEN: {
			Text: "Did you exercise today?", Type: models.QuestionDiagnostic, Priority: models.PriorityMedium,
			Options: []opt{{Label: "No", Value: "none"}, {Label: "Light activity", Value: "light"}, {Label: "Moderate intensity", Value: "moderate"}, {Label: "High intensity", Value: "intense"}},
		},
	},
	GapMealQuality: {
		models.LanguageZH: {
			Text: "今天吃得健康吗？", Type: models.QuestionDiagnostic, Priority: models.PriorityMedium,
			Options: []opt{{Label: "很健康", Value: "healthy"}, {Label: "一般", Value: "average"}, {Label: "不太健康", Value: "unhealthy"}},
		},
		models.LanguageEN: {
			Text: "Did you eat healthy today?", Type: models.QuestionDiagnostic, Priority: models.PriorityMedium,
			Options: []opt{{Label: "Very healthy", Value: "healthy"}, {Label: "Average", Value: "average"}, {Label: "Not very healthy", Value: "unhealthy"}},
		},
	},
	GapMood: {
		models.LanguageZH: {
			Text: "现在心情如何？", Type: models.QuestionDiagnostic, Priority: models.PriorityLow,
			Options: []opt{{Label: "很好", Value: "great"}, {Label: "还行", Value: "okay"}, {Label: "不太好", Value: "bad"}},
		},
		models.LanguageEN: {
			Text: "How are you feeling right now?", Type: models.QuestionDiagnostic, Priority: models.PriorityLow,
			Options: []opt{{Label: "Great", Value: "great"}, {Label: "Okay", Value: "okay"}, {Label: "Not good", Value: "bad"}},
		},
	},
	GapWaterIntake: {
		models.LanguageZH: {
			Text: "今天喝了多少水？", Type: models.QuestionDiagnostic, Priority: models.PriorityLow,
			Options: []opt{{Label: "不到4杯", Value: "low"}, {Label: "4-8杯", Value: "moderate"}, {Label: "8杯以上", Value: "high"}},
		},
		models.LanguageEN: {
			Text: "How much water did you drink today?", Type: models.QuestionDiagnostic, Priority: models.PriorityLow,
			Options: []opt{{Label: "Less than 4 cups", Value: "low"}, {Label: "4-8 cups", Value: "moderate"}, {Label: "More than 8 cups", Value: "high"}},
		},
	},
}

// TemplateFor 返回字段对应的问题，语言不支持时使用中文
func TemplateFor(field string, lang models.Language) (InquiryTemplate, bool) {
	byLang, ok := inquiryTemplates[field]
	if !ok {
		return InquiryTemplate{}, false
	}
	if t, ok := byLang[lang]; ok {
		return t, true
	}
	t, ok := byLang[models.LanguageZH]
	return t, ok
}

// yesNoOptions 没有模板的问询使用是/否选项
func yesNoOptions(lang models.Language) []models.QuestionOption {
	if lang == models.LanguageEN {
		return []models.QuestionOption{{Label: "Yes", Value: "yes"}, {Label: "No", Value: "no"}}
	}
	return []models.QuestionOption{{Label: "是", Value: "yes"}, {Label: "否", Value: "no"}}
}

// localizeInquiry 按语言重新生成问题文本与选项
func localizeInquiry(q *models.InquiryQuestion, lang models.Language) {
	t, ok := TemplateFor(q.PrimaryGap(), lang)
	if !ok {
		q.Options = yesNoOptions(lang)
		return
	}
	q.QuestionText = t.Text
	q.Options = append([]models.QuestionOption(nil), t.Options...)
}

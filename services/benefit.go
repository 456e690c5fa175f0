package services

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"adaptive_coach/models"
)

// BenefitInput 生成推荐理由所需的用户数据
type BenefitInput struct {
	Profile  *models.UserInterestProfile
	Insights *models.InquiryInsights
	Language models.Language
}

var (
	sleepTheme  = regexp.MustCompile(`(?i)sleep|睡眠|insomnia|失眠|circadian|昼夜|melatonin|褪黑`)
	stressTheme = regexp.MustCompile(`(?i)stress|压力|cortisol|皮质醇|anxiety|焦虑|calm|放松`)
	energyTheme = regexp.MustCompile(`(?i)energy|能量|fatigue|疲劳|metabolism|代谢|mitochondria|线粒体`)
)

const (
	genericBenefitZH = "这是一篇关于健康科学的内容。完成临床评估和每日记录后，我们会根据你的实际数据推荐更相关的内容。"
	genericBenefitEN = "This is general health science content. Complete clinical assessments and daily logs for personalized recommendations."
)

// BuildBenefit 根据用户真实记录的数据与内容主题生成推荐理由。
// 没有任何用户数据时返回通用说明
func BuildBenefit(item models.ContentItem, in BenefitInput) string {
	zh := in.Language == models.LanguageZH
	points := benefitDataPoints(in, zh)
	if len(points) == 0 {
		if zh {
			return genericBenefitZH
		}
		return genericBenefitEN
	}

	relevance := contentRelevance(item, in.Profile, zh)
	if len(points) > 2 {
		points = points[:2]
	}
	if zh {
		if relevance == "" {
			relevance = "这篇内容与你的健康状况相关"
		}
		return fmt.Sprintf("根据%s，%s。", strings.Join(points, "、"), relevance)
	}
	if relevance == "" {
		relevance = "this content relates to your health"
	}
	return fmt.Sprintf("Based on %s, %s.", strings.Join(points, " and "), relevance)
}

func pick(zh bool, zhText, enText string) string {
	if zh {
		return zhText
	}
	return enText
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func benefitDataPoints(in BenefitInput, zh bool) []string {
	var points []string

	if p := in.Profile; p != nil {
		// 量表评估
		if gad := p.Scores.GAD7; gad != nil && *gad >= 5 {
			severity := pick(zh, "轻度", "mild")
			switch {
			case *gad >= 15:
				severity = pick(zh, "重度", "severe")
			case *gad >= 10:
				severity = pick(zh, "中度", "moderate")
			}
			points = append(points, pick(zh,
				"你的焦虑评估显示"+severity+"症状",
				"your anxiety assessment shows "+severity+" symptoms"))
		}
		if phq := p.Scores.PHQ9; phq != nil && *phq >= 10 {
			points = append(points, pick(zh, "你的情绪评估显示需要关注", "your mood assessment needs attention"))
		}
		if isi := p.Scores.ISI; isi != nil && *isi >= 15 {
			points = append(points, pick(zh, "你的睡眠评估显示存在障碍", "your sleep assessment shows issues"))
		}

		// 每日记录
		if s := p.Signals.SleepHours; s != nil && *s > 0 && *s < 6.5 {
			h := strconv.FormatFloat(*s, 'f', 1, 64)
			points = append(points, pick(zh, "你记录的睡眠时长为"+h+"小时", "you logged "+h+"h of sleep"))
		}
		if s := p.Signals.StressLevel; s != nil && *s >= 7 {
			v := formatNumber(*s)
			points = append(points, pick(zh, "你记录的压力为"+v+"/10", "you logged stress at "+v+"/10"))
		}
		if e := p.Signals.EnergyLevel; e != nil && *e > 0 && *e <= 4 {
			v := formatNumber(*e)
			points = append(points, pick(zh, "你记录的能量为"+v+"/10", "you logged energy at "+v+"/10"))
		}
	}

	// 问询回答
	if ins := in.Insights; ins != nil {
		if ins.SleepQuality == "poor" {
			points = append(points, pick(zh, "你在问询中反馈睡眠质量差", "you reported poor sleep quality"))
		}
		if ins.StressLevel == "high" {
			points = append(points, pick(zh, "你在问询中反馈压力较大", "you reported high stress"))
		}
		if ins.Mood == "bad" {
			points = append(points, pick(zh, "你在问询中反馈情绪不佳", "you reported low mood"))
		}
	}
	return points
}

// contentRelevance 内容主题与用户状态的对应关系，取第一个命中
func contentRelevance(item models.ContentItem, p *models.UserInterestProfile, zh bool) string {
	if p == nil {
		return ""
	}
	text := strings.ToLower(item.Title + " " + item.Summary)
	sig, scores := p.Signals, p.Scores

	if sleepTheme.MatchString(text) {
		if sig.SleepHours != nil && *sig.SleepHours > 0 && *sig.SleepHours < 7 {
			return pick(zh, "这篇关于睡眠的研究可能帮助你改善目前的睡眠状况", "this sleep research may help improve your current sleep")
		}
		if scores.ISI != nil && *scores.ISI >= 10 {
			return pick(zh, "基于你的睡眠评估结果，这篇内容可能对你有帮助", "based on your sleep assessment, this content may help")
		}
	}
	if stressTheme.MatchString(text) {
		if sig.StressLevel != nil && *sig.StressLevel >= 7 {
			return pick(zh, "考虑到你目前的压力水平，这篇内容可能提供有用的策略", "given your stress level, this may provide useful strategies")
		}
		if scores.GAD7 != nil && *scores.GAD7 >= 5 {
			return pick(zh, "基于你的焦虑评估结果，这篇关于压力管理的内容与你相关", "based on your anxiety assessment, this stress content is relevant")
		}
	}
	if energyTheme.MatchString(text) {
		if sig.EnergyLevel != nil && *sig.EnergyLevel > 0 && *sig.EnergyLevel <= 4 {
			return pick(zh, "针对你记录的能量状态，这篇研究可能帮助你提升活力", "based on your energy level, this may help boost vitality")
		}
	}
	return ""
}

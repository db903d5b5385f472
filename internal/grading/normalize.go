package grading

import (
	"math"

	"eduassess_backend/internal/model"
)

const DefaultPassScore = 60

// Normalize 将得分换算为百分制，满分为 0 时返回 0
func Normalize(score, maxScore int) int {
	if maxScore <= 0 {
		return 0
	}
	return int(math.Round(float64(score) / float64(maxScore) * 100))
}

// Summarize 汇总已评分答卷的百分制分数
func Summarize(scores []int, passScore int) model.ScoreSummary {
	s := model.ScoreSummary{TotalGraded: len(scores)}
	if len(scores) == 0 {
		return s
	}

	sum := 0
	for _, v := range scores {
		sum += v
		if v > s.HighestScore {
			s.HighestScore = v
		}
		if v >= passScore {
			s.PassCount++
		}
	}
	s.FailCount = s.TotalGraded - s.PassCount
	s.AverageScore = int(math.Round(float64(sum) / float64(len(scores))))
	s.PassRate = int(math.Round(float64(s.PassCount) / float64(len(scores)) * 100))
	return s
}

// Histogram 五个分数段，上界包含
func Histogram(scores []int) []model.ScoreBucket {
	buckets := []model.ScoreBucket{
		{Range: "0-20점", Min: 0, Max: 20},
		{Range: "21-40점", Min: 21, Max: 40},
		{Range: "41-60점", Min: 41, Max: 60},
		{Range: "61-80점", Min: 61, Max: 80},
		{Range: "81-100점", Min: 81, Max: 100},
	}
	for _, v := range scores {
		switch {
		case v <= 20:
			buckets[0].Count++
		case v <= 40:
			buckets[1].Count++
		case v <= 60:
			buckets[2].Count++
		case v <= 80:
			buckets[3].Count++
		default:
			buckets[4].Count++
		}
	}
	return buckets
}

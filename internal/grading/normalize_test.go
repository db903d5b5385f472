package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		score, max, want int
	}{
		{7, 10, 70},
		{2, 3, 67},
		{1, 3, 33},
		{1, 8, 13}, // 12.5 向上取整
		{0, 5, 0},
		{5, 5, 100},
		{3, 0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.score, tt.max), "%d/%d", tt.score, tt.max)
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize([]int{70, 50, 90}, DefaultPassScore)
	assert.Equal(t, 3, s.TotalGraded)
	assert.Equal(t, 70, s.AverageScore)
	assert.Equal(t, 2, s.PassCount)
	assert.Equal(t, 1, s.FailCount)
	assert.Equal(t, 67, s.PassRate)
	assert.Equal(t, 90, s.HighestScore)

	// 60 分及格
	edge := Summarize([]int{60, 59}, DefaultPassScore)
	assert.Equal(t, 1, edge.PassCount)
	assert.Equal(t, 50, edge.PassRate)

	empty := Summarize(nil, DefaultPassScore)
	assert.Equal(t, 0, empty.TotalGraded)
	assert.Equal(t, 0, empty.AverageScore)
	assert.Equal(t, 0, empty.PassRate)
}

func TestHistogramUpperInclusive(t *testing.T) {
	h := Histogram([]int{0, 20, 21, 40, 41, 60, 61, 80, 81, 100, 100})
	counts := make([]int, len(h))
	for i, b := range h {
		counts[i] = b.Count
	}
	assert.Equal(t, []int{2, 2, 2, 2, 3}, counts)
	assert.Equal(t, "0-20점", h[0].Range)
	assert.Equal(t, "81-100점", h[4].Range)
}

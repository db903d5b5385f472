package grading

import (
	"encoding/json"
	"testing"

	"eduassess_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func mc(id uint, correct, points int) model.Question {
	q := model.Question{Type: model.MultipleChoice, Options: []string{"A", "B", "C", "D"}, CorrectAnswer: intPtr(correct), Points: points}
	q.ID = id
	return q
}

func essay(id uint, points int) model.Question {
	q := model.Question{Type: model.Descriptive, Points: points}
	q.ID = id
	return q
}

func answers(t *testing.T, s string) map[string]json.RawMessage {
	t.Helper()
	m := map[string]json.RawMessage{}
	require.NoError(t, json.Unmarshal([]byte(s), &m))
	return m
}

func TestDecodeChoice(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		idx      int
		answered bool
		ok       bool
	}{
		{name: "number", raw: `2`, idx: 2, answered: true, ok: true},
		{name: "zero", raw: `0`, idx: 0, answered: true, ok: true},
		{name: "numeric string", raw: `"1"`, idx: 1, answered: true, ok: true},
		{name: "padded string", raw: `" 3 "`, idx: 3, answered: true, ok: true},
		{name: "missing", raw: ``, answered: false},
		{name: "null", raw: `null`, answered: false},
		{name: "empty string", raw: `""`, answered: false},
		{name: "text", raw: `"B"`, answered: true, ok: false},
		{name: "fraction", raw: `1.5`, answered: true, ok: false},
		{name: "array", raw: `[1]`, answered: true, ok: false},
		{name: "bool", raw: `true`, answered: true, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, answered, ok := DecodeChoice(json.RawMessage(tt.raw))
			assert.Equal(t, tt.answered, answered)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.idx, idx)
			}
		})
	}
}

func TestEvaluateAllChoiceCorrect(t *testing.T) {
	qs := []model.Question{mc(1, 0, 2), mc(2, 3, 3)}

	for _, policy := range []Policy{PolicyObjective, PolicyPerfect} {
		out := NewEngine(policy).Evaluate(qs, answers(t, `{"1": 0, "2": "3"}`))
		assert.Equal(t, 5, out.Score, policy)
		assert.Equal(t, 5, out.MaxScore, policy)
		assert.Equal(t, model.StatusGraded, out.Status, policy)
		require.Len(t, out.Items, 2)
		assert.True(t, *out.Items[0].Correct)
	}
}

func TestEvaluateWrongAnswer(t *testing.T) {
	qs := []model.Question{mc(1, 0, 2), mc(2, 3, 3)}
	ans := answers(t, `{"1": 0, "2": 1}`)

	out := NewEngine(PolicyObjective).Evaluate(qs, ans)
	assert.Equal(t, 2, out.Score)
	assert.Equal(t, 5, out.MaxScore)
	assert.Equal(t, model.StatusGraded, out.Status)

	// 旧规则下未满分则保持 submitted
	legacy := NewEngine(PolicyPerfect).Evaluate(qs, ans)
	assert.Equal(t, 2, legacy.Score)
	assert.Equal(t, 5, legacy.MaxScore)
	assert.Equal(t, model.StatusSubmitted, legacy.Status)
}

func TestEvaluateMixedPaper(t *testing.T) {
	qs := []model.Question{mc(1, 1, 1), essay(2, 4), mc(3, 2, 1)}
	ans := answers(t, `{"1": 1, "2": "광합성은 빛 에너지를 이용한다", "3": 2}`)

	out := NewEngine(PolicyObjective).Evaluate(qs, ans)
	assert.Equal(t, 2, out.Score)
	assert.Equal(t, 6, out.MaxScore)
	assert.Equal(t, model.StatusSubmitted, out.Status)
	assert.True(t, out.Items[1].NeedsManual)
	assert.Equal(t, "광합성은 빛 에너지를 이용한다", out.Items[1].StudentAnswer)

	// 旧规则只统计客观题，满分即判定为已评分
	legacy := NewEngine(PolicyPerfect).Evaluate(qs, ans)
	assert.Equal(t, 2, legacy.Score)
	assert.Equal(t, 2, legacy.MaxScore)
	assert.Equal(t, model.StatusGraded, legacy.Status)
}

func TestEvaluateUnansweredAndMalformed(t *testing.T) {
	qs := []model.Question{mc(1, 1, 2), mc(2, 0, 2)}

	out := NewEngine(PolicyObjective).Evaluate(qs, answers(t, `{"2": "A"}`))
	assert.Equal(t, 0, out.Score)
	assert.Equal(t, 4, out.MaxScore)
	assert.False(t, out.Items[0].Answered)
	assert.Nil(t, out.Items[0].Correct)
	assert.True(t, out.Items[1].Answered)
	assert.False(t, *out.Items[1].Correct)
}

func TestEvaluateEmptyPaper(t *testing.T) {
	out := NewEngine(PolicyObjective).Evaluate(nil, nil)
	assert.Equal(t, 0, out.Score)
	assert.Equal(t, 0, out.MaxScore)
	assert.Equal(t, model.StatusGraded, out.Status)
}

func TestRescore(t *testing.T) {
	qs := []model.Question{mc(1, 1, 1), essay(2, 4)}
	auto := []model.Grade{{QuestionID: 1, Points: 1, MaxPoints: 1}}

	score, maxScore, status := NewEngine(PolicyObjective).Rescore(qs, auto)
	assert.Equal(t, 1, score)
	assert.Equal(t, 5, maxScore)
	assert.Equal(t, model.StatusSubmitted, status)

	all := append(auto, model.Grade{QuestionID: 2, Points: 3, MaxPoints: 4})
	score, maxScore, status = NewEngine(PolicyObjective).Rescore(qs, all)
	assert.Equal(t, 4, score)
	assert.Equal(t, 5, maxScore)
	assert.Equal(t, model.StatusGraded, status)

	// 不属于试卷的评分记录被忽略
	stray := append(all, model.Grade{QuestionID: 99, Points: 10, MaxPoints: 10})
	score, _, _ = NewEngine(PolicyObjective).Rescore(qs, stray)
	assert.Equal(t, 4, score)

	score, maxScore, status = NewEngine(PolicyPerfect).Rescore(qs, auto)
	assert.Equal(t, 1, score)
	assert.Equal(t, 1, maxScore)
	assert.Equal(t, model.StatusGraded, status)
}

func TestRescorePerfectIgnoresDescriptiveGrades(t *testing.T) {
	qs := []model.Question{mc(1, 1, 2), essay(2, 3)}
	engine := NewEngine(PolicyPerfect)

	// 客观题全对，主观题满分也不会让得分超过满分
	right := []model.Grade{
		{QuestionID: 1, Points: 2, MaxPoints: 2},
		{QuestionID: 2, Points: 3, MaxPoints: 3},
	}
	score, maxScore, status := engine.Rescore(qs, right)
	assert.Equal(t, 2, score)
	assert.Equal(t, 2, maxScore)
	assert.Equal(t, model.StatusGraded, status)
	assert.Equal(t, 100, Normalize(score, maxScore))

	// 客观题答错时主观题分数不能补足
	wrong := []model.Grade{
		{QuestionID: 1, Points: 0, MaxPoints: 2},
		{QuestionID: 2, Points: 3, MaxPoints: 3},
	}
	score, maxScore, status = engine.Rescore(qs, wrong)
	assert.Equal(t, 0, score)
	assert.Equal(t, 2, maxScore)
	assert.Equal(t, model.StatusSubmitted, status)
}

func TestRescoreUsesRecordedMaxPoints(t *testing.T) {
	// 题目分值由 4 改为 2 之后，已有评分仍按原满分计算
	qs := []model.Question{mc(1, 1, 1), essay(2, 2)}
	grades := []model.Grade{
		{QuestionID: 1, Points: 1, MaxPoints: 1},
		{QuestionID: 2, Points: 4, MaxPoints: 4},
	}

	score, maxScore, status := NewEngine(PolicyObjective).Rescore(qs, grades)
	assert.Equal(t, 5, score)
	assert.Equal(t, 5, maxScore)
	assert.Equal(t, model.StatusGraded, status)
	assert.LessOrEqual(t, Normalize(score, maxScore), 100)

	// 未评分的题目按当前分值计入满分
	score, maxScore, status = NewEngine(PolicyObjective).Rescore(qs, grades[:1])
	assert.Equal(t, 1, score)
	assert.Equal(t, 3, maxScore)
	assert.Equal(t, model.StatusSubmitted, status)
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyObjective, p)

	p, err = ParsePolicy("perfect")
	require.NoError(t, err)
	assert.Equal(t, PolicyPerfect, p)

	_, err = ParsePolicy("lenient")
	assert.Error(t, err)
}

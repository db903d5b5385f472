// Package grading 实现客观题自动评分与分数归一化。
package grading

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"eduassess_backend/internal/model"
)

type Policy string

const (
	// PolicyObjective 满分为全部题目分值之和，没有待人工评分的题目即为已评分
	PolicyObjective Policy = "objective"
	// PolicyPerfect 旧规则：只统计客观题，得分等于满分才判定为已评分
	PolicyPerfect Policy = "perfect"
)

func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicyObjective, "":
		return PolicyObjective, nil
	case PolicyPerfect:
		return PolicyPerfect, nil
	}
	return "", fmt.Errorf("unknown grading policy %q", s)
}

// Item 单题评分结果
type Item struct {
	QuestionID    uint
	Type          model.QuestionType
	Answered      bool
	StudentAnswer string
	Points        int
	MaxPoints     int
	NeedsManual   bool
	Correct       *bool
}

// Outcome 整份答卷的评分结果
type Outcome struct {
	Score    int
	MaxScore int
	Status   model.SubmissionStatus
	Items    []Item
}

// Strategy 按题型评分单道题目，raw 为空表示未作答
type Strategy interface {
	Grade(q *model.Question, raw json.RawMessage) Item
}

type Engine struct {
	policy     Policy
	strategies map[model.QuestionType]Strategy
}

func NewEngine(policy Policy) *Engine {
	return &Engine{
		policy: policy,
		strategies: map[model.QuestionType]Strategy{
			model.MultipleChoice: choiceStrategy{},
			model.Descriptive:    descriptiveStrategy{},
		},
	}
}

func (e *Engine) Policy() Policy {
	return e.policy
}

// Evaluate 按试卷题目顺序评分，answers 以题目ID字符串为键
func (e *Engine) Evaluate(questions []model.Question, answers map[string]json.RawMessage) Outcome {
	out := Outcome{Items: make([]Item, 0, len(questions))}
	needsManual := false

	for i := range questions {
		q := &questions[i]
		raw := answers[strconv.FormatUint(uint64(q.ID), 10)]

		var item Item
		if s, ok := e.strategies[q.Type]; ok {
			item = s.Grade(q, raw)
		} else {
			item = Item{QuestionID: q.ID, Type: q.Type, MaxPoints: q.Points, NeedsManual: true, StudentAnswer: AnswerText(raw)}
		}
		out.Items = append(out.Items, item)

		switch e.policy {
		case PolicyPerfect:
			if q.Type == model.MultipleChoice {
				out.Score += item.Points
				out.MaxScore += item.MaxPoints
			}
		default:
			out.Score += item.Points
			out.MaxScore += item.MaxPoints
			if item.NeedsManual {
				needsManual = true
			}
		}
	}

	out.Status = model.StatusSubmitted
	switch e.policy {
	case PolicyPerfect:
		if out.Score == out.MaxScore {
			out.Status = model.StatusGraded
		}
	default:
		if !needsManual {
			out.Status = model.StatusGraded
		}
	}
	return out
}

// Rescore 人工评分后按已有评分记录重新计算总分与状态。
// 已评分题目按评分时记录的满分计算，题目分值之后被修改也不会让得分超过满分。
// perfect 策略下与 Evaluate 一致，只统计客观题。
func (e *Engine) Rescore(questions []model.Question, grades []model.Grade) (score, maxScore int, status model.SubmissionStatus) {
	byQuestion := make(map[uint]model.Grade, len(grades))
	for _, g := range grades {
		byQuestion[g.QuestionID] = g
	}

	complete := true
	for _, q := range questions {
		if e.policy == PolicyPerfect && q.Type != model.MultipleChoice {
			continue
		}
		g, ok := byQuestion[q.ID]
		if !ok {
			maxScore += q.Points
			complete = false
			continue
		}
		points := g.Points
		if points > g.MaxPoints {
			points = g.MaxPoints
		}
		if points < 0 {
			points = 0
		}
		score += points
		maxScore += g.MaxPoints
	}

	status = model.StatusSubmitted
	switch e.policy {
	case PolicyPerfect:
		if score == maxScore {
			status = model.StatusGraded
		}
	default:
		if complete {
			status = model.StatusGraded
		}
	}
	return score, maxScore, status
}

type choiceStrategy struct{}

func (choiceStrategy) Grade(q *model.Question, raw json.RawMessage) Item {
	item := Item{QuestionID: q.ID, Type: q.Type, MaxPoints: q.Points, StudentAnswer: AnswerText(raw)}

	idx, answered, ok := DecodeChoice(raw)
	item.Answered = answered
	if !answered {
		return item
	}

	correct := ok && q.CorrectAnswer != nil && idx == *q.CorrectAnswer
	item.Correct = &correct
	if correct {
		item.Points = q.Points
	}
	return item
}

type descriptiveStrategy struct{}

func (descriptiveStrategy) Grade(q *model.Question, raw json.RawMessage) Item {
	text := AnswerText(raw)
	return Item{
		QuestionID:    q.ID,
		Type:          q.Type,
		MaxPoints:     q.Points,
		Answered:      strings.TrimSpace(text) != "",
		StudentAnswer: text,
		NeedsManual:   true,
	}
}

// DecodeChoice 解析客观题作答：JSON 数字或数字字符串为选项下标
// answered=false 表示未作答；ok=false 表示作答无法解析（按错误处理）
func DecodeChoice(raw json.RawMessage) (idx int, answered bool, ok bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return 0, false, false
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return 0, true, false
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return 0, false, false
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, true, false
		}
		return n, true, true
	default:
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.UseNumber()
		var v interface{}
		if err := dec.Decode(&v); err != nil {
			return 0, true, false
		}
		num, isNum := v.(json.Number)
		if !isNum {
			return 0, true, false
		}
		n, err := strconv.Atoi(num.String())
		if err != nil {
			return 0, true, false
		}
		return n, true, true
	}
}

// AnswerText 作答的文本形式，写入评分记录
func AnswerText(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ""
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return s
		}
	}
	return string(trimmed)
}

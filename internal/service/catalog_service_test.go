package service

import (
	"testing"

	"eduassess_backend/internal/model"
	"eduassess_backend/internal/repository"
	"eduassess_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubjectCodeMustBeUnique(t *testing.T) {
	env := newTestEnv(t)
	owner := env.instructor(t)

	first := env.subject(t, "MATH", owner.ID)
	assert.True(t, first.IsActive)

	_, err := env.Subjects.Create(SubjectRequest{Name: "다른 수학", Code: "MATH"}, owner.ID)
	assert.ErrorIs(t, err, util.ErrDuplicateCode)

	other := env.subject(t, "PHYS", owner.ID)
	_, err = env.Subjects.Update(other.ID, SubjectRequest{Name: "물리", Code: "MATH"})
	assert.ErrorIs(t, err, util.ErrDuplicateCode)

	// 保持自身编码不算冲突
	updated, err := env.Subjects.Update(other.ID, SubjectRequest{Name: "물리학", Code: "PHYS", IsActive: boolPtr(false)})
	require.NoError(t, err)
	assert.Equal(t, "물리학", updated.Name)
	assert.False(t, updated.IsActive)

	active, err := env.Subjects.List()
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "MATH", active[0].Code)
}

func TestSubjectDeleteRefusedWhileReferenced(t *testing.T) {
	env := newTestEnv(t)
	owner := env.instructor(t)
	subject := env.subject(t, "MATH", owner.ID)
	q := env.choice(t, subject.ID, owner.ID, 1, 1)

	assert.ErrorIs(t, env.Subjects.Delete(subject.ID), util.ErrSubjectHasReferences)

	require.NoError(t, env.Questions.Delete(q.ID))
	require.NoError(t, env.Subjects.Delete(subject.ID))

	_, err := env.Subjects.Get(subject.ID)
	assert.ErrorIs(t, err, util.ErrNotFound)
}

func TestQuestionValidation(t *testing.T) {
	env := newTestEnv(t)
	owner := env.instructor(t)
	subject := env.subject(t, "MATH", owner.ID)

	cases := []struct {
		name string
		req  QuestionRequest
		err  error
	}{
		{
			name: "unknown subject",
			req:  QuestionRequest{SubjectID: 999, Type: "descriptive", QuestionText: "설명하시오"},
			err:  util.ErrNotFound,
		},
		{
			name: "single option",
			req:  QuestionRequest{SubjectID: subject.ID, Type: "multiple-choice", QuestionText: "?", Options: []string{"a"}, CorrectAnswer: intPtr(0)},
			err:  util.ErrInvalidQuestion,
		},
		{
			name: "blank option",
			req:  QuestionRequest{SubjectID: subject.ID, Type: "multiple-choice", QuestionText: "?", Options: []string{"a", " "}, CorrectAnswer: intPtr(0)},
			err:  util.ErrInvalidQuestion,
		},
		{
			name: "answer out of range",
			req:  QuestionRequest{SubjectID: subject.ID, Type: "multiple-choice", QuestionText: "?", Options: []string{"a", "b"}, CorrectAnswer: intPtr(2)},
			err:  util.ErrInvalidQuestion,
		},
		{
			name: "missing answer",
			req:  QuestionRequest{SubjectID: subject.ID, Type: "multiple-choice", QuestionText: "?", Options: []string{"a", "b"}},
			err:  util.ErrInvalidQuestion,
		},
		{
			name: "too many option images",
			req: QuestionRequest{SubjectID: subject.ID, Type: "multiple-choice", QuestionText: "?", Options: []string{"a", "b"},
				OptionImages: []string{"1.png", "2.png", "3.png"}, CorrectAnswer: intPtr(0)},
			err: util.ErrInvalidQuestion,
		},
		{
			name: "descriptive with options",
			req:  QuestionRequest{SubjectID: subject.ID, Type: "descriptive", QuestionText: "?", Options: []string{"a", "b"}},
			err:  util.ErrInvalidQuestion,
		},
		{
			name: "zero points",
			req:  QuestionRequest{SubjectID: subject.ID, Type: "descriptive", QuestionText: "?", Points: intPtr(0)},
			err:  util.ErrInvalidQuestion,
		},
		{
			name: "blank text",
			req:  QuestionRequest{SubjectID: subject.ID, Type: "descriptive", QuestionText: "   "},
			err:  util.ErrInvalidQuestion,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.Questions.Create(tc.req, owner.ID)
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestQuestionDefaultsAndUpdate(t *testing.T) {
	env := newTestEnv(t)
	owner := env.instructor(t)
	subject := env.subject(t, "MATH", owner.ID)

	q, err := env.Questions.Create(QuestionRequest{
		SubjectID:     subject.ID,
		Type:          "multiple-choice",
		QuestionText:  " 2 x 3 = ? ",
		Options:       []string{"5", "6"},
		OptionImages:  []string{"", "six.png"},
		CorrectAnswer: intPtr(1),
	}, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, q.Points)
	assert.Equal(t, "2 x 3 = ?", q.QuestionText)

	// 改为主观题后清空选项与答案
	updated, err := env.Questions.Update(q.ID, QuestionRequest{SubjectID: subject.ID, Type: "descriptive", QuestionText: "곱셈을 설명하시오", Points: intPtr(5)})
	require.NoError(t, err)
	assert.Equal(t, model.Descriptive, updated.Type)
	assert.Nil(t, updated.CorrectAnswer)
	assert.Empty(t, updated.Options)

	reloaded, err := env.Questions.Get(q.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, reloaded.Points)
	assert.Empty(t, reloaded.OptionImages)

	subjectID := subject.ID
	list, err := env.Questions.List(repository.QuestionFilter{SubjectID: &subjectID})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestAssessmentValidation(t *testing.T) {
	env := newTestEnv(t)
	owner := env.instructor(t)
	math := env.subject(t, "MATH", owner.ID)
	physics := env.subject(t, "PHYS", owner.ID)
	q1 := env.choice(t, math.ID, owner.ID, 0, 2)
	foreign := env.choice(t, physics.ID, owner.ID, 0, 2)

	cases := []struct {
		name string
		req  AssessmentRequest
	}{
		{"duplicate question", AssessmentRequest{SubjectID: math.ID, Title: "t", QuestionIDs: []uint{q1.ID, q1.ID}}},
		{"unknown question", AssessmentRequest{SubjectID: math.ID, Title: "t", QuestionIDs: []uint{q1.ID, 999}}},
		{"other subject", AssessmentRequest{SubjectID: math.ID, Title: "t", QuestionIDs: []uint{q1.ID, foreign.ID}}},
		{"zero time limit", AssessmentRequest{SubjectID: math.ID, Title: "t", QuestionIDs: []uint{q1.ID}, TimeLimit: intPtr(0)}},
		{"blank title", AssessmentRequest{SubjectID: math.ID, Title: " ", QuestionIDs: []uint{q1.ID}}},
		{"no questions", AssessmentRequest{SubjectID: math.ID, Title: "t"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.Assessments.Create(tc.req, owner.ID)
			assert.ErrorIs(t, err, util.ErrInvalidAssessment)
		})
	}
}

func TestAssessmentPaperHidesAnswers(t *testing.T) {
	env := newTestEnv(t)
	owner := env.instructor(t)
	subject := env.subject(t, "MATH", owner.ID)
	q1 := env.essay(t, subject.ID, owner.ID, 5)
	q2 := env.choice(t, subject.ID, owner.ID, 1, 3)
	a := env.assessment(t, subject.ID, owner.ID, intPtr(30), q2, q1)

	paper, err := env.Assessments.GetPaper(a.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 8, paper.TotalScore)
	require.Len(t, paper.Questions, 2)
	assert.Equal(t, q2.ID, paper.Questions[0].ID)
	assert.Equal(t, q1.ID, paper.Questions[1].ID)
	assert.Equal(t, []string{"1", "2", "3", "4"}, paper.Questions[0].Options)
	assert.Equal(t, []string{}, paper.Questions[1].Options)
}

func TestInactiveAssessmentHiddenFromStudents(t *testing.T) {
	env := newTestEnv(t)
	owner := env.instructor(t)
	subject := env.subject(t, "MATH", owner.ID)
	q := env.choice(t, subject.ID, owner.ID, 1, 1)
	a := env.assessment(t, subject.ID, owner.ID, nil, q)

	_, err := env.Assessments.Update(a.ID, AssessmentRequest{
		SubjectID: subject.ID, Title: a.Title, QuestionIDs: []uint{q.ID}, IsActive: boolPtr(false),
	})
	require.NoError(t, err)

	_, err = env.Assessments.Get(a.ID, false)
	assert.ErrorIs(t, err, util.ErrNotFound)
	_, err = env.Assessments.Get(a.ID, true)
	assert.NoError(t, err)

	visible, err := env.Assessments.List(repository.AssessmentFilter{}, false)
	require.NoError(t, err)
	assert.Empty(t, visible)
	all, err := env.Assessments.List(repository.AssessmentFilter{}, true)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

package service

import (
	"context"
	"testing"

	"eduassess_backend/internal/model"
	"eduassess_backend/internal/repository"
	"eduassess_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mixedPaper struct {
	owner   *model.User
	student *model.User
	mc      *model.Question
	essay   *model.Question
	sub     *model.Submission
}

// submitMixedPaper 客观题答对，主观题待评分
func submitMixedPaper(t *testing.T, env *testEnv) mixedPaper {
	t.Helper()
	owner := env.instructor(t)
	subject := env.subject(t, "MATH", owner.ID)
	mc := env.choice(t, subject.ID, owner.ID, 1, 2)
	essay := env.essay(t, subject.ID, owner.ID, 3)
	a := env.assessment(t, subject.ID, owner.ID, nil, mc, essay)
	student := env.student(t, "홍길동")

	sub, _, err := env.Submissions.Start(a.ID, student.ID)
	require.NoError(t, err)
	sub, err = env.Submissions.Update(sub.ID, student.ID, UpdateSubmissionRequest{
		Answers: answersFor(t, map[uint]interface{}{mc.ID: 1, essay.ID: "빗변의 제곱은 두 변의 제곱의 합"}),
		Status:  model.StatusSubmitted,
	})
	require.NoError(t, err)
	require.Equal(t, model.StatusSubmitted, sub.Status)
	return mixedPaper{owner: owner, student: student, mc: mc, essay: essay, sub: sub}
}

func TestManualGradeCompletesSubmission(t *testing.T) {
	env := newTestEnv(t)
	p := submitMixedPaper(t, env)

	g, err := env.Grades.Create(GradeRequest{SubmissionID: p.sub.ID, QuestionID: p.essay.ID, Points: intPtr(3), Feedback: "훌륭합니다"}, p.owner.ID)
	require.NoError(t, err)
	assert.NotZero(t, g.ID)
	assert.Equal(t, 3, g.MaxPoints)
	assert.Equal(t, "빗변의 제곱은 두 변의 제곱의 합", g.StudentAnswer)
	require.NotNil(t, g.GradedBy)
	assert.Equal(t, p.owner.ID, *g.GradedBy)

	sub, err := env.Submissions.Repo.FindByID(p.sub.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusGraded, sub.Status)
	assert.Equal(t, 5, *sub.Score)
	assert.Equal(t, 5, *sub.MaxScore)
	assert.NotNil(t, sub.GradedAt)

	// 满分奖励在人工评分完成后发放
	profile, err := env.Gamification.Profile(p.student.ID)
	require.NoError(t, err)
	assert.Equal(t, 30, profile.TotalPoints)
}

func TestRegradeOverwritesAndRescores(t *testing.T) {
	env := newTestEnv(t)
	p := submitMixedPaper(t, env)

	first, err := env.Grades.Create(GradeRequest{SubmissionID: p.sub.ID, QuestionID: p.essay.ID, Points: intPtr(3)}, p.owner.ID)
	require.NoError(t, err)
	again, err := env.Grades.Create(GradeRequest{SubmissionID: p.sub.ID, QuestionID: p.essay.ID, Points: intPtr(2), Feedback: "보완 필요"}, p.owner.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)

	updated, err := env.Grades.Update(again.ID, UpdateGradeRequest{Points: intPtr(1)}, p.owner.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.Points)
	assert.Equal(t, "보완 필요", updated.Feedback)

	subID := p.sub.ID
	grades, err := env.Grades.List(repository.GradeFilter{SubmissionID: &subID})
	require.NoError(t, err)
	assert.Len(t, grades, 2)

	sub, err := env.Submissions.Repo.FindByID(p.sub.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusGraded, sub.Status)
	assert.Equal(t, 3, *sub.Score)

	// 未满分不发满分奖励，只有交卷积分
	profile, err := env.Gamification.Profile(p.student.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, profile.TotalPoints)
}

func TestGradeValidation(t *testing.T) {
	env := newTestEnv(t)
	p := submitMixedPaper(t, env)
	outside := env.essay(t, p.mc.SubjectID, p.owner.ID, 3)

	_, err := env.Grades.Create(GradeRequest{SubmissionID: p.sub.ID, QuestionID: p.essay.ID, Points: intPtr(4)}, p.owner.ID)
	assert.ErrorIs(t, err, util.ErrPointsOutOfRange)
	_, err = env.Grades.Create(GradeRequest{SubmissionID: p.sub.ID, QuestionID: p.essay.ID, Points: intPtr(-1)}, p.owner.ID)
	assert.ErrorIs(t, err, util.ErrPointsOutOfRange)
	_, err = env.Grades.Create(GradeRequest{SubmissionID: p.sub.ID, QuestionID: outside.ID, Points: intPtr(1)}, p.owner.ID)
	assert.ErrorIs(t, err, util.ErrQuestionNotInPaper)
	_, err = env.Grades.Create(GradeRequest{SubmissionID: 999, QuestionID: p.essay.ID, Points: intPtr(1)}, p.owner.ID)
	assert.ErrorIs(t, err, util.ErrNotFound)
	_, err = env.Grades.Update(999, UpdateGradeRequest{Points: intPtr(1)}, p.owner.ID)
	assert.ErrorIs(t, err, util.ErrNotFound)
}

func TestGradeRejectsInProgressSubmission(t *testing.T) {
	env := newTestEnv(t)
	owner := env.instructor(t)
	subject := env.subject(t, "MATH", owner.ID)
	essay := env.essay(t, subject.ID, owner.ID, 3)
	a := env.assessment(t, subject.ID, owner.ID, nil, essay)
	student := env.student(t, "홍길동")

	sub, _, err := env.Submissions.Start(a.ID, student.ID)
	require.NoError(t, err)

	_, err = env.Grades.Create(GradeRequest{SubmissionID: sub.ID, QuestionID: essay.ID, Points: intPtr(1)}, owner.ID)
	assert.ErrorIs(t, err, util.ErrSubmissionNotGraded)
}

func TestPerfectPolicyManualGradeKeepsScoreWithinMax(t *testing.T) {
	env := newTestEnv(t)
	env.Cfg.Grading.Policy = "perfect"
	env.Submissions.ApplyConfig(env.Cfg)

	owner := env.instructor(t)
	subject := env.subject(t, "MATH", owner.ID)
	mc := env.choice(t, subject.ID, owner.ID, 1, 2)
	essay := env.essay(t, subject.ID, owner.ID, 3)
	a := env.assessment(t, subject.ID, owner.ID, nil, mc, essay)

	submit := func(name string, choice int) *model.Submission {
		student := env.student(t, name)
		sub, _, err := env.Submissions.Start(a.ID, student.ID)
		require.NoError(t, err)
		sub, err = env.Submissions.Update(sub.ID, student.ID, UpdateSubmissionRequest{
			Answers: answersFor(t, map[uint]interface{}{mc.ID: choice, essay.ID: "빗변의 제곱"}),
			Status:  model.StatusSubmitted,
		})
		require.NoError(t, err)
		return sub
	}

	right := submit("학생1", 1)
	require.Equal(t, model.StatusGraded, right.Status)
	_, err := env.Grades.Create(GradeRequest{SubmissionID: right.ID, QuestionID: essay.ID, Points: intPtr(3)}, owner.ID)
	require.NoError(t, err)

	sub, err := env.Submissions.Repo.FindByID(right.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusGraded, sub.Status)
	assert.Equal(t, 2, *sub.Score)
	assert.Equal(t, 2, *sub.MaxScore)

	// 客观题答错时主观题满分不能让答卷变为已评分
	wrong := submit("학생2", 0)
	require.Equal(t, model.StatusSubmitted, wrong.Status)
	_, err = env.Grades.Create(GradeRequest{SubmissionID: wrong.ID, QuestionID: essay.ID, Points: intPtr(3)}, owner.ID)
	require.NoError(t, err)

	sub, err = env.Submissions.Repo.FindByID(wrong.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusSubmitted, sub.Status)
	assert.Equal(t, 0, *sub.Score)
	assert.Equal(t, 2, *sub.MaxScore)

	report, err := env.Analytics.Report(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Summary.TotalGraded)
	assert.Equal(t, 100, report.Summary.HighestScore)
	assert.Equal(t, 100, report.Summary.AverageScore)
}

func TestRescoreAfterQuestionPointsEdited(t *testing.T) {
	env := newTestEnv(t)
	p := submitMixedPaper(t, env)

	_, err := env.Grades.Create(GradeRequest{SubmissionID: p.sub.ID, QuestionID: p.essay.ID, Points: intPtr(3)}, p.owner.ID)
	require.NoError(t, err)

	// 交卷后客观题分值由 2 改为 1，重新评分主观题时已有评分仍按原满分计算
	require.NoError(t, env.DB.Model(&model.Question{}).Where("id = ?", p.mc.ID).Update("points", 1).Error)
	_, err = env.Grades.Create(GradeRequest{SubmissionID: p.sub.ID, QuestionID: p.essay.ID, Points: intPtr(3)}, p.owner.ID)
	require.NoError(t, err)

	sub, err := env.Submissions.Repo.FindByID(p.sub.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusGraded, sub.Status)
	assert.Equal(t, 5, *sub.Score)
	assert.Equal(t, 5, *sub.MaxScore)
}

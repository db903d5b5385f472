package service

import (
	"testing"
	"time"

	"eduassess_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevel(t *testing.T) {
	cases := []struct {
		points int
		level  int
		toNext int
	}{
		{0, 1, 100},
		{99, 1, 1},
		{100, 2, 100},
		{250, 3, 50},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.level, Level(tc.points), "points=%d", tc.points)
		assert.Equal(t, tc.toNext, PointsToNextLevel(tc.points), "points=%d", tc.points)
	}
}

func TestAwardPoints(t *testing.T) {
	env := newTestEnv(t)
	student := env.student(t, "홍길동")

	profile, err := env.Gamification.AwardPoints(student.ID, 120, "출석 보너스")
	require.NoError(t, err)
	assert.Equal(t, 120, profile.TotalPoints)
	assert.Equal(t, 2, profile.Level)
	assert.Equal(t, 80, profile.PointsToNextLevel)

	profile, err = env.Gamification.AwardPoints(student.ID, -20, "포인트 사용")
	require.NoError(t, err)
	assert.Equal(t, 100, profile.TotalPoints)

	_, err = env.Gamification.AwardPoints(student.ID, -101, "초과 사용")
	assert.ErrorIs(t, err, util.ErrPointsOutOfRange)

	logs, err := env.Gamification.Repo.ListPointLogs(student.ID, 10)
	require.NoError(t, err)
	assert.Len(t, logs, 2)

	_, err = env.Gamification.AwardPoints(999, 10, "없는 사용자")
	assert.ErrorIs(t, err, util.ErrNotFound)
}

func TestEarnBadgeIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	student := env.student(t, "홍길동")

	_, err := env.Gamification.EarnBadge(student.ID, "no-such-badge")
	assert.ErrorIs(t, err, util.ErrUnknownBadge)

	profile, err := env.Gamification.EarnBadge(student.ID, "early-bird")
	require.NoError(t, err)
	require.Len(t, profile.Badges, 1)
	assert.Equal(t, RarityCommon, profile.Badges[0].Rarity)

	profile, err = env.Gamification.EarnBadge(student.ID, "early-bird")
	require.NoError(t, err)
	assert.Len(t, profile.Badges, 1)
}

func TestCheckAchievementsAwardsOnce(t *testing.T) {
	env := newTestEnv(t)
	owner := env.instructor(t)
	subject := env.subject(t, "MATH", owner.ID)
	q := env.choice(t, subject.ID, owner.ID, 0, 1)
	a := env.assessment(t, subject.ID, owner.ID, nil, q)
	student := env.student(t, "홍길동")

	newly, err := env.Gamification.CheckAchievements(student.ID)
	require.NoError(t, err)
	assert.Empty(t, newly)

	takeChoiceTest(t, env, a, student.ID, map[uint]interface{}{q.ID: 1})

	newly, err = env.Gamification.CheckAchievements(student.ID)
	require.NoError(t, err)
	require.Len(t, newly, 1)
	assert.Equal(t, "first-quiz", newly[0].ID)

	newly, err = env.Gamification.CheckAchievements(student.ID)
	require.NoError(t, err)
	assert.Empty(t, newly)

	// 交卷 10 分 + 成就 10 分
	profile, err := env.Gamification.Profile(student.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, profile.TotalPoints)
	for _, v := range profile.Achievements {
		if v.ID == "quiz-10" {
			assert.Equal(t, 1, v.Progress)
			assert.False(t, v.Completed)
		}
	}
}

func TestStreakAcrossDays(t *testing.T) {
	env := newTestEnv(t)
	student := env.student(t, "홍길동")

	day := time.Date(2024, 3, 1, 10, 0, 0, 0, time.Local)
	env.Gamification.now = func() time.Time { return day }
	require.NoError(t, env.Gamification.touchStreak(student.ID))
	require.NoError(t, env.Gamification.touchStreak(student.ID))

	day = day.AddDate(0, 0, 1)
	require.NoError(t, env.Gamification.touchStreak(student.ID))
	profile, err := env.Gamification.Profile(student.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, profile.Streak)

	// 中断一天后重新计算
	day = day.AddDate(0, 0, 2)
	require.NoError(t, env.Gamification.touchStreak(student.ID))
	profile, err = env.Gamification.Profile(student.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, profile.Streak)
}

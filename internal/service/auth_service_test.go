package service

import (
	"context"
	"testing"

	"eduassess_backend/internal/model"
	"eduassess_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestTeacherLogin(t *testing.T) {
	env := newTestEnv(t)
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, env.Users.Create(&model.User{Username: "teacher1", Name: "김선생", Password: string(hash), Role: model.Instructor}))

	res, err := env.Auth.TeacherLogin("teacher1", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "김선생", res.User.Name)
	assert.NotNil(t, res.User.LastLogin)

	claims, err := util.ParseJWT(res.Token, env.Cfg.JWT.Secret)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.UserID)
	assert.Equal(t, model.Instructor, claims.Role)

	_, err = env.Auth.TeacherLogin("teacher1", "wrong")
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)
	_, err = env.Auth.TeacherLogin("nobody", "password123")
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)
}

func TestTeacherLoginRejectsStudents(t *testing.T) {
	env := newTestEnv(t)
	env.student(t, "홍길동")

	_, err := env.Auth.TeacherLogin("홍길동_050312", "")
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)
}

func TestStudentLoginFindsOrCreates(t *testing.T) {
	env := newTestEnv(t)

	first, err := env.Auth.StudentLogin("홍길동", "050312")
	require.NoError(t, err)
	second, err := env.Auth.StudentLogin("홍길동", "050312")
	require.NoError(t, err)
	assert.Equal(t, first.StudentID, second.StudentID)
	assert.Equal(t, "홍길동", second.Name)

	// 同名不同生日视为不同学生
	other, err := env.Auth.StudentLogin("홍길동", "060101")
	require.NoError(t, err)
	assert.NotEqual(t, first.StudentID, other.StudentID)

	count, err := env.Users.CountByRole(model.Student)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	user, err := env.Auth.GetProfile(first.StudentID)
	require.NoError(t, err)
	assert.Equal(t, "홍길동_050312", user.Username)
	assert.Equal(t, "050312", user.BirthDate)
}

func TestStudentLoginCannotTakeOverStaffAccount(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.Users.Create(&model.User{Username: "관리자_000101", Name: "관리자", Role: model.Admin}))

	_, err := env.Auth.StudentLogin("관리자", "000101")
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)
}

func TestLogoutRevokesToken(t *testing.T) {
	env := newTestEnv(t)
	res, err := env.Auth.StudentLogin("홍길동", "050312")
	require.NoError(t, err)
	claims, err := util.ParseJWT(res.Token, env.Cfg.JWT.Secret)
	require.NoError(t, err)

	ctx := context.Background()
	revoked, err := env.Auth.IsRevoked(ctx, claims.ID)
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, env.Auth.Logout(ctx, claims))

	revoked, err = env.Auth.IsRevoked(ctx, claims.ID)
	require.NoError(t, err)
	assert.True(t, revoked)

	// 重新登录得到新的令牌
	again, err := env.Auth.StudentLogin("홍길동", "050312")
	require.NoError(t, err)
	fresh, err := util.ParseJWT(again.Token, env.Cfg.JWT.Secret)
	require.NoError(t, err)
	revoked, err = env.Auth.IsRevoked(ctx, fresh.ID)
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestGetProfileMissingUser(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.Auth.GetProfile(42)
	assert.ErrorIs(t, err, util.ErrNotFound)
}

package util

import (
	"testing"
	"time"

	"eduassess_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseJWT(t *testing.T) {
	user := &model.User{Username: "instructor", Role: model.Instructor}
	user.ID = 7

	token, err := GenerateJWT(user, "secret", time.Hour)
	require.NoError(t, err)

	claims, err := ParseJWT(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, model.Instructor, claims.Role)
	assert.Equal(t, "instructor", claims.Username)
	assert.NotEmpty(t, claims.ID)
	assert.True(t, claims.IsStaff())
}

func TestParseJWTRejectsWrongSecretAndExpired(t *testing.T) {
	user := &model.User{Username: "kim_010203", Role: model.Student}

	token, err := GenerateJWT(user, "secret", time.Hour)
	require.NoError(t, err)
	_, err = ParseJWT(token, "other")
	assert.Error(t, err)

	expired, err := GenerateJWT(user, "secret", -time.Minute)
	require.NoError(t, err)
	_, err = ParseJWT(expired, "secret")
	assert.Error(t, err)
}

func TestTokensHaveDistinctIDs(t *testing.T) {
	user := &model.User{Username: "instructor", Role: model.Instructor}
	a, _ := GenerateJWT(user, "secret", time.Hour)
	b, _ := GenerateJWT(user, "secret", time.Hour)

	ca, err := ParseJWT(a, "secret")
	require.NoError(t, err)
	cb, err := ParseJWT(b, "secret")
	require.NoError(t, err)
	assert.NotEqual(t, ca.ID, cb.ID)
}

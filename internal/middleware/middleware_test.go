package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"eduassess_backend/internal/config"
	"eduassess_backend/internal/model"
	"eduassess_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRevoker struct {
	revoked map[string]bool
	err     error
}

func (f *fakeRevoker) IsRevoked(_ context.Context, jti string) (bool, error) {
	return f.revoked[jti], f.err
}

func newRouter(cfg *config.Config, revoker TokenRevoker, roles ...model.UserRole) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := []gin.HandlerFunc{AuthMiddleware(cfg, revoker)}
	if len(roles) > 0 {
		handlers = append(handlers, RoleMiddleware(roles...))
	}
	handlers = append(handlers, func(c *gin.Context) {
		util.Success(c, util.GetUserFromContext(c).UserID)
	})
	r.GET("/protected", handlers...)
	return r
}

func issue(t *testing.T, cfg *config.Config, id uint, role model.UserRole) (string, *util.Claims) {
	t.Helper()
	user := &model.User{BaseModel: model.BaseModel{ID: id}, Username: "u", Role: role}
	token, err := util.GenerateJWT(user, cfg.JWT.Secret, time.Hour)
	require.NoError(t, err)
	claims, err := util.ParseJWT(token, cfg.JWT.Secret)
	require.NoError(t, err)
	return token, claims
}

func TestAuthMiddleware(t *testing.T) {
	cfg := &config.Config{JWT: config.JWTConfig{Secret: "secret"}}
	token, claims := issue(t, cfg, 7, model.Student)
	revoker := &fakeRevoker{revoked: map[string]bool{}}
	r := newRouter(cfg, revoker)

	cases := []struct {
		name   string
		url    string
		header string
		status int
	}{
		{"missing token", "/protected", "", http.StatusUnauthorized},
		{"bearer header", "/protected", "Bearer " + token, http.StatusOK},
		{"query token", "/protected?token=" + token, "", http.StatusOK},
		{"garbage", "/protected", "Bearer nope", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.url, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.status, w.Code)
		})
	}

	other := &config.Config{JWT: config.JWTConfig{Secret: "other"}}
	forged, _ := issue(t, other, 7, model.Admin)
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+forged)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	revoker.revoked[claims.ID] = true
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), util.ErrTokenRevoked.Error())
}

func TestAuthMiddlewareToleratesCacheFailure(t *testing.T) {
	cfg := &config.Config{JWT: config.JWTConfig{Secret: "secret"}}
	token, _ := issue(t, cfg, 7, model.Student)
	r := newRouter(cfg, &fakeRevoker{err: errors.New("redis down")})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRoleMiddleware(t *testing.T) {
	cfg := &config.Config{JWT: config.JWTConfig{Secret: "secret"}}
	r := newRouter(cfg, nil, model.Instructor)

	cases := []struct {
		role   model.UserRole
		status int
	}{
		{model.Student, http.StatusForbidden},
		{model.Instructor, http.StatusOK},
		{model.Admin, http.StatusOK},
	}
	for _, tc := range cases {
		token, _ := issue(t, cfg, 1, tc.role)
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, tc.status, w.Code, "role=%s", tc.role)
	}
}

func TestIsBirthDate(t *testing.T) {
	valid := []string{"050312", "000229", "991231", "010101"}
	invalid := []string{"", "05031", "0503122", "05a312", "051312", "050001", "050431", "050300", "050230"}
	for _, s := range valid {
		assert.True(t, IsBirthDate(s), s)
	}
	for _, s := range invalid {
		assert.False(t, IsBirthDate(s), s)
	}
}

func TestRegisteredValidators(t *testing.T) {
	require.NoError(t, RegisterValidators())

	type body struct {
		BirthDate string `binding:"required,birthdate"`
		Type      string `binding:"required,qtype"`
	}
	assert.NoError(t, binding.Validator.ValidateStruct(body{BirthDate: "050312", Type: "descriptive"}))
	assert.Error(t, binding.Validator.ValidateStruct(body{BirthDate: "051399", Type: "descriptive"}))
	assert.Error(t, binding.Validator.ValidateStruct(body{BirthDate: "050312", Type: "essay"}))
}

package service

import (
	"context"
	"eduassess_backend/internal/config"
	"eduassess_backend/internal/model"
	"eduassess_backend/internal/repository"
	"eduassess_backend/internal/util"
	"eduassess_backend/pkg/cache"
	"eduassess_backend/pkg/logger"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const revokedKeyPrefix = "revoked:"

type TeacherLoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type StudentLoginRequest struct {
	Name      string `json:"name" binding:"required,max=50"`
	BirthDate string `json:"birthDate" binding:"required,birthdate"`
}

type LoginResult struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

type StudentLoginResult struct {
	Token     string `json:"token"`
	StudentID uint   `json:"studentId"`
	Name      string `json:"name"`
}

type AuthService struct {
	UserRepo *repository.UserRepository
	Cache    cache.Cache
	Cfg      *config.Config
}

func NewAuthService(userRepo *repository.UserRepository, c cache.Cache, cfg *config.Config) *AuthService {
	return &AuthService{
		UserRepo: userRepo,
		Cache:    c,
		Cfg:      cfg,
	}
}

// TeacherLogin 仅教师与管理员可通过用户名密码登录
func (s *AuthService) TeacherLogin(username, password string) (*LoginResult, error) {
	user, err := s.UserRepo.FindByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.Role.IsStaff() {
		return nil, util.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, util.ErrInvalidCredentials
	}

	s.touchLogin(user)

	token, err := util.GenerateJWT(user, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, User: user}, nil
}

// StudentLogin 按姓名与生日查找学生，不存在则创建
func (s *AuthService) StudentLogin(name, birthDate string) (*StudentLoginResult, error) {
	username := fmt.Sprintf("%s_%s", name, birthDate)

	user, err := s.UserRepo.FindByUsername(username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = &model.User{
			Username:  username,
			Name:      name,
			BirthDate: birthDate,
			Role:      model.Student,
		}
		if err := s.UserRepo.Create(user); err != nil {
			// 并发登录时可能已被创建
			existing, findErr := s.UserRepo.FindByUsername(username)
			if findErr != nil {
				return nil, err
			}
			user = existing
		} else {
			logger.Log.Info("student registered", zap.Uint("userId", user.ID), zap.String("username", username))
		}
	} else if err != nil {
		return nil, err
	}

	if user.Role != model.Student {
		return nil, util.ErrInvalidCredentials
	}

	s.touchLogin(user)

	token, err := util.GenerateJWT(user, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
	if err != nil {
		return nil, err
	}
	return &StudentLoginResult{Token: token, StudentID: user.ID, Name: user.Name}, nil
}

func (s *AuthService) touchLogin(user *model.User) {
	now := time.Now()
	user.LastLogin = &now
	if err := s.UserRepo.UpdateFields(user.ID, map[string]interface{}{"last_login": now}); err != nil {
		logger.Log.Warn("update last login failed", zap.Uint("userId", user.ID), zap.Error(err))
	}
}

// Logout 吊销令牌直到其过期
func (s *AuthService) Logout(ctx context.Context, claims *util.Claims) error {
	if claims == nil || claims.ID == "" {
		return nil
	}
	ttl := time.Minute
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if ttl <= 0 {
		return nil
	}
	return s.Cache.Set(ctx, revokedKeyPrefix+claims.ID, "1", ttl)
}

// IsRevoked 供鉴权中间件使用
func (s *AuthService) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}
	_, ok, err := s.Cache.Get(ctx, revokedKeyPrefix+jti)
	return ok, err
}

func (s *AuthService) GetProfile(userID uint) (*model.User, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

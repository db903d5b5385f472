package repository

import (
	"eduassess_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GamificationRepository struct {
	DB *gorm.DB
}

func NewGamificationRepository(db *gorm.DB) *GamificationRepository {
	return &GamificationRepository{DB: db}
}

func (r *GamificationRepository) WithTx(tx *gorm.DB) *GamificationRepository {
	return &GamificationRepository{DB: tx}
}

func (r *GamificationRepository) ListBadges(userID uint) ([]model.UserBadge, error) {
	var badges []model.UserBadge
	err := r.DB.Where("user_id = ?", userID).Order("earned_at asc").Find(&badges).Error
	return badges, err
}

// AddBadge 已拥有时不重复插入，返回是否新获得
func (r *GamificationRepository) AddBadge(b *model.UserBadge) (bool, error) {
	res := r.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(b)
	return res.RowsAffected > 0, res.Error
}

func (r *GamificationRepository) ListAchievements(userID uint) ([]model.UserAchievement, error) {
	var as []model.UserAchievement
	err := r.DB.Where("user_id = ?", userID).Order("completed_at asc").Find(&as).Error
	return as, err
}

func (r *GamificationRepository) AddAchievement(a *model.UserAchievement) (bool, error) {
	res := r.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(a)
	return res.RowsAffected > 0, res.Error
}

func (r *GamificationRepository) CreatePointLog(l *model.PointLog) error {
	return r.DB.Create(l).Error
}

func (r *GamificationRepository) ListPointLogs(userID uint, limit int) ([]model.PointLog, error) {
	var logs []model.PointLog
	err := r.DB.Where("user_id = ?", userID).Order("id desc").Limit(limit).Find(&logs).Error
	return logs, err
}

func (r *GamificationRepository) HasPointLog(userID uint, reason string) (bool, error) {
	var count int64
	err := r.DB.Model(&model.PointLog{}).Where("user_id = ? AND reason = ?", userID, reason).Count(&count).Error
	return count > 0, err
}

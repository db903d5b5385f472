package model

import "time"

type UserBadge struct {
	BaseModel
	UserID   uint      `gorm:"uniqueIndex:idx_user_badge;not null" json:"userId"`
	BadgeID  string    `gorm:"uniqueIndex:idx_user_badge;size:50;not null" json:"badgeId"`
	EarnedAt time.Time `json:"earnedAt"`
}

func (UserBadge) TableName() string {
	return "user_badges"
}

type UserAchievement struct {
	BaseModel
	UserID        uint      `gorm:"uniqueIndex:idx_user_achievement;not null" json:"userId"`
	AchievementID string    `gorm:"uniqueIndex:idx_user_achievement;size:50;not null" json:"achievementId"`
	CompletedAt   time.Time `json:"completedAt"`
}

func (UserAchievement) TableName() string {
	return "user_achievements"
}

// PointLog 积分流水
type PointLog struct {
	BaseModel
	UserID uint   `gorm:"index;not null" json:"userId"`
	Points int    `json:"points"`
	Reason string `gorm:"size:255" json:"reason"`
}

func (PointLog) TableName() string {
	return "point_logs"
}

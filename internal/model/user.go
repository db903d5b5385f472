package model

import (
	"time"
)

type UserRole string

const (
	Student    UserRole = "student"
	Instructor UserRole = "instructor"
	Admin      UserRole = "admin"
)

// IsStaff 教师或管理员
func (r UserRole) IsStaff() bool {
	return r == Instructor || r == Admin
}

// swagger:model User
type User struct {
	BaseModel
	Username       string     `gorm:"size:100;uniqueIndex;not null" json:"username"`
	Name           string     `gorm:"size:100;not null" json:"name"`
	BirthDate      string     `gorm:"size:6" json:"birthDate,omitempty"` // YYMMDD，仅学生
	Password       string     `gorm:"size:100" json:"-"`
	Role           UserRole   `gorm:"size:20;index;not null" json:"role"`
	Points         int        `gorm:"default:0" json:"points"`
	Streak         int        `gorm:"default:0" json:"streak"`
	LastActiveDate string     `gorm:"size:10" json:"lastActiveDate,omitempty"` // 2006-01-02
	LastLogin      *time.Time `json:"lastLogin,omitempty"`
}

func (User) TableName() string {
	return "users"
}

package model

import "time"

// swagger:model Grade
type Grade struct {
	BaseModel
	SubmissionID  uint      `gorm:"uniqueIndex:idx_grade_submission_question;not null" json:"submissionId"`
	QuestionID    uint      `gorm:"uniqueIndex:idx_grade_submission_question;not null" json:"questionId"`
	StudentAnswer string    `gorm:"type:text" json:"studentAnswer"`
	Points        int       `json:"points"`
	MaxPoints     int       `json:"maxPoints"`
	Feedback      string    `gorm:"type:text" json:"feedback"`
	GradedBy      *uint     `json:"gradedBy"` // 为空表示自动评分
	GradedAt      time.Time `json:"gradedAt"`
}

func (Grade) TableName() string {
	return "grades"
}

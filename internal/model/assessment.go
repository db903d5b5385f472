package model

import "gorm.io/datatypes"

// swagger:model Assessment
type Assessment struct {
	BaseModel
	SubjectID   uint                      `gorm:"index;not null" json:"subjectId"`
	Title       string                    `gorm:"size:255;not null" json:"title"`
	Description string                    `gorm:"type:text" json:"description"`
	QuestionIDs datatypes.JSONSlice[uint] `gorm:"column:question_ids" json:"questionIds"` // 有序
	TimeLimit   *int                      `json:"timeLimit"`                              // Minutes
	IsActive    bool                      `json:"isActive"`
	CreatedBy   uint                      `gorm:"index" json:"createdBy"`
}

func (Assessment) TableName() string {
	return "assessments"
}

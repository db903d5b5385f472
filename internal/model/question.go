package model

import "gorm.io/datatypes"

type QuestionType string

const (
	MultipleChoice QuestionType = "multiple-choice"
	Descriptive    QuestionType = "descriptive"
)

// swagger:model Question
type Question struct {
	BaseModel
	SubjectID     uint                        `gorm:"index;not null" json:"subjectId"`
	Type          QuestionType                `gorm:"size:30;not null" json:"type"`
	QuestionText  string                      `gorm:"type:text;not null" json:"questionText"`
	QuestionImage string                      `gorm:"size:255" json:"questionImage,omitempty"`
	Options       datatypes.JSONSlice[string] `json:"options"`
	OptionImages  datatypes.JSONSlice[string] `json:"optionImages"`
	CorrectAnswer *int                        `json:"correctAnswer"` // 选项下标，主观题为空
	Points        int                         `gorm:"not null" json:"points"`
	CreatedBy     uint                        `gorm:"index" json:"createdBy"`
}

func (Question) TableName() string {
	return "questions"
}

package model

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

type SubmissionStatus string

const (
	StatusInProgress SubmissionStatus = "in-progress"
	StatusSubmitted  SubmissionStatus = "submitted"
	StatusGraded     SubmissionStatus = "graded"
)

// swagger:model Submission
type Submission struct {
	BaseModel
	AssessmentID uint             `gorm:"index;not null" json:"assessmentId"`
	StudentID    uint             `gorm:"index;not null" json:"studentId"`
	Student      *User            `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	Answers      datatypes.JSON   `json:"answers"`
	Score        *int             `json:"score"`
	MaxScore     *int             `json:"maxScore"`
	Status       SubmissionStatus `gorm:"size:20;index;not null" json:"status"`
	StartedAt    time.Time        `json:"startedAt"`
	SubmittedAt  *time.Time       `json:"submittedAt"`
	GradedAt     *time.Time       `json:"gradedAt"`
}

func (Submission) TableName() string {
	return "submissions"
}

// AnswerMap 以题目ID（字符串）为键解析作答
func (s *Submission) AnswerMap() (map[string]json.RawMessage, error) {
	answers := map[string]json.RawMessage{}
	if len(s.Answers) == 0 {
		return answers, nil
	}
	if err := json.Unmarshal(s.Answers, &answers); err != nil {
		return nil, err
	}
	if answers == nil {
		answers = map[string]json.RawMessage{}
	}
	return answers, nil
}

// IsOpen 仍可作答
func (s *Submission) IsOpen() bool {
	return s.Status == StatusInProgress
}

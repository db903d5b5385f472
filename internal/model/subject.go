package model

// swagger:model Subject
type Subject struct {
	BaseModel
	Name        string `gorm:"size:100;not null" json:"name"`
	Code        string `gorm:"size:20;uniqueIndex;not null" json:"code"`
	Description string `gorm:"type:text" json:"description"`
	IsActive    bool   `json:"isActive"`
	CreatedBy   uint   `gorm:"index" json:"createdBy"`
}

func (Subject) TableName() string {
	return "subjects"
}

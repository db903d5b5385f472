package repository

import (
	"eduassess_backend/internal/model"

	"gorm.io/gorm"
)

type SubjectRepository struct {
	DB *gorm.DB
}

func NewSubjectRepository(db *gorm.DB) *SubjectRepository {
	return &SubjectRepository{DB: db}
}

func (r *SubjectRepository) Create(subject *model.Subject) error {
	return r.DB.Create(subject).Error
}

func (r *SubjectRepository) FindByID(id uint) (*model.Subject, error) {
	var s model.Subject
	err := r.DB.First(&s, id).Error
	return &s, err
}

func (r *SubjectRepository) FindByCode(code string) (*model.Subject, error) {
	var s model.Subject
	err := r.DB.Where("code = ?", code).First(&s).Error
	return &s, err
}

func (r *SubjectRepository) List(activeOnly bool) ([]model.Subject, error) {
	var subjects []model.Subject
	query := r.DB.Model(&model.Subject{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	err := query.Order("id asc").Find(&subjects).Error
	return subjects, err
}

func (r *SubjectRepository) Update(subject *model.Subject) error {
	return r.DB.Save(subject).Error
}

func (r *SubjectRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Subject{}, id).Error
}

// CountReferences 统计引用该科目的题目与测评数量
func (r *SubjectRepository) CountReferences(id uint) (int64, error) {
	var questions, assessments int64
	if err := r.DB.Model(&model.Question{}).Where("subject_id = ?", id).Count(&questions).Error; err != nil {
		return 0, err
	}
	if err := r.DB.Model(&model.Assessment{}).Where("subject_id = ?", id).Count(&assessments).Error; err != nil {
		return 0, err
	}
	return questions + assessments, nil
}

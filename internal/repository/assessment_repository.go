package repository

import (
	"eduassess_backend/internal/model"

	"gorm.io/gorm"
)

type AssessmentFilter struct {
	SubjectID  *uint
	CreatedBy  *uint
	ActiveOnly bool
}

type AssessmentRepository struct {
	DB *gorm.DB
}

func NewAssessmentRepository(db *gorm.DB) *AssessmentRepository {
	return &AssessmentRepository{DB: db}
}

func (r *AssessmentRepository) Create(a *model.Assessment) error {
	return r.DB.Create(a).Error
}

func (r *AssessmentRepository) FindByID(id uint) (*model.Assessment, error) {
	var a model.Assessment
	err := r.DB.First(&a, id).Error
	return &a, err
}

func (r *AssessmentRepository) List(filter AssessmentFilter) ([]model.Assessment, error) {
	var as []model.Assessment
	query := r.DB.Model(&model.Assessment{})
	if filter.SubjectID != nil {
		query = query.Where("subject_id = ?", *filter.SubjectID)
	}
	if filter.CreatedBy != nil {
		query = query.Where("created_by = ?", *filter.CreatedBy)
	}
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	err := query.Order("created_at desc, id desc").Find(&as).Error
	return as, err
}

func (r *AssessmentRepository) Update(a *model.Assessment) error {
	return r.DB.Save(a).Error
}

func (r *AssessmentRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Assessment{}, id).Error
}

func (r *AssessmentRepository) Count(activeOnly bool) (int64, error) {
	var count int64
	query := r.DB.Model(&model.Assessment{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	err := query.Count(&count).Error
	return count, err
}

package repository

import (
	"eduassess_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GradeFilter struct {
	SubmissionID *uint
	QuestionID   *uint
}

type GradeRepository struct {
	DB *gorm.DB
}

func NewGradeRepository(db *gorm.DB) *GradeRepository {
	return &GradeRepository{DB: db}
}

func (r *GradeRepository) WithTx(tx *gorm.DB) *GradeRepository {
	return &GradeRepository{DB: tx}
}

// Upsert 每份答卷每道题只保留一条评分
func (r *GradeRepository) Upsert(g *model.Grade) error {
	err := r.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "submission_id"}, {Name: "question_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"student_answer", "points", "max_points", "feedback", "graded_by", "graded_at", "updated_at",
		}),
	}).Create(g).Error
	if err != nil {
		return err
	}
	// 冲突更新时部分驱动不会回填主键
	saved, err := r.FindBySubmissionAndQuestion(g.SubmissionID, g.QuestionID)
	if err != nil {
		return err
	}
	*g = *saved
	return nil
}

func (r *GradeRepository) FindByID(id uint) (*model.Grade, error) {
	var g model.Grade
	err := r.DB.First(&g, id).Error
	return &g, err
}

func (r *GradeRepository) FindBySubmissionAndQuestion(submissionID, questionID uint) (*model.Grade, error) {
	var g model.Grade
	err := r.DB.Where("submission_id = ? AND question_id = ?", submissionID, questionID).First(&g).Error
	return &g, err
}

func (r *GradeRepository) ListBySubmission(submissionID uint) ([]model.Grade, error) {
	var gs []model.Grade
	err := r.DB.Where("submission_id = ?", submissionID).Order("id asc").Find(&gs).Error
	return gs, err
}

func (r *GradeRepository) List(filter GradeFilter) ([]model.Grade, error) {
	var gs []model.Grade
	query := r.DB.Model(&model.Grade{})
	if filter.SubmissionID != nil {
		query = query.Where("submission_id = ?", *filter.SubmissionID)
	}
	if filter.QuestionID != nil {
		query = query.Where("question_id = ?", *filter.QuestionID)
	}
	err := query.Order("id asc").Find(&gs).Error
	return gs, err
}

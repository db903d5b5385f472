package repository

import (
	"eduassess_backend/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SubmissionFilter struct {
	AssessmentID *uint
	StudentID    *uint
	Status       model.SubmissionStatus
}

// ScoreRow 统计用的答卷行，附带所属科目
type ScoreRow struct {
	SubmissionID uint
	AssessmentID uint
	SubjectID    uint
	StudentID    uint
	Status       model.SubmissionStatus
	Score        *int
	MaxScore     *int
}

type SubmissionRepository struct {
	DB *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{DB: db}
}

func (r *SubmissionRepository) WithTx(tx *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{DB: tx}
}

func (r *SubmissionRepository) Create(s *model.Submission) error {
	return r.DB.Omit(clause.Associations).Create(s).Error
}

func (r *SubmissionRepository) FindByID(id uint) (*model.Submission, error) {
	var s model.Submission
	err := r.DB.Preload("Student").First(&s, id).Error
	return &s, err
}

// FindByIDForUpdate 事务内加行锁读取
func (r *SubmissionRepository) FindByIDForUpdate(id uint) (*model.Submission, error) {
	var s model.Submission
	query := r.DB
	if r.DB.Dialector.Name() != "sqlite" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	err := query.First(&s, id).Error
	return &s, err
}

// FindOpen 学生在该测评下进行中的答卷
func (r *SubmissionRepository) FindOpen(assessmentID, studentID uint) (*model.Submission, error) {
	var s model.Submission
	err := r.DB.Where("assessment_id = ? AND student_id = ? AND status = ?", assessmentID, studentID, model.StatusInProgress).
		Order("id desc").First(&s).Error
	return &s, err
}

func (r *SubmissionRepository) List(filter SubmissionFilter) ([]model.Submission, error) {
	var ss []model.Submission
	query := r.DB.Model(&model.Submission{}).Preload("Student")
	if filter.AssessmentID != nil {
		query = query.Where("assessment_id = ?", *filter.AssessmentID)
	}
	if filter.StudentID != nil {
		query = query.Where("student_id = ?", *filter.StudentID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	err := query.Order("id desc").Find(&ss).Error
	return ss, err
}

func (r *SubmissionRepository) Update(s *model.Submission) error {
	return r.DB.Omit(clause.Associations).Save(s).Error
}

// SaveAnswers 只在答卷仍为进行中时写入作答，返回是否写入
func (r *SubmissionRepository) SaveAnswers(id uint, answers datatypes.JSON) (bool, error) {
	result := r.DB.Model(&model.Submission{}).
		Where("id = ? AND status = ?", id, model.StatusInProgress).
		Update("answers", answers)
	return result.RowsAffected > 0, result.Error
}

// ListTimedInProgress 进行中且测评设置了时限的答卷
func (r *SubmissionRepository) ListTimedInProgress() ([]model.Submission, error) {
	var ss []model.Submission
	err := r.DB.Model(&model.Submission{}).
		Joins("JOIN assessments ON assessments.id = submissions.assessment_id").
		Where("submissions.status = ? AND assessments.time_limit IS NOT NULL", model.StatusInProgress).
		Find(&ss).Error
	return ss, err
}

func (r *SubmissionRepository) CountByStatus(status model.SubmissionStatus) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Submission{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

// CountFinishedByStudent 已交卷（含已评分）的数量
func (r *SubmissionRepository) CountFinishedByStudent(studentID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Submission{}).
		Where("student_id = ? AND status <> ?", studentID, model.StatusInProgress).
		Count(&count).Error
	return count, err
}

// ListScoreRows 全部答卷及其科目，subjectID 为空时不过滤
func (r *SubmissionRepository) ListScoreRows(subjectID *uint) ([]ScoreRow, error) {
	var rows []ScoreRow
	query := r.DB.Table("submissions").
		Select("submissions.id AS submission_id, submissions.assessment_id, assessments.subject_id, " +
			"submissions.student_id, submissions.status, submissions.score, submissions.max_score").
		Joins("JOIN assessments ON assessments.id = submissions.assessment_id AND assessments.deleted_at IS NULL").
		Where("submissions.deleted_at IS NULL")
	if subjectID != nil {
		query = query.Where("assessments.subject_id = ?", *subjectID)
	}
	err := query.Order("submissions.id asc").Scan(&rows).Error
	return rows, err
}

// ListGradedByStudent 学生已评分的答卷
func (r *SubmissionRepository) ListGradedByStudent(studentID uint) ([]model.Submission, error) {
	var ss []model.Submission
	err := r.DB.Where("student_id = ? AND status = ?", studentID, model.StatusGraded).Find(&ss).Error
	return ss, err
}

package service

import (
	"eduassess_backend/internal/model"
	"eduassess_backend/internal/repository"
	"eduassess_backend/internal/util"
	"fmt"
	"strings"
)

type AssessmentRequest struct {
	SubjectID   uint   `json:"subjectId" binding:"required"`
	Title       string `json:"title" binding:"required,max=255"`
	Description string `json:"description"`
	QuestionIDs []uint `json:"questionIds" binding:"required,min=1"`
	TimeLimit   *int   `json:"timeLimit"`
	IsActive    *bool  `json:"isActive"`
}

// Paper 学生答题用的试卷
type Paper struct {
	Assessment *model.Assessment `json:"assessment"`
	Questions  []PaperQuestion   `json:"questions"`
	TotalScore int               `json:"totalScore"`
}

type AssessmentService struct {
	Repo         *repository.AssessmentRepository
	QuestionRepo *repository.QuestionRepository
	SubjectRepo  *repository.SubjectRepository
}

func NewAssessmentService(repo *repository.AssessmentRepository, questionRepo *repository.QuestionRepository, subjectRepo *repository.SubjectRepository) *AssessmentService {
	return &AssessmentService{Repo: repo, QuestionRepo: questionRepo, SubjectRepo: subjectRepo}
}

// List 学生只能看到启用中的测评
func (s *AssessmentService) List(filter repository.AssessmentFilter, staff bool) ([]model.Assessment, error) {
	if !staff {
		filter.ActiveOnly = true
	}
	return s.Repo.List(filter)
}

func (s *AssessmentService) Get(id uint, staff bool) (*model.Assessment, error) {
	a, err := s.Repo.FindByID(id)
	if err != nil {
		return nil, mapNotFound(err, "assessment")
	}
	if !staff && !a.IsActive {
		return nil, fmt.Errorf("assessment %d inactive: %w", id, util.ErrNotFound)
	}
	return a, nil
}

// GetPaper 按测评顺序返回题目，去掉正确答案
func (s *AssessmentService) GetPaper(id uint, staff bool) (*Paper, error) {
	a, err := s.Get(id, staff)
	if err != nil {
		return nil, err
	}
	qs, err := s.QuestionRepo.FindByIDs(a.QuestionIDs)
	if err != nil {
		return nil, err
	}

	paper := &Paper{Assessment: a, Questions: make([]PaperQuestion, 0, len(qs))}
	for i := range qs {
		paper.Questions = append(paper.Questions, toPaperQuestion(&qs[i]))
		paper.TotalScore += qs[i].Points
	}
	return paper, nil
}

func (s *AssessmentService) Create(req AssessmentRequest, userID uint) (*model.Assessment, error) {
	a := &model.Assessment{CreatedBy: userID, IsActive: true}
	if err := s.apply(a, req); err != nil {
		return nil, err
	}
	if err := s.Repo.Create(a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AssessmentService) Update(id uint, req AssessmentRequest) (*model.Assessment, error) {
	a, err := s.Get(id, true)
	if err != nil {
		return nil, err
	}
	if err := s.apply(a, req); err != nil {
		return nil, err
	}
	if err := s.Repo.Update(a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AssessmentService) Delete(id uint) error {
	if _, err := s.Get(id, true); err != nil {
		return err
	}
	return s.Repo.Delete(id)
}

func (s *AssessmentService) apply(a *model.Assessment, req AssessmentRequest) error {
	if _, err := s.SubjectRepo.FindByID(req.SubjectID); err != nil {
		return mapNotFound(err, "subject")
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return fmt.Errorf("empty title: %w", util.ErrInvalidAssessment)
	}
	if req.TimeLimit != nil && *req.TimeLimit < 1 {
		return fmt.Errorf("time limit must be at least 1 minute: %w", util.ErrInvalidAssessment)
	}
	if len(req.QuestionIDs) == 0 {
		return fmt.Errorf("no questions: %w", util.ErrInvalidAssessment)
	}

	seen := make(map[uint]bool, len(req.QuestionIDs))
	for _, id := range req.QuestionIDs {
		if seen[id] {
			return fmt.Errorf("duplicate question %d: %w", id, util.ErrInvalidAssessment)
		}
		seen[id] = true
	}

	qs, err := s.QuestionRepo.FindByIDs(req.QuestionIDs)
	if err != nil {
		return err
	}
	if len(qs) != len(req.QuestionIDs) {
		return fmt.Errorf("unknown question in list: %w", util.ErrInvalidAssessment)
	}
	for _, q := range qs {
		if q.SubjectID != req.SubjectID {
			return fmt.Errorf("question %d belongs to another subject: %w", q.ID, util.ErrInvalidAssessment)
		}
	}

	a.SubjectID = req.SubjectID
	a.Title = title
	a.Description = req.Description
	a.QuestionIDs = append([]uint(nil), req.QuestionIDs...)
	if req.TimeLimit != nil {
		limit := *req.TimeLimit
		a.TimeLimit = &limit
	} else {
		a.TimeLimit = nil
	}
	if req.IsActive != nil {
		a.IsActive = *req.IsActive
	}
	return nil
}

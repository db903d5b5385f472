package service

import (
	"eduassess_backend/internal/model"
	"eduassess_backend/internal/repository"
	"eduassess_backend/internal/util"
	"fmt"
	"strings"
)

type QuestionRequest struct {
	SubjectID     uint     `json:"subjectId" binding:"required"`
	Type          string   `json:"type" binding:"required,qtype"`
	QuestionText  string   `json:"questionText" binding:"required"`
	QuestionImage string   `json:"questionImage"`
	Options       []string `json:"options"`
	OptionImages  []string `json:"optionImages"`
	CorrectAnswer *int     `json:"correctAnswer"`
	Points        *int     `json:"points"`
}

// PaperQuestion 学生答题时看到的题目，不含正确答案
type PaperQuestion struct {
	ID            uint               `json:"id"`
	Type          model.QuestionType `json:"type"`
	QuestionText  string             `json:"questionText"`
	QuestionImage string             `json:"questionImage,omitempty"`
	Options       []string           `json:"options"`
	OptionImages  []string           `json:"optionImages"`
	Points        int                `json:"points"`
}

func toPaperQuestion(q *model.Question) PaperQuestion {
	options := []string(q.Options)
	if options == nil {
		options = []string{}
	}
	images := []string(q.OptionImages)
	if images == nil {
		images = []string{}
	}
	return PaperQuestion{
		ID:            q.ID,
		Type:          q.Type,
		QuestionText:  q.QuestionText,
		QuestionImage: q.QuestionImage,
		Options:       options,
		OptionImages:  images,
		Points:        q.Points,
	}
}

type QuestionService struct {
	Repo        *repository.QuestionRepository
	SubjectRepo *repository.SubjectRepository
}

func NewQuestionService(repo *repository.QuestionRepository, subjectRepo *repository.SubjectRepository) *QuestionService {
	return &QuestionService{Repo: repo, SubjectRepo: subjectRepo}
}

func (s *QuestionService) List(filter repository.QuestionFilter) ([]model.Question, error) {
	return s.Repo.List(filter)
}

func (s *QuestionService) Get(id uint) (*model.Question, error) {
	q, err := s.Repo.FindByID(id)
	if err != nil {
		return nil, mapNotFound(err, "question")
	}
	return q, nil
}

func (s *QuestionService) Create(req QuestionRequest, userID uint) (*model.Question, error) {
	q := &model.Question{CreatedBy: userID}
	if err := s.apply(q, req); err != nil {
		return nil, err
	}
	if err := s.Repo.Create(q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *QuestionService) Update(id uint, req QuestionRequest) (*model.Question, error) {
	q, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(q, req); err != nil {
		return nil, err
	}
	if err := s.Repo.Update(q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *QuestionService) Delete(id uint) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	return s.Repo.Delete(id)
}

// apply 校验请求并写入题目
func (s *QuestionService) apply(q *model.Question, req QuestionRequest) error {
	if _, err := s.SubjectRepo.FindByID(req.SubjectID); err != nil {
		return mapNotFound(err, "subject")
	}

	points := 1
	if req.Points != nil {
		points = *req.Points
	}
	if points < 1 {
		return fmt.Errorf("points must be at least 1: %w", util.ErrInvalidQuestion)
	}

	text := strings.TrimSpace(req.QuestionText)
	if text == "" {
		return fmt.Errorf("empty question text: %w", util.ErrInvalidQuestion)
	}

	qType := model.QuestionType(req.Type)
	switch qType {
	case model.MultipleChoice:
		if len(req.Options) < 2 {
			return fmt.Errorf("multiple-choice needs at least 2 options: %w", util.ErrInvalidQuestion)
		}
		for _, o := range req.Options {
			if strings.TrimSpace(o) == "" {
				return fmt.Errorf("empty option: %w", util.ErrInvalidQuestion)
			}
		}
		if req.CorrectAnswer == nil || *req.CorrectAnswer < 0 || *req.CorrectAnswer >= len(req.Options) {
			return fmt.Errorf("correct answer out of range: %w", util.ErrInvalidQuestion)
		}
		if len(req.OptionImages) > len(req.Options) {
			return fmt.Errorf("more option images than options: %w", util.ErrInvalidQuestion)
		}
		correct := *req.CorrectAnswer
		q.Options = req.Options
		q.OptionImages = req.OptionImages
		q.CorrectAnswer = &correct
	case model.Descriptive:
		if len(req.Options) > 0 || req.CorrectAnswer != nil {
			return fmt.Errorf("descriptive question takes no options: %w", util.ErrInvalidQuestion)
		}
		q.Options = nil
		q.OptionImages = nil
		q.CorrectAnswer = nil
	default:
		return fmt.Errorf("unknown type %q: %w", req.Type, util.ErrInvalidQuestion)
	}

	q.SubjectID = req.SubjectID
	q.Type = qType
	q.QuestionText = text
	q.QuestionImage = req.QuestionImage
	q.Points = points
	return nil
}

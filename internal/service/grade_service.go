package service

import (
	"context"
	"eduassess_backend/internal/grading"
	"eduassess_backend/internal/model"
	"eduassess_backend/internal/repository"
	"eduassess_backend/internal/util"
	"eduassess_backend/pkg/logger"
	"eduassess_backend/pkg/monitoring"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type GradeRequest struct {
	SubmissionID  uint    `json:"submissionId" binding:"required"`
	QuestionID    uint    `json:"questionId" binding:"required"`
	StudentAnswer *string `json:"studentAnswer"`
	Points        *int    `json:"points" binding:"required"`
	Feedback      string  `json:"feedback" binding:"max=2000"`
}

type UpdateGradeRequest struct {
	Points   *int    `json:"points" binding:"required"`
	Feedback *string `json:"feedback" binding:"omitempty,max=2000"`
}

type GradeService struct {
	DB             *gorm.DB
	Repo           *repository.GradeRepository
	SubmissionRepo *repository.SubmissionRepository
	AssessmentRepo *repository.AssessmentRepository
	QuestionRepo   *repository.QuestionRepository
	Submissions    *SubmissionService
	Analytics      *AnalyticsService
	Gamification   *GamificationService
	now            func() time.Time
}

func NewGradeService(
	db *gorm.DB,
	repo *repository.GradeRepository,
	submissionRepo *repository.SubmissionRepository,
	assessmentRepo *repository.AssessmentRepository,
	questionRepo *repository.QuestionRepository,
	submissions *SubmissionService,
	analytics *AnalyticsService,
	gamification *GamificationService,
) *GradeService {
	return &GradeService{
		DB:             db,
		Repo:           repo,
		SubmissionRepo: submissionRepo,
		AssessmentRepo: assessmentRepo,
		QuestionRepo:   questionRepo,
		Submissions:    submissions,
		Analytics:      analytics,
		Gamification:   gamification,
		now:            time.Now,
	}
}

func (s *GradeService) Get(id uint) (*model.Grade, error) {
	g, err := s.Repo.FindByID(id)
	if err != nil {
		return nil, mapNotFound(err, "grade")
	}
	return g, nil
}

func (s *GradeService) List(filter repository.GradeFilter) ([]model.Grade, error) {
	return s.Repo.List(filter)
}

// Create 同一答卷同一题目重复评分时覆盖原记录
func (s *GradeService) Create(req GradeRequest, graderID uint) (*model.Grade, error) {
	return s.record(req.SubmissionID, req.QuestionID, *req.Points, req.StudentAnswer, &req.Feedback, graderID)
}

func (s *GradeService) Update(id uint, req UpdateGradeRequest, graderID uint) (*model.Grade, error) {
	existing, err := s.Repo.FindByID(id)
	if err != nil {
		return nil, mapNotFound(err, "grade")
	}
	answer := existing.StudentAnswer
	feedback := existing.Feedback
	if req.Feedback != nil {
		feedback = *req.Feedback
	}
	return s.record(existing.SubmissionID, existing.QuestionID, *req.Points, &answer, &feedback, graderID)
}

// record 写入评分并按全部评分记录重新计算答卷总分与状态
func (s *GradeService) record(submissionID, questionID uint, points int, answer, feedback *string, graderID uint) (*model.Grade, error) {
	engine := s.Submissions.Engine()

	// 答卷所属测评不会变化，题目在事务外加载
	current, err := s.SubmissionRepo.FindByID(submissionID)
	if err != nil {
		return nil, mapNotFound(err, "submission")
	}
	a, err := s.AssessmentRepo.FindByID(current.AssessmentID)
	if err != nil {
		return nil, mapNotFound(err, "assessment")
	}
	if !containsID(a.QuestionIDs, questionID) {
		return nil, util.ErrQuestionNotInPaper
	}
	questions, err := s.QuestionRepo.FindByIDs(a.QuestionIDs)
	if err != nil {
		return nil, err
	}
	q := findQuestion(questions, questionID)
	if q == nil {
		return nil, fmt.Errorf("question %d: %w", questionID, util.ErrNotFound)
	}
	if points < 0 || points > q.Points {
		return nil, fmt.Errorf("points %d not within 0-%d: %w", points, q.Points, util.ErrPointsOutOfRange)
	}

	var (
		grade       *model.Grade
		sub         *model.Submission
		newlyGraded bool
	)
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		subs := s.SubmissionRepo.WithTx(tx)
		locked, err := subs.FindByIDForUpdate(submissionID)
		if err != nil {
			return mapNotFound(err, "submission")
		}
		if locked.Status == model.StatusInProgress {
			return util.ErrSubmissionNotGraded
		}

		studentAnswer := ""
		if answer != nil {
			studentAnswer = *answer
		} else if answers, err := locked.AnswerMap(); err == nil {
			studentAnswer = grading.AnswerText(answers[strconv.FormatUint(uint64(questionID), 10)])
		}

		now := s.now()
		grader := graderID
		g := &model.Grade{
			SubmissionID:  submissionID,
			QuestionID:    questionID,
			StudentAnswer: studentAnswer,
			Points:        points,
			MaxPoints:     q.Points,
			GradedBy:      &grader,
			GradedAt:      now,
		}
		if feedback != nil {
			g.Feedback = *feedback
		}
		grades := s.Repo.WithTx(tx)
		if err := grades.Upsert(g); err != nil {
			return err
		}

		all, err := grades.ListBySubmission(submissionID)
		if err != nil {
			return err
		}
		score, maxScore, status := engine.Rescore(questions, all)

		wasGraded := locked.Status == model.StatusGraded
		locked.Score = &score
		locked.MaxScore = &maxScore
		locked.Status = status
		switch {
		case status == model.StatusGraded && !wasGraded:
			locked.GradedAt = &now
			newlyGraded = true
		case status != model.StatusGraded:
			locked.GradedAt = nil
		}
		if err := subs.Update(locked); err != nil {
			return err
		}

		grade = g
		sub = locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	monitoring.GradesRecorded.Inc()
	if newlyGraded {
		monitoring.SubmissionsGraded.WithLabelValues("manual").Inc()
	}
	logger.Log.Info("grade recorded",
		zap.Uint("gradeId", grade.ID),
		zap.Uint("submissionId", submissionID),
		zap.Uint("questionId", questionID),
		zap.Int("points", points),
		zap.Uint("gradedBy", graderID),
		zap.String("submissionStatus", string(sub.Status)))

	if s.Analytics != nil {
		s.Analytics.Invalidate(context.Background())
	}
	if s.Gamification != nil && sub.Status == model.StatusGraded {
		s.Gamification.OnGraded(sub)
	}
	return grade, nil
}

func containsID(ids []uint, id uint) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func findQuestion(questions []model.Question, id uint) *model.Question {
	for i := range questions {
		if questions[i].ID == id {
			return &questions[i]
		}
	}
	return nil
}

package service

import (
	"context"
	"eduassess_backend/internal/config"
	"eduassess_backend/internal/grading"
	"eduassess_backend/internal/model"
	"eduassess_backend/internal/repository"
	"eduassess_backend/internal/util"
	"eduassess_backend/pkg/logger"
	"eduassess_backend/pkg/monitoring"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	triggerStudent  = "student"
	triggerDeadline = "deadline"
)

type StartSubmissionRequest struct {
	AssessmentID uint `json:"assessmentId" binding:"required"`
}

type UpdateSubmissionRequest struct {
	Answers map[string]json.RawMessage `json:"answers"`
	Status  model.SubmissionStatus     `json:"status" binding:"omitempty,oneof=in-progress submitted"`
}

type SubmissionService struct {
	DB             *gorm.DB
	Repo           *repository.SubmissionRepository
	AssessmentRepo *repository.AssessmentRepository
	QuestionRepo   *repository.QuestionRepository
	GradeRepo      *repository.GradeRepository
	Analytics      *AnalyticsService
	Gamification   *GamificationService

	mu     sync.RWMutex
	engine *grading.Engine
	grace  time.Duration
	now    func() time.Time
}

func NewSubmissionService(
	db *gorm.DB,
	repo *repository.SubmissionRepository,
	assessmentRepo *repository.AssessmentRepository,
	questionRepo *repository.QuestionRepository,
	gradeRepo *repository.GradeRepository,
	analytics *AnalyticsService,
	gamification *GamificationService,
	cfg *config.Config,
) *SubmissionService {
	s := &SubmissionService{
		DB:             db,
		Repo:           repo,
		AssessmentRepo: assessmentRepo,
		QuestionRepo:   questionRepo,
		GradeRepo:      gradeRepo,
		Analytics:      analytics,
		Gamification:   gamification,
		now:            time.Now,
	}
	s.ApplyConfig(cfg)
	return s
}

// ApplyConfig 配置热更新时切换评分策略与宽限时间
func (s *SubmissionService) ApplyConfig(cfg *config.Config) {
	policy, err := grading.ParsePolicy(cfg.Grading.Policy)
	if err != nil {
		logger.Log.Warn("invalid grading policy, keep objective", zap.Error(err))
		policy = grading.PolicyObjective
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine = grading.NewEngine(policy)
	s.grace = time.Duration(cfg.Grading.DeadlineGraceSeconds) * time.Second
	if s.grace < 0 {
		s.grace = 0
	}
}

func (s *SubmissionService) Engine() *grading.Engine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine
}

func (s *SubmissionService) graceperiod() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.grace
}

// Deadline 没有时限时返回 false
func (s *SubmissionService) Deadline(sub *model.Submission, a *model.Assessment) (time.Time, bool) {
	if a.TimeLimit == nil {
		return time.Time{}, false
	}
	return sub.StartedAt.Add(time.Duration(*a.TimeLimit)*time.Minute + s.graceperiod()), true
}

func (s *SubmissionService) expired(sub *model.Submission, a *model.Assessment) bool {
	deadline, ok := s.Deadline(sub, a)
	return ok && s.now().After(deadline)
}

// Start 开始答题；已有进行中的答卷则直接返回
func (s *SubmissionService) Start(assessmentID, studentID uint) (*model.Submission, bool, error) {
	a, err := s.AssessmentRepo.FindByID(assessmentID)
	if err != nil {
		return nil, false, mapNotFound(err, "assessment")
	}
	if !a.IsActive {
		return nil, false, util.ErrAssessmentInactive
	}

	open, err := s.Repo.FindOpen(assessmentID, studentID)
	switch {
	case err == nil:
		if !s.expired(open, a) {
			return open, false, nil
		}
		if _, err := s.finalize(open.ID, a, nil, triggerDeadline); err != nil {
			return nil, false, err
		}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, false, err
	}

	sub := &model.Submission{
		AssessmentID: assessmentID,
		StudentID:    studentID,
		Answers:      datatypes.JSON("{}"),
		Status:       model.StatusInProgress,
		StartedAt:    s.now(),
	}
	if err := s.Repo.Create(sub); err != nil {
		return nil, false, err
	}
	logger.Log.Info("submission started",
		zap.Uint("submissionId", sub.ID),
		zap.Uint("assessmentId", assessmentID),
		zap.Uint("studentId", studentID))
	return sub, true, nil
}

// Get 学生只能查看自己的答卷
func (s *SubmissionService) Get(id uint, claims *util.Claims) (*model.Submission, error) {
	sub, err := s.Repo.FindByID(id)
	if err != nil {
		return nil, mapNotFound(err, "submission")
	}
	if !claims.IsStaff() && sub.StudentID != claims.UserID {
		return nil, util.ErrPermissionDenied
	}
	return sub, nil
}

func (s *SubmissionService) List(filter repository.SubmissionFilter, claims *util.Claims) ([]model.Submission, error) {
	if !claims.IsStaff() {
		self := claims.UserID
		filter.StudentID = &self
	}
	return s.Repo.List(filter)
}

// Update 合并作答；status=submitted 或超时后交卷并自动评分
func (s *SubmissionService) Update(id, studentID uint, req UpdateSubmissionRequest) (*model.Submission, error) {
	sub, err := s.Repo.FindByID(id)
	if err != nil {
		return nil, mapNotFound(err, "submission")
	}
	if sub.StudentID != studentID {
		return nil, util.ErrPermissionDenied
	}
	if !sub.IsOpen() {
		return nil, util.ErrSubmissionClosed
	}

	a, err := s.AssessmentRepo.FindByID(sub.AssessmentID)
	if err != nil {
		return nil, mapNotFound(err, "assessment")
	}

	merged, err := mergeAnswers(sub, a, req.Answers)
	if err != nil {
		return nil, err
	}

	if req.Status == model.StatusSubmitted {
		return s.finalize(sub.ID, a, merged, triggerStudent)
	}
	if s.expired(sub, a) {
		logger.Log.Info("submission past deadline, force submitting", zap.Uint("submissionId", sub.ID))
		return s.finalize(sub.ID, a, merged, triggerDeadline)
	}

	// 读取之后答卷可能已被交卷或超时关闭
	saved, err := s.Repo.SaveAnswers(sub.ID, merged)
	if err != nil {
		return nil, err
	}
	if !saved {
		return nil, util.ErrSubmissionClosed
	}
	sub.Answers = merged
	return sub, nil
}

// mergeAnswers 键必须是试卷中的题目ID，值为 null 表示清除作答
func mergeAnswers(sub *model.Submission, a *model.Assessment, incoming map[string]json.RawMessage) (datatypes.JSON, error) {
	current, err := sub.AnswerMap()
	if err != nil {
		return nil, fmt.Errorf("stored answers: %w", util.ErrInvalidAnswer)
	}

	inPaper := make(map[uint]bool, len(a.QuestionIDs))
	for _, id := range a.QuestionIDs {
		inPaper[id] = true
	}

	for key, raw := range incoming {
		qid, err := strconv.ParseUint(key, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("answer key %q: %w", key, util.ErrInvalidAnswer)
		}
		if !inPaper[uint(qid)] {
			return nil, fmt.Errorf("question %d: %w", qid, util.ErrQuestionNotInPaper)
		}
		if len(raw) == 0 || string(raw) == "null" {
			delete(current, key)
			continue
		}
		current[key] = raw
	}

	data, err := json.Marshal(current)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(data), nil
}

// finalize 交卷：自动评分客观题并写入评分记录
// answers 为空时沿用已保存的作答
func (s *SubmissionService) finalize(id uint, a *model.Assessment, answers datatypes.JSON, trigger string) (*model.Submission, error) {
	questions, err := s.QuestionRepo.FindByIDs(a.QuestionIDs)
	if err != nil {
		return nil, err
	}
	engine := s.Engine()

	var sub *model.Submission
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		subs := s.Repo.WithTx(tx)
		locked, err := subs.FindByIDForUpdate(id)
		if err != nil {
			return mapNotFound(err, "submission")
		}
		if !locked.IsOpen() {
			return util.ErrSubmissionClosed
		}
		if answers != nil {
			locked.Answers = answers
		}
		answerMap, err := locked.AnswerMap()
		if err != nil {
			return fmt.Errorf("stored answers: %w", util.ErrInvalidAnswer)
		}

		outcome := engine.Evaluate(questions, answerMap)
		now := s.now()
		score, maxScore := outcome.Score, outcome.MaxScore
		locked.Score = &score
		locked.MaxScore = &maxScore
		locked.Status = outcome.Status
		locked.SubmittedAt = &now
		if outcome.Status == model.StatusGraded {
			locked.GradedAt = &now
		}
		if err := subs.Update(locked); err != nil {
			return err
		}

		grades := s.GradeRepo.WithTx(tx)
		for _, item := range outcome.Items {
			if item.Type != model.MultipleChoice {
				continue
			}
			g := &model.Grade{
				SubmissionID:  locked.ID,
				QuestionID:    item.QuestionID,
				StudentAnswer: item.StudentAnswer,
				Points:        item.Points,
				MaxPoints:     item.MaxPoints,
				Feedback:      util.AutoGradeFeedback,
				GradedAt:      now,
			}
			if err := grades.Upsert(g); err != nil {
				return err
			}
		}
		sub = locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	monitoring.SubmissionsSubmitted.WithLabelValues(trigger).Inc()
	if sub.Status == model.StatusGraded {
		monitoring.SubmissionsGraded.WithLabelValues("auto").Inc()
	}
	logger.Log.Info("submission submitted",
		zap.Uint("submissionId", sub.ID),
		zap.Uint("studentId", sub.StudentID),
		zap.String("trigger", trigger),
		zap.String("policy", string(engine.Policy())),
		zap.Int("score", *sub.Score),
		zap.Int("maxScore", *sub.MaxScore),
		zap.String("status", string(sub.Status)))

	if s.Analytics != nil {
		s.Analytics.Invalidate(context.Background())
	}
	if s.Gamification != nil {
		s.Gamification.OnSubmitted(sub)
	}
	return sub, nil
}

// SweepExpired 将超时仍未交卷的答卷自动交卷，返回处理数量
func (s *SubmissionService) SweepExpired() (int, error) {
	candidates, err := s.Repo.ListTimedInProgress()
	if err != nil {
		return 0, err
	}

	assessments := make(map[uint]*model.Assessment)
	swept := 0
	for i := range candidates {
		sub := &candidates[i]
		a, ok := assessments[sub.AssessmentID]
		if !ok {
			a, err = s.AssessmentRepo.FindByID(sub.AssessmentID)
			if err != nil {
				logger.Log.Warn("sweep: load assessment failed", zap.Uint("assessmentId", sub.AssessmentID), zap.Error(err))
				continue
			}
			assessments[sub.AssessmentID] = a
		}
		if !s.expired(sub, a) {
			continue
		}
		if _, err := s.finalize(sub.ID, a, nil, triggerDeadline); err != nil {
			if errors.Is(err, util.ErrSubmissionClosed) {
				continue
			}
			logger.Log.Error("sweep: finalize failed", zap.Uint("submissionId", sub.ID), zap.Error(err))
			continue
		}
		swept++
	}
	return swept, nil
}

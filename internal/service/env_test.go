package service

import (
	"eduassess_backend/internal/config"
	"eduassess_backend/internal/model"
	"eduassess_backend/internal/repository"
	"eduassess_backend/pkg/cache"
	"eduassess_backend/pkg/database"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testEnv struct {
	DB           *gorm.DB
	Cfg          *config.Config
	Cache        cache.Cache
	Users        *repository.UserRepository
	Auth         *AuthService
	Subjects     *SubjectService
	Questions    *QuestionService
	Assessments  *AssessmentService
	Submissions  *SubmissionService
	Grades       *GradeService
	Analytics    *AnalyticsService
	Gamification *GamificationService
}

func testConfig() *config.Config {
	return &config.Config{
		Server:       config.ServerConfig{Mode: "test"},
		JWT:          config.JWTConfig{Secret: "test-secret", ExpireTime: time.Hour},
		Storage:      config.StorageConfig{Type: "local", MaxUploadMB: 1},
		Grading:      config.GradingConfig{Policy: "objective"},
		Analytics:    config.AnalyticsConfig{PassScore: 60, CacheTTLSeconds: 60},
		Gamification: config.GamificationConfig{SubmitPoints: 10, PerfectPoints: 20},
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())
	db, err := database.InitDB(&config.DatabaseConfig{Driver: "sqlite", Path: dsn}, false)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	cfg := testConfig()
	c := cache.NewMemoryCache()

	userRepo := repository.NewUserRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	assessmentRepo := repository.NewAssessmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	gradeRepo := repository.NewGradeRepository(db)
	gamificationRepo := repository.NewGamificationRepository(db)

	env := &testEnv{DB: db, Cfg: cfg, Cache: c, Users: userRepo}
	env.Auth = NewAuthService(userRepo, c, cfg)
	env.Subjects = NewSubjectService(subjectRepo)
	env.Questions = NewQuestionService(questionRepo, subjectRepo)
	env.Assessments = NewAssessmentService(assessmentRepo, questionRepo, subjectRepo)
	env.Analytics = NewAnalyticsService(submissionRepo, subjectRepo, questionRepo, assessmentRepo, userRepo, c, cfg)
	env.Gamification = NewGamificationService(db, gamificationRepo, userRepo, submissionRepo, cfg)
	env.Submissions = NewSubmissionService(db, submissionRepo, assessmentRepo, questionRepo, gradeRepo, env.Analytics, env.Gamification, cfg)
	env.Grades = NewGradeService(db, gradeRepo, submissionRepo, assessmentRepo, questionRepo, env.Submissions, env.Analytics, env.Gamification)

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return env
}

func intPtr(v int) *int { return &v }

func boolPtr(v bool) *bool { return &v }

func (e *testEnv) instructor(t *testing.T) *model.User {
	t.Helper()
	u := &model.User{Username: "teacher-" + uuid.NewString()[:8], Name: "강사", Role: model.Instructor}
	require.NoError(t, e.Users.Create(u))
	return u
}

func (e *testEnv) student(t *testing.T, name string) *model.User {
	t.Helper()
	res, err := e.Auth.StudentLogin(name, "050312")
	require.NoError(t, err)
	u, err := e.Users.FindByID(res.StudentID)
	require.NoError(t, err)
	return u
}

func (e *testEnv) subject(t *testing.T, code string, owner uint) *model.Subject {
	t.Helper()
	s, err := e.Subjects.Create(SubjectRequest{Name: "수학 " + code, Code: code}, owner)
	require.NoError(t, err)
	return s
}

func (e *testEnv) choice(t *testing.T, subjectID, owner uint, correct, points int) *model.Question {
	t.Helper()
	q, err := e.Questions.Create(QuestionRequest{
		SubjectID:     subjectID,
		Type:          string(model.MultipleChoice),
		QuestionText:  "1 + 1 = ?",
		Options:       []string{"1", "2", "3", "4"},
		CorrectAnswer: intPtr(correct),
		Points:        intPtr(points),
	}, owner)
	require.NoError(t, err)
	return q
}

func (e *testEnv) essay(t *testing.T, subjectID, owner uint, points int) *model.Question {
	t.Helper()
	q, err := e.Questions.Create(QuestionRequest{
		SubjectID:    subjectID,
		Type:         string(model.Descriptive),
		QuestionText: "피타고라스 정리를 설명하시오.",
		Points:       intPtr(points),
	}, owner)
	require.NoError(t, err)
	return q
}

func (e *testEnv) assessment(t *testing.T, subjectID, owner uint, timeLimit *int, questions ...*model.Question) *model.Assessment {
	t.Helper()
	ids := make([]uint, 0, len(questions))
	for _, q := range questions {
		ids = append(ids, q.ID)
	}
	a, err := e.Assessments.Create(AssessmentRequest{
		SubjectID:   subjectID,
		Title:       "중간 평가",
		QuestionIDs: ids,
		TimeLimit:   timeLimit,
	}, owner)
	require.NoError(t, err)
	return a
}

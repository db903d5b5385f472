package service

import (
	"context"
	"eduassess_backend/internal/config"
	"eduassess_backend/internal/grading"
	"eduassess_backend/internal/model"
	"eduassess_backend/internal/repository"
	"eduassess_backend/internal/util"
	"eduassess_backend/pkg/cache"
	"eduassess_backend/pkg/logger"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

const (
	analyticsKeyPrefix = "analytics:"
	statsCacheKey      = analyticsKeyPrefix + "stats"
)

func reportCacheKey(subjectID *uint) string {
	if subjectID == nil {
		return analyticsKeyPrefix + "report:all"
	}
	return analyticsKeyPrefix + "report:" + strconv.FormatUint(uint64(*subjectID), 10)
}

type AnalyticsService struct {
	SubmissionRepo *repository.SubmissionRepository
	SubjectRepo    *repository.SubjectRepository
	QuestionRepo   *repository.QuestionRepository
	AssessmentRepo *repository.AssessmentRepository
	UserRepo       *repository.UserRepository
	Cache          cache.Cache

	mu        sync.RWMutex
	passScore int
	ttl       time.Duration

	// generation 每次失效加一，读库期间发生失效的结果不写缓存
	generation atomic.Uint64
}

func NewAnalyticsService(
	submissionRepo *repository.SubmissionRepository,
	subjectRepo *repository.SubjectRepository,
	questionRepo *repository.QuestionRepository,
	assessmentRepo *repository.AssessmentRepository,
	userRepo *repository.UserRepository,
	c cache.Cache,
	cfg *config.Config,
) *AnalyticsService {
	s := &AnalyticsService{
		SubmissionRepo: submissionRepo,
		SubjectRepo:    subjectRepo,
		QuestionRepo:   questionRepo,
		AssessmentRepo: assessmentRepo,
		UserRepo:       userRepo,
		Cache:          c,
	}
	s.ApplyConfig(cfg)
	return s
}

// ApplyConfig 配置热更新时调用
func (s *AnalyticsService) ApplyConfig(cfg *config.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.passScore = cfg.Analytics.PassScore
	s.ttl = time.Duration(cfg.Analytics.CacheTTLSeconds) * time.Second
}

func (s *AnalyticsService) settings() (int, time.Duration) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.passScore, s.ttl
}

// Invalidate 答卷或评分变化后清除统计缓存
func (s *AnalyticsService) Invalidate(ctx context.Context) {
	s.generation.Add(1)
	if err := s.Cache.DeletePrefix(ctx, analyticsKeyPrefix); err != nil {
		logger.Log.Warn("invalidate analytics cache failed", zap.Error(err))
	}
}

func (s *AnalyticsService) cached(ctx context.Context, key string, dst interface{}) bool {
	val, ok, err := s.Cache.Get(ctx, key)
	if err != nil {
		logger.Log.Warn("read analytics cache failed", zap.String("key", key), zap.Error(err))
		return false
	}
	if !ok {
		return false
	}
	return json.Unmarshal([]byte(val), dst) == nil
}

// store 写入缓存；gen 为读库前的代数，期间已失效则不写
func (s *AnalyticsService) store(ctx context.Context, key string, v interface{}, ttl time.Duration, gen uint64) {
	if ttl <= 0 || s.generation.Load() != gen {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.Cache.Set(ctx, key, string(data), ttl); err != nil {
		logger.Log.Warn("write analytics cache failed", zap.String("key", key), zap.Error(err))
		return
	}
	// 写入与失效交错时删除刚写入的旧结果
	if s.generation.Load() != gen {
		if err := s.Cache.Delete(ctx, key); err != nil {
			logger.Log.Warn("drop stale analytics cache failed", zap.String("key", key), zap.Error(err))
		}
	}
}

func normalizedRow(r repository.ScoreRow) int {
	score, maxScore := 0, 0
	if r.Score != nil {
		score = *r.Score
	}
	if r.MaxScore != nil {
		maxScore = *r.MaxScore
	}
	return grading.Normalize(score, maxScore)
}

// Report 成绩分析：汇总、分数段分布、各科目统计
func (s *AnalyticsService) Report(ctx context.Context, subjectID *uint) (*model.AnalyticsReport, error) {
	passScore, ttl := s.settings()
	key := reportCacheKey(subjectID)

	var report model.AnalyticsReport
	if s.cached(ctx, key, &report) {
		return &report, nil
	}
	gen := s.generation.Load()

	if subjectID != nil {
		if _, err := s.SubjectRepo.FindByID(*subjectID); err != nil {
			return nil, mapNotFound(err, "subject")
		}
	}

	rows, err := s.SubmissionRepo.ListScoreRows(nil)
	if err != nil {
		return nil, err
	}
	subjects, err := s.SubjectRepo.List(true)
	if err != nil {
		return nil, err
	}

	var filtered []int
	perSubject := make(map[uint][]repository.ScoreRow)
	for _, r := range rows {
		perSubject[r.SubjectID] = append(perSubject[r.SubjectID], r)
		if r.Status != model.StatusGraded {
			continue
		}
		if subjectID == nil || r.SubjectID == *subjectID {
			filtered = append(filtered, normalizedRow(r))
		}
	}

	report = model.AnalyticsReport{
		SubjectID:    subjectID,
		PassScore:    passScore,
		Summary:      grading.Summarize(filtered, passScore),
		Distribution: grading.Histogram(filtered),
		Subjects:     make([]model.SubjectStat, 0, len(subjects)),
	}

	for _, sub := range subjects {
		stat := model.SubjectStat{SubjectID: sub.ID, Name: sub.Name}
		var graded []int
		for _, r := range perSubject[sub.ID] {
			stat.TotalSubmissions++
			if r.Status == model.StatusGraded {
				graded = append(graded, normalizedRow(r))
			}
		}
		summary := grading.Summarize(graded, passScore)
		stat.GradedSubmissions = summary.TotalGraded
		stat.AverageScore = summary.AverageScore
		stat.PassRate = summary.PassRate
		report.Subjects = append(report.Subjects, stat)
	}

	s.store(ctx, key, &report, ttl, gen)
	return &report, nil
}

// Stats 教师首页统计
func (s *AnalyticsService) Stats(ctx context.Context) (*model.DashboardStats, error) {
	_, ttl := s.settings()

	var stats model.DashboardStats
	if s.cached(ctx, statsCacheKey, &stats) {
		return &stats, nil
	}
	gen := s.generation.Load()

	var err error
	if stats.TotalQuestions, err = s.QuestionRepo.Count(); err != nil {
		return nil, err
	}
	if stats.TotalAssessments, err = s.AssessmentRepo.Count(false); err != nil {
		return nil, err
	}
	if stats.ActiveAssessments, err = s.AssessmentRepo.Count(true); err != nil {
		return nil, err
	}
	if stats.TotalStudents, err = s.UserRepo.CountByRole(model.Student); err != nil {
		return nil, err
	}
	if stats.PendingSubmissions, err = s.SubmissionRepo.CountByStatus(model.StatusSubmitted); err != nil {
		return nil, err
	}

	rows, err := s.SubmissionRepo.ListScoreRows(nil)
	if err != nil {
		return nil, err
	}
	var graded []int
	for _, r := range rows {
		if r.Status == model.StatusGraded {
			graded = append(graded, normalizedRow(r))
		}
	}
	stats.GradedSubmissions = int64(len(graded))
	stats.AverageScore = grading.Summarize(graded, grading.DefaultPassScore).AverageScore

	s.store(ctx, statsCacheKey, &stats, ttl, gen)
	return &stats, nil
}

// ExportAssessmentCSV 导出测评答卷成绩（带 BOM 便于 Excel 识别 UTF-8）
func (s *AnalyticsService) ExportAssessmentCSV(assessmentID uint, w io.Writer) (string, error) {
	a, err := s.AssessmentRepo.FindByID(assessmentID)
	if err != nil {
		return "", mapNotFound(err, "assessment")
	}
	subs, err := s.SubmissionRepo.List(repository.SubmissionFilter{AssessmentID: &assessmentID})
	if err != nil {
		return "", err
	}

	if _, err := io.WriteString(w, "\xEF\xBB\xBF"); err != nil {
		return "", err
	}
	cw := csv.NewWriter(w)
	header := []string{"제출ID", "학생ID", "이름", "아이디", "상태", "점수", "만점", "환산점수", "시작시간", "제출시간", "채점시간"}
	if err := cw.Write(header); err != nil {
		return "", err
	}

	for i := len(subs) - 1; i >= 0; i-- {
		sub := subs[i]
		name, username := "", ""
		if sub.Student != nil {
			name, username = sub.Student.Name, sub.Student.Username
		}
		score, maxScore, normalized := "", "", ""
		if sub.Score != nil && sub.MaxScore != nil {
			score = strconv.Itoa(*sub.Score)
			maxScore = strconv.Itoa(*sub.MaxScore)
			normalized = strconv.Itoa(grading.Normalize(*sub.Score, *sub.MaxScore))
		}
		record := []string{
			strconv.FormatUint(uint64(sub.ID), 10),
			strconv.FormatUint(uint64(sub.StudentID), 10),
			name,
			username,
			string(sub.Status),
			score,
			maxScore,
			normalized,
			sub.StartedAt.Format(util.TimeFormat),
			formatTimePtr(sub.SubmittedAt),
			formatTimePtr(sub.GradedAt),
		}
		if err := cw.Write(record); err != nil {
			return "", err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", err
	}

	return fmt.Sprintf("assessment_%d_%s.csv", a.ID, time.Now().Format("20060102")), nil
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(util.TimeFormat)
}

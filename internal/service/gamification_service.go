package service

import (
	"eduassess_backend/internal/config"
	"eduassess_backend/internal/grading"
	"eduassess_backend/internal/model"
	"eduassess_backend/internal/repository"
	"eduassess_backend/internal/util"
	"eduassess_backend/pkg/logger"
	"eduassess_backend/pkg/monitoring"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const pointsPerLevel = 100

type BadgeRarity string

const (
	RarityCommon    BadgeRarity = "common"
	RarityRare      BadgeRarity = "rare"
	RarityEpic      BadgeRarity = "epic"
	RarityLegendary BadgeRarity = "legendary"
)

const (
	BadgeFirstSubmission = "first-submission"
	BadgePerfectScore    = "perfect-score"
)

type BadgeDef struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Icon        string      `json:"icon"`
	Rarity      BadgeRarity `json:"rarity"`
}

// 成就进度统计
type progressStats struct {
	Submissions int
	Perfect     int
	Streak      int
	Points      int
}

type AchievementDef struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"` // quiz, study, social, bonus, streak
	Target      int    `json:"target"`
	Points      int    `json:"points"`
	progress    func(progressStats) int
}

var badgeCatalog = []BadgeDef{
	{ID: BadgeFirstSubmission, Name: "첫 제출", Description: "처음으로 평가를 제출했습니다", Icon: "star", Rarity: RarityCommon},
	{ID: BadgePerfectScore, Name: "만점왕", Description: "평가에서 100점을 받았습니다", Icon: "trophy", Rarity: RarityRare},
	{ID: "streak-master", Name: "꾸준함의 달인", Description: "7일 연속으로 학습했습니다", Icon: "flame", Rarity: RarityEpic},
	{ID: "point-collector", Name: "포인트 수집가", Description: "1000 포인트를 모았습니다", Icon: "crown", Rarity: RarityLegendary},
	{ID: "early-bird", Name: "얼리버드", Description: "오전 7시 이전에 학습했습니다", Icon: "sunrise", Rarity: RarityCommon},
}

var achievementCatalog = []AchievementDef{
	{ID: "first-quiz", Name: "첫 걸음", Description: "평가 1회 제출", Category: "quiz", Target: 1, Points: 10,
		progress: func(s progressStats) int { return s.Submissions }},
	{ID: "quiz-10", Name: "도전자", Description: "평가 10회 제출", Category: "quiz", Target: 10, Points: 50,
		progress: func(s progressStats) int { return s.Submissions }},
	{ID: "perfect-3", Name: "완벽주의자", Description: "만점 3회 달성", Category: "bonus", Target: 3, Points: 50,
		progress: func(s progressStats) int { return s.Perfect }},
	{ID: "streak-3", Name: "작심삼일 극복", Description: "3일 연속 학습", Category: "streak", Target: 3, Points: 30,
		progress: func(s progressStats) int { return s.Streak }},
	{ID: "streak-7", Name: "일주일 개근", Description: "7일 연속 학습", Category: "streak", Target: 7, Points: 70,
		progress: func(s progressStats) int { return s.Streak }},
	{ID: "points-500", Name: "성실한 학습자", Description: "500 포인트 달성", Category: "study", Target: 500, Points: 0,
		progress: func(s progressStats) int { return s.Points }},
}

func findBadge(id string) (BadgeDef, bool) {
	for _, b := range badgeCatalog {
		if b.ID == id {
			return b, true
		}
	}
	return BadgeDef{}, false
}

type BadgeView struct {
	BadgeDef
	EarnedAt time.Time `json:"earnedAt"`
}

type AchievementView struct {
	AchievementDef
	Progress  int  `json:"progress"`
	Completed bool `json:"completed"`
}

type GamificationProfile struct {
	UserID            uint              `json:"userId"`
	TotalPoints       int               `json:"totalPoints"`
	Level             int               `json:"level"`
	PointsToNextLevel int               `json:"pointsToNextLevel"`
	Streak            int               `json:"streak"`
	Badges            []BadgeView       `json:"badges"`
	Achievements      []AchievementView `json:"achievements"`
}

// Level 每 100 分升一级，从 1 级开始
func Level(points int) int {
	if points < 0 {
		points = 0
	}
	return points/pointsPerLevel + 1
}

func PointsToNextLevel(points int) int {
	return Level(points)*pointsPerLevel - points
}

type GamificationService struct {
	DB             *gorm.DB
	Repo           *repository.GamificationRepository
	UserRepo       *repository.UserRepository
	SubmissionRepo *repository.SubmissionRepository
	Cfg            *config.Config
	now            func() time.Time
}

func NewGamificationService(db *gorm.DB, repo *repository.GamificationRepository, userRepo *repository.UserRepository, submissionRepo *repository.SubmissionRepository, cfg *config.Config) *GamificationService {
	return &GamificationService{
		DB:             db,
		Repo:           repo,
		UserRepo:       userRepo,
		SubmissionRepo: submissionRepo,
		Cfg:            cfg,
		now:            time.Now,
	}
}

func (s *GamificationService) Profile(userID uint) (*GamificationProfile, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, mapNotFound(err, "user")
	}

	earned, err := s.Repo.ListBadges(userID)
	if err != nil {
		return nil, err
	}
	badges := make([]BadgeView, 0, len(earned))
	for _, b := range earned {
		def, ok := findBadge(b.BadgeID)
		if !ok {
			continue
		}
		badges = append(badges, BadgeView{BadgeDef: def, EarnedAt: b.EarnedAt})
	}

	achievements, err := s.achievementViews(user)
	if err != nil {
		return nil, err
	}

	return &GamificationProfile{
		UserID:            user.ID,
		TotalPoints:       user.Points,
		Level:             Level(user.Points),
		PointsToNextLevel: PointsToNextLevel(user.Points),
		Streak:            user.Streak,
		Badges:            badges,
		Achievements:      achievements,
	}, nil
}

// AwardPoints 积分变动并记录流水，积分不能小于 0
func (s *GamificationService) AwardPoints(userID uint, points int, reason string) (*GamificationProfile, error) {
	if err := s.addPoints(userID, points, reason); err != nil {
		return nil, err
	}
	return s.Profile(userID)
}

func (s *GamificationService) addPoints(userID uint, points int, reason string) error {
	if points == 0 {
		return nil
	}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		users := s.UserRepo.WithTx(tx)
		user, err := users.FindByID(userID)
		if err != nil {
			return mapNotFound(err, "user")
		}
		if user.Points+points < 0 {
			return fmt.Errorf("user %d has %d points: %w", userID, user.Points, util.ErrPointsOutOfRange)
		}
		if err := users.AddPoints(userID, points); err != nil {
			return err
		}
		return s.Repo.WithTx(tx).CreatePointLog(&model.PointLog{UserID: userID, Points: points, Reason: reason})
	})
	if err != nil {
		return err
	}

	if points > 0 {
		monitoring.PointsAwarded.Add(float64(points))
	}
	logger.Log.Info("points awarded",
		zap.Uint("userId", userID),
		zap.Int("points", points),
		zap.String("reason", reason))
	return nil
}

// EarnBadge 重复获得同一徽章时不报错
func (s *GamificationService) EarnBadge(userID uint, badgeID string) (*GamificationProfile, error) {
	if _, ok := findBadge(badgeID); !ok {
		return nil, util.ErrUnknownBadge
	}
	if _, err := s.UserRepo.FindByID(userID); err != nil {
		return nil, mapNotFound(err, "user")
	}
	if _, err := s.Repo.AddBadge(&model.UserBadge{UserID: userID, BadgeID: badgeID, EarnedAt: s.now()}); err != nil {
		return nil, err
	}
	return s.Profile(userID)
}

// CheckAchievements 返回本次新完成的成就，奖励积分只发放一次
func (s *GamificationService) CheckAchievements(userID uint) ([]AchievementView, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, mapNotFound(err, "user")
	}
	views, err := s.achievementViews(user)
	if err != nil {
		return nil, err
	}
	done, err := s.completedSet(userID)
	if err != nil {
		return nil, err
	}

	newly := []AchievementView{}
	for _, v := range views {
		if !v.Completed || done[v.ID] {
			continue
		}
		created, err := s.Repo.AddAchievement(&model.UserAchievement{UserID: userID, AchievementID: v.ID, CompletedAt: s.now()})
		if err != nil {
			return nil, err
		}
		if !created {
			continue
		}
		if v.Points > 0 {
			if err := s.addPoints(userID, v.Points, "업적 달성: "+v.Name); err != nil {
				return nil, err
			}
		}
		newly = append(newly, v)
	}
	return newly, nil
}

func (s *GamificationService) completedSet(userID uint) (map[string]bool, error) {
	rows, err := s.Repo.ListAchievements(userID)
	if err != nil {
		return nil, err
	}
	done := make(map[string]bool, len(rows))
	for _, r := range rows {
		done[r.AchievementID] = true
	}
	return done, nil
}

func (s *GamificationService) achievementViews(user *model.User) ([]AchievementView, error) {
	stats, err := s.stats(user)
	if err != nil {
		return nil, err
	}
	done, err := s.completedSet(user.ID)
	if err != nil {
		return nil, err
	}

	views := make([]AchievementView, 0, len(achievementCatalog))
	for _, def := range achievementCatalog {
		progress := def.progress(stats)
		if progress > def.Target {
			progress = def.Target
		}
		views = append(views, AchievementView{
			AchievementDef: def,
			Progress:       progress,
			Completed:      done[def.ID] || progress >= def.Target,
		})
	}
	return views, nil
}

func (s *GamificationService) stats(user *model.User) (progressStats, error) {
	st := progressStats{Streak: user.Streak, Points: user.Points}

	finished, err := s.SubmissionRepo.CountFinishedByStudent(user.ID)
	if err != nil {
		return st, err
	}
	st.Submissions = int(finished)

	graded, err := s.SubmissionRepo.ListGradedByStudent(user.ID)
	if err != nil {
		return st, err
	}
	for _, sub := range graded {
		if sub.Score != nil && sub.MaxScore != nil && grading.Normalize(*sub.Score, *sub.MaxScore) == 100 {
			st.Perfect++
		}
	}
	return st, nil
}

// OnSubmitted 交卷奖励：提交积分、连续学习天数、首次提交徽章
func (s *GamificationService) OnSubmitted(sub *model.Submission) {
	log := logger.Log.With(zap.Uint("submissionId", sub.ID), zap.Uint("studentId", sub.StudentID))

	if err := s.touchStreak(sub.StudentID); err != nil {
		log.Warn("update streak failed", zap.Error(err))
	}
	if s.Cfg.Gamification.SubmitPoints > 0 {
		if err := s.addPoints(sub.StudentID, s.Cfg.Gamification.SubmitPoints, fmt.Sprintf("답안 제출 #%d", sub.ID)); err != nil {
			log.Warn("award submit points failed", zap.Error(err))
		}
	}
	if _, err := s.Repo.AddBadge(&model.UserBadge{UserID: sub.StudentID, BadgeID: BadgeFirstSubmission, EarnedAt: s.now()}); err != nil {
		log.Warn("award first submission badge failed", zap.Error(err))
	}
	if sub.Status == model.StatusGraded {
		s.OnGraded(sub)
	}
}

// OnGraded 百分制满分时发放满分奖励，每份答卷只发一次
func (s *GamificationService) OnGraded(sub *model.Submission) {
	if sub.Score == nil || sub.MaxScore == nil || grading.Normalize(*sub.Score, *sub.MaxScore) != 100 {
		return
	}
	log := logger.Log.With(zap.Uint("submissionId", sub.ID), zap.Uint("studentId", sub.StudentID))

	reason := fmt.Sprintf("만점 달성 #%d", sub.ID)
	awarded, err := s.Repo.HasPointLog(sub.StudentID, reason)
	if err != nil {
		log.Warn("check perfect reward failed", zap.Error(err))
		return
	}
	if !awarded && s.Cfg.Gamification.PerfectPoints > 0 {
		if err := s.addPoints(sub.StudentID, s.Cfg.Gamification.PerfectPoints, reason); err != nil {
			log.Warn("award perfect points failed", zap.Error(err))
		}
	}
	if _, err := s.Repo.AddBadge(&model.UserBadge{UserID: sub.StudentID, BadgeID: BadgePerfectScore, EarnedAt: s.now()}); err != nil {
		log.Warn("award perfect badge failed", zap.Error(err))
	}
}

// touchStreak 昨天活跃则连续天数加一，否则重置为 1
func (s *GamificationService) touchStreak(userID uint) error {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return err
	}
	now := s.now()
	today := now.Format(util.DateFormat)
	if user.LastActiveDate == today {
		return nil
	}
	yesterday := now.AddDate(0, 0, -1).Format(util.DateFormat)
	streak := 1
	if user.LastActiveDate == yesterday {
		streak = user.Streak + 1
	}
	return s.UserRepo.UpdateFields(userID, map[string]interface{}{
		"streak":           streak,
		"last_active_date": today,
	})
}

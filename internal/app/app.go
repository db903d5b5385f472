package app

import (
	"context"
	"eduassess_backend/internal/config"
	"eduassess_backend/internal/controller"
	"eduassess_backend/internal/middleware"
	"eduassess_backend/internal/repository"
	"eduassess_backend/internal/service"
	"eduassess_backend/pkg/cache"
	"eduassess_backend/pkg/database"
	"eduassess_backend/pkg/logger"
	"eduassess_backend/pkg/monitoring"
	"eduassess_backend/pkg/security"
	"eduassess_backend/pkg/tracing"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config *config.Config
	Router *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client
	Cache  cache.Cache

	services        *services
	tracer          *sdktrace.TracerProvider
	stopSweeper     context.CancelFunc
	mu              sync.Mutex
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user         *repository.UserRepository
	subject      *repository.SubjectRepository
	question     *repository.QuestionRepository
	assessment   *repository.AssessmentRepository
	submission   *repository.SubmissionRepository
	grade        *repository.GradeRepository
	gamification *repository.GamificationRepository
}

type services struct {
	auth         *service.AuthService
	storage      *service.StorageService
	subject      *service.SubjectService
	question     *service.QuestionService
	assessment   *service.AssessmentService
	submission   *service.SubmissionService
	grade        *service.GradeService
	analytics    *service.AnalyticsService
	gamification *service.GamificationService
}

type controllers struct {
	auth         *controller.AuthController
	subject      *controller.SubjectController
	question     *controller.QuestionController
	assessment   *controller.AssessmentController
	submission   *controller.SubmissionController
	grade        *controller.GradeController
	analytics    *controller.AnalyticsController
	gamification *controller.GamificationController
	upload       *controller.UploadController
	health       *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:         repository.NewUserRepository(db),
		subject:      repository.NewSubjectRepository(db),
		question:     repository.NewQuestionRepository(db),
		assessment:   repository.NewAssessmentRepository(db),
		submission:   repository.NewSubmissionRepository(db),
		grade:        repository.NewGradeRepository(db),
		gamification: repository.NewGamificationRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, a.Cache, cfg)
	s.subject = service.NewSubjectService(repos.subject)
	s.question = service.NewQuestionService(repos.question, repos.subject)
	s.assessment = service.NewAssessmentService(repos.assessment, repos.question, repos.subject)

	s.analytics = service.NewAnalyticsService(
		repos.submission,
		repos.subject,
		repos.question,
		repos.assessment,
		repos.user,
		a.Cache,
		cfg,
	)
	s.gamification = service.NewGamificationService(db, repos.gamification, repos.user, repos.submission, cfg)

	s.submission = service.NewSubmissionService(
		db,
		repos.submission,
		repos.assessment,
		repos.question,
		repos.grade,
		s.analytics,
		s.gamification,
		cfg,
	)
	s.grade = service.NewGradeService(
		db,
		repos.grade,
		repos.submission,
		repos.assessment,
		repos.question,
		s.submission,
		s.analytics,
		s.gamification,
	)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:         controller.NewAuthController(s.auth),
		subject:      controller.NewSubjectController(s.subject),
		question:     controller.NewQuestionController(s.question),
		assessment:   controller.NewAssessmentController(s.assessment, s.analytics),
		submission:   controller.NewSubmissionController(s.submission),
		grade:        controller.NewGradeController(s.grade),
		analytics:    controller.NewAnalyticsController(s.analytics),
		gamification: controller.NewGamificationController(s.gamification),
		upload:       controller.NewUploadController(s.storage),
		health:       controller.NewHealthController(db, a.Cache),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	limiter := security.NewLimiter(cfg.RateLimit.MaxRequests, rateWindow(cfg))
	router.Use(limiter.Handler())
	a.RegisterConfigCallback(func(c *config.Config) {
		limiter.Reset(c.RateLimit.MaxRequests, rateWindow(c))
	})

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func rateWindow(cfg *config.Config) time.Duration {
	return time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
}

// startBackgroundTasks 定时关闭已超时的答卷
func (a *App) startBackgroundTasks(s *services, cfg *config.Config) {
	interval := time.Duration(cfg.Grading.SweepIntervalSeconds) * time.Second
	if interval <= 0 {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	a.stopSweeper = cancel

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := s.submission.SweepExpired()
				if err != nil {
					logger.Log.Error("expired submission sweep error", zap.Error(err))
					continue
				}
				if n > 0 {
					logger.Log.Info("expired submissions finalized", zap.Int("count", n))
				}
			}
		}
	}()
}

// shouldMigrate release 模式下默认不迁移，sqlite 始终迁移
func shouldMigrate(cfg *config.Config) bool {
	return cfg.ForceMigrate || cfg.Server.Mode != "release" || cfg.Database.Driver == "sqlite"
}

// New 组装应用，失败时返回错误
func New(cfg *config.Config) (*App, error) {
	gin.SetMode(cfg.Server.Mode)

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode == "debug")
	if err != nil {
		return nil, err
	}

	if shouldMigrate(cfg) {
		if err := database.Migrate(db); err != nil {
			return nil, err
		}
		if err := database.Seed(db); err != nil {
			return nil, err
		}
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		return nil, err
	}

	if err := middleware.RegisterValidators(); err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
		Cache:  cache.New(rdb),
	}

	if cfg.MigrateOnly {
		return app, nil
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, db)
	app.services = services
	controllers := app.initControllers(services, db)

	// 热更新评分策略与统计参数
	app.RegisterConfigCallback(services.submission.ApplyConfig)
	app.RegisterConfigCallback(services.analytics.ApplyConfig)

	// 监控初始化
	monitoring.Init()

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("eduassess-backend", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Error("Failed to initialize tracing", zap.Error(err))
		} else {
			app.tracer = tp
		}
	}

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, cfg)

	return app, nil
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	app, err := New(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to initialize application", zap.Error(err))
		log.Fatalf("Failed to initialize application: %v", err)
	}
	return app
}

// RegisterConfigCallback 配置文件变更后依次调用
func (a *App) RegisterConfigCallback(fn func(*config.Config)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.configCallbacks = append(a.configCallbacks, fn)
}

func (a *App) ReloadConfig(cfg *config.Config) {
	a.mu.Lock()
	callbacks := append([]func(*config.Config){}, a.configCallbacks...)
	a.mu.Unlock()

	for _, fn := range callbacks {
		fn(cfg)
	}
	logger.Log.Info("Configuration reloaded",
		zap.String("grading_policy", cfg.Grading.Policy),
		zap.Int("pass_score", cfg.Analytics.PassScore))
}

func (a *App) Run() {
	a.startBackgroundTasks(a.services, a.Config)

	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		logger.Log.Info("Server starting", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	a.Close(ctx)
	log.Println("Server exiting")
}

// Close 释放后台任务与外部连接
func (a *App) Close(ctx context.Context) {
	if a.stopSweeper != nil {
		a.stopSweeper()
	}
	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		sqlDB.Close()
	}
}

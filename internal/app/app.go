package app

import (
	"code_practice_backend/internal/config"
	"code_practice_backend/internal/controller"
	"code_practice_backend/internal/repository"
	"code_practice_backend/internal/service"
	"code_practice_backend/pkg/database"
	"code_practice_backend/pkg/logger"
	"code_practice_backend/pkg/monitoring"
	"code_practice_backend/pkg/security"
	"code_practice_backend/pkg/tracing"
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config *config.Config
	Router *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client
}

type repositories struct {
	codingProblem *repository.CodingProblemRepository
	mcqQuestion   *repository.MCQQuestionRepository
	progress      *repository.ProgressRepository
	achievement   *repository.AchievementRepository
	discussion    *repository.DiscussionRepository
}

type services struct {
	problem     *service.ProblemService
	evaluation  *service.EvaluationService
	mcq         *service.MCQService
	achievement *service.AchievementService
	discussion  *service.DiscussionService
}

type controllers struct {
	problem     *controller.ProblemController
	submission  *controller.SubmissionController
	mcq         *controller.MCQController
	achievement *controller.AchievementController
	discussion  *controller.DiscussionController
	health      *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client) *repositories {
	return &repositories{
		codingProblem: repository.NewCodingProblemRepository(db, rdb),
		mcqQuestion:   repository.NewMCQQuestionRepository(db),
		progress:      repository.NewProgressRepository(db),
		achievement:   repository.NewAchievementRepository(db),
		discussion:    repository.NewDiscussionRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config) *services {
	s := &services{}

	judge := service.NewJudgeClient(cfg.Judge0)
	runner := service.NewTestCaseRunner(judge, cfg.Judge0)

	s.achievement = service.NewAchievementService(repos.progress, repos.achievement)
	s.evaluation = service.NewEvaluationService(repos.codingProblem, repos.progress, runner, s.achievement, cfg.Judge0.RunTimeout)
	s.mcq = service.NewMCQService(repos.mcqQuestion, repos.progress, s.achievement)
	s.problem = service.NewProblemService(repos.codingProblem, repos.mcqQuestion)
	s.discussion = service.NewDiscussionService(repos.discussion)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		problem:     controller.NewProblemController(s.problem),
		submission:  controller.NewSubmissionController(s.evaluation),
		mcq:         controller.NewMCQController(s.mcq),
		achievement: controller.NewAchievementController(s.achievement),
		discussion:  controller.NewDiscussionController(s.discussion),
		health:      controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db, rdb)
	services := app.initServices(repos, cfg)
	controllers := app.initControllers(services, db)

	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("practice-platform", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, cfg)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
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
		log.Fatal("Server forced to shutdown:", err)
	}

	logger.Log.Sync()
	log.Println("Server exiting")
}

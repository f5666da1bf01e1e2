package main

import (
	"context"
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/campstack/evalboard-backend/internal/cache"
	"github.com/campstack/evalboard-backend/internal/db"
	evalhttp "github.com/campstack/evalboard-backend/internal/http"
	httpH "github.com/campstack/evalboard-backend/internal/http/handlers"
	"github.com/campstack/evalboard-backend/internal/observability"
	"github.com/campstack/evalboard-backend/internal/platform/envutil"
	"github.com/campstack/evalboard-backend/internal/platform/logger"
	"github.com/campstack/evalboard-backend/internal/repos"
	"github.com/campstack/evalboard-backend/internal/services"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx := context.Background()

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Warn("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Redis (leaderboard cache; optional)
	redisAddr := envutil.GetEnv("REDIS_ADDR", "", log)
	var boardCache cache.LeaderboardCache = cache.NoopLeaderboardCache{}
	if redisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: redisAddr})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn("Redis unreachable, leaderboard cache disabled", "addr", redisAddr, "error", err)
		} else {
			boardCache = cache.NewRedisLeaderboardCache(redisClient, log)
		}
	}

	// Metrics (env-gated)
	metrics := observability.Init(log)
	if metrics != nil {
		metrics.StartPostgresCollector(ctx, log, thePG)
		metrics.StartRedisCollector(ctx, log, redisAddr)
		metrics.StartServer(ctx, log, envutil.GetEnv("METRICS_ADDR", ":9100", log))
	}

	// Repos
	log.Info("Setting up Repos from main...")
	campRepo := repos.NewCampRepo(thePG, log)
	subcampRepo := repos.NewSubcampRepo(thePG, log)
	leaderRepo := repos.NewLeaderRepo(thePG, log)
	kidRepo := repos.NewKidRepo(thePG, log)
	questionRepo := repos.NewQuestionRepo(thePG, log)
	evaluationRepo := repos.NewEvaluationRepo(thePG, log)

	// Services
	log.Info("Setting up Services from main...")
	progressService := services.NewProgressService(thePG, log, kidRepo, leaderRepo, questionRepo, evaluationRepo, subcampRepo)
	campService := services.NewCampService(thePG, log, campRepo)
	subcampService := services.NewSubcampService(thePG, log, subcampRepo, campRepo)
	leaderService := services.NewLeaderService(thePG, log, leaderRepo, subcampRepo)
	kidService := services.NewKidService(thePG, log, kidRepo, leaderRepo)
	questionService := services.NewQuestionService(thePG, log, questionRepo)
	evaluationService := services.NewEvaluationService(thePG, log, evaluationRepo, kidRepo, leaderRepo, questionRepo, subcampRepo, progressService, boardCache)
	leaderboardService := services.NewLeaderboardService(thePG, log, evaluationRepo, leaderRepo, kidRepo, subcampRepo, boardCache)

	// Handlers
	log.Info("Setting up handlers from main...")
	healthHandler := httpH.NewHealthHandler()
	campHandler := httpH.NewCampHandler(log, campService)
	subcampHandler := httpH.NewSubcampHandler(log, subcampService)
	leaderHandler := httpH.NewLeaderHandler(log, leaderService, kidService)
	kidHandler := httpH.NewKidHandler(log, kidService)
	questionHandler := httpH.NewQuestionHandler(log, questionService)
	evaluationHandler := httpH.NewEvaluationHandler(log, evaluationService)
	leaderboardHandler := httpH.NewLeaderboardHandler(log, leaderboardService)

	// Router
	log.Info("Setting up router from main...")
	server := evalhttp.NewServer(evalhttp.RouterConfig{
		Log:                log,
		Metrics:            metrics,
		AllowedOrigins:     envutil.GetEnv("CORS_ALLOWED_ORIGINS", "", log),
		HealthHandler:      healthHandler,
		CampHandler:        campHandler,
		SubcampHandler:     subcampHandler,
		LeaderHandler:      leaderHandler,
		KidHandler:         kidHandler,
		QuestionHandler:    questionHandler,
		EvaluationHandler:  evaluationHandler,
		LeaderboardHandler: leaderboardHandler,
	})

	port := envutil.GetEnv("PORT", "8080", log)
	log.Info("Server listening", "port", port)
	if err := server.Run(":" + port); err != nil {
		log.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

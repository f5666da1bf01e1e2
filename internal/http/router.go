package http

import (
	"github.com/gin-gonic/gin"

	httpH "github.com/campstack/evalboard-backend/internal/http/handlers"
	httpMW "github.com/campstack/evalboard-backend/internal/http/middleware"
	"github.com/campstack/evalboard-backend/internal/observability"
	"github.com/campstack/evalboard-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log     *logger.Logger
	Metrics *observability.Metrics

	AllowedOrigins string

	HealthHandler      *httpH.HealthHandler
	CampHandler        *httpH.CampHandler
	SubcampHandler     *httpH.SubcampHandler
	LeaderHandler      *httpH.LeaderHandler
	KidHandler         *httpH.KidHandler
	QuestionHandler    *httpH.QuestionHandler
	EvaluationHandler  *httpH.EvaluationHandler
	LeaderboardHandler *httpH.LeaderboardHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.CORS(cfg.AllowedOrigins))
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		// Camps
		if cfg.CampHandler != nil {
			api.GET("/camps", cfg.CampHandler.List)
			api.GET("/camps/:id", cfg.CampHandler.Get)
			api.POST("/camps", cfg.CampHandler.Create)
		}
		// Subcamps
		if cfg.SubcampHandler != nil {
			api.GET("/subcamps", cfg.SubcampHandler.List)
			api.GET("/subcamps/:id", cfg.SubcampHandler.Get)
			api.POST("/subcamps", cfg.SubcampHandler.Create)
		}

		// Leaders
		if cfg.LeaderHandler != nil {
			api.GET("/leaders", cfg.LeaderHandler.List)
			api.GET("/leaders/:id", cfg.LeaderHandler.Get)
			api.POST("/leaders", cfg.LeaderHandler.Create)
			api.GET("/leaders/:id/kids", cfg.LeaderHandler.Kids)
		}

		// Kids
		if cfg.KidHandler != nil {
			api.GET("/kids", cfg.KidHandler.List)
			api.GET("/kids/:id", cfg.KidHandler.Get)
			api.POST("/kids", cfg.KidHandler.Create)
			api.PUT("/kids/:id", cfg.KidHandler.Update)
			api.DELETE("/kids/:id", cfg.KidHandler.Deactivate)
		}

		// Questions
		if cfg.QuestionHandler != nil {
			api.GET("/questions", cfg.QuestionHandler.List)
			api.GET("/questions/:id", cfg.QuestionHandler.Get)
			api.POST("/questions", cfg.QuestionHandler.Create)
		}

		// Evaluations
		if cfg.EvaluationHandler != nil {
			api.GET("/evaluations/leader/:id", cfg.EvaluationHandler.ListByLeader)
			api.GET("/evaluations/kid/:id", cfg.EvaluationHandler.ListByKid)
			api.POST("/evaluations/auto-save", cfg.EvaluationHandler.AutoSave)
			api.GET("/evaluations/can-submit/:leaderId", cfg.EvaluationHandler.CanSubmit)
			api.POST("/evaluations/submit", cfg.EvaluationHandler.Submit)
		}

		// Aggregates live under the evaluations surface alongside the
		// writes they summarize.
		if cfg.LeaderboardHandler != nil {
			api.GET("/evaluations/leaderboard/:campId", cfg.LeaderboardHandler.Leaderboard)
			api.GET("/evaluations/progress/:groupId", cfg.LeaderboardHandler.Progress)
			api.GET("/evaluations/metrics/:campId", cfg.LeaderboardHandler.Metrics)
		}
	}

	return r
}

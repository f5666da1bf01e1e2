package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/campstack/evalboard-backend/internal/http/response"
	"github.com/campstack/evalboard-backend/internal/platform/logger"
	"github.com/campstack/evalboard-backend/internal/services"
)

type LeaderboardHandler struct {
	log      *logger.Logger
	boardSvc services.LeaderboardService
}

func NewLeaderboardHandler(log *logger.Logger, boardSvc services.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{
		log:      log.With("handler", "LeaderboardHandler"),
		boardSvc: boardSvc,
	}
}

// GET /api/evaluations/leaderboard/:campId
func (h *LeaderboardHandler) Leaderboard(c *gin.Context) {
	campID, err := uuid.Parse(c.Param("campId"))
	if err != nil {
		response.FailStatus(c, http.StatusBadRequest, "validation_error", errors.New("invalid camp id"))
		return
	}
	board, err := h.boardSvc.Leaderboard(c.Request.Context(), campID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, board)
}

// GET /api/evaluations/progress/:groupId
func (h *LeaderboardHandler) Progress(c *gin.Context) {
	groupID, err := uuid.Parse(c.Param("groupId"))
	if err != nil {
		response.FailStatus(c, http.StatusBadRequest, "validation_error", errors.New("invalid subcamp id"))
		return
	}
	progress, err := h.boardSvc.SubcampProgress(c.Request.Context(), groupID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, progress)
}

// GET /api/evaluations/metrics/:campId
func (h *LeaderboardHandler) Metrics(c *gin.Context) {
	campID, err := uuid.Parse(c.Param("campId"))
	if err != nil {
		response.FailStatus(c, http.StatusBadRequest, "validation_error", errors.New("invalid camp id"))
		return
	}
	metrics, err := h.boardSvc.CampMetrics(c.Request.Context(), campID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, metrics)
}

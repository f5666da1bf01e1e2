package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/campstack/evalboard-backend/internal/http/response"
	"github.com/campstack/evalboard-backend/internal/platform/logger"
	"github.com/campstack/evalboard-backend/internal/services"
	"github.com/campstack/evalboard-backend/internal/types"
)

type LeaderHandler struct {
	log       *logger.Logger
	leaderSvc services.LeaderService
	kidSvc    services.KidService
}

func NewLeaderHandler(log *logger.Logger, leaderSvc services.LeaderService, kidSvc services.KidService) *LeaderHandler {
	return &LeaderHandler{
		log:       log.With("handler", "LeaderHandler"),
		leaderSvc: leaderSvc,
		kidSvc:    kidSvc,
	}
}

// GET /api/leaders
func (h *LeaderHandler) List(c *gin.Context) {
	if subcampParam := c.Query("subcamp_id"); subcampParam != "" {
		subcampID, err := uuid.Parse(subcampParam)
		if err != nil {
			response.FailStatus(c, http.StatusBadRequest, "validation_error", errors.New("invalid subcamp id"))
			return
		}
		leaders, err := h.leaderSvc.ListBySubcamp(c.Request.Context(), subcampID)
		if err != nil {
			response.Fail(c, err)
			return
		}
		response.OK(c, leaders)
		return
	}
	leaders, err := h.leaderSvc.List(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, leaders)
}

// GET /api/leaders/:id
func (h *LeaderHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.FailStatus(c, http.StatusBadRequest, "validation_error", errors.New("invalid leader id"))
		return
	}
	leader, err := h.leaderSvc.Get(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, leader)
}

// POST /api/leaders
func (h *LeaderHandler) Create(c *gin.Context) {
	var leader types.Leader
	if err := c.ShouldBindJSON(&leader); err != nil {
		response.FailStatus(c, http.StatusBadRequest, "validation_error", err)
		return
	}
	created, err := h.leaderSvc.Create(c.Request.Context(), &leader)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Created(c, created)
}

// GET /api/leaders/:id/kids
func (h *LeaderHandler) Kids(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.FailStatus(c, http.StatusBadRequest, "validation_error", errors.New("invalid leader id"))
		return
	}
	kids, err := h.kidSvc.ListByLeader(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, kids)
}

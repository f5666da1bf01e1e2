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

type CampHandler struct {
	log     *logger.Logger
	campSvc services.CampService
}

func NewCampHandler(log *logger.Logger, campSvc services.CampService) *CampHandler {
	return &CampHandler{
		log:     log.With("handler", "CampHandler"),
		campSvc: campSvc,
	}
}

// GET /api/camps
func (h *CampHandler) List(c *gin.Context) {
	camps, err := h.campSvc.List(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, camps)
}

// GET /api/camps/:id
func (h *CampHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.FailStatus(c, http.StatusBadRequest, "validation_error", errors.New("invalid camp id"))
		return
	}
	camp, err := h.campSvc.Get(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, camp)
}

// POST /api/camps
func (h *CampHandler) Create(c *gin.Context) {
	var camp types.Camp
	if err := c.ShouldBindJSON(&camp); err != nil {
		response.FailStatus(c, http.StatusBadRequest, "validation_error", err)
		return
	}
	created, err := h.campSvc.Create(c.Request.Context(), &camp)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Created(c, created)
}

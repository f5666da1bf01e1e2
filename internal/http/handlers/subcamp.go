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

type SubcampHandler struct {
	log        *logger.Logger
	subcampSvc services.SubcampService
}

func NewSubcampHandler(log *logger.Logger, subcampSvc services.SubcampService) *SubcampHandler {
	return &SubcampHandler{
		log:        log.With("handler", "SubcampHandler"),
		subcampSvc: subcampSvc,
	}
}

// GET /api/subcamps
func (h *SubcampHandler) List(c *gin.Context) {
	if campParam := c.Query("camp_id"); campParam != "" {
		campID, err := uuid.Parse(campParam)
		if err != nil {
			response.FailStatus(c, http.StatusBadRequest, "validation_error", errors.New("invalid camp id"))
			return
		}
		subcamps, err := h.subcampSvc.ListByCamp(c.Request.Context(), campID)
		if err != nil {
			response.Fail(c, err)
			return
		}
		response.OK(c, subcamps)
		return
	}
	subcamps, err := h.subcampSvc.List(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, subcamps)
}

// GET /api/subcamps/:id
func (h *SubcampHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.FailStatus(c, http.StatusBadRequest, "validation_error", errors.New("invalid subcamp id"))
		return
	}
	subcamp, err := h.subcampSvc.Get(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, subcamp)
}

// POST /api/subcamps
func (h *SubcampHandler) Create(c *gin.Context) {
	var subcamp types.Subcamp
	if err := c.ShouldBindJSON(&subcamp); err != nil {
		response.FailStatus(c, http.StatusBadRequest, "validation_error", err)
		return
	}
	created, err := h.subcampSvc.Create(c.Request.Context(), &subcamp)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Created(c, created)
}

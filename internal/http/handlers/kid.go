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

type KidHandler struct {
	log    *logger.Logger
	kidSvc services.KidService
}

func NewKidHandler(log *logger.Logger, kidSvc services.KidService) *KidHandler {
	return &KidHandler{
		log:    log.With("handler", "KidHandler"),
		kidSvc: kidSvc,
	}
}

// GET /api/kids
func (h *KidHandler) List(c *gin.Context) {
	kids, err := h.kidSvc.List(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, kids)
}

// GET /api/kids/:id
func (h *KidHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.FailStatus(c, http.StatusBadRequest, "validation_error", errors.New("invalid kid id"))
		return
	}
	kid, err := h.kidSvc.Get(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, kid)
}

// POST /api/kids
func (h *KidHandler) Create(c *gin.Context) {
	var kid types.Kid
	if err := c.ShouldBindJSON(&kid); err != nil {
		response.FailStatus(c, http.StatusBadRequest, "validation_error", err)
		return
	}
	created, err := h.kidSvc.Create(c.Request.Context(), &kid)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Created(c, created)
}

// PUT /api/kids/:id
func (h *KidHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.FailStatus(c, http.StatusBadRequest, "validation_error", errors.New("invalid kid id"))
		return
	}
	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		response.FailStatus(c, http.StatusBadRequest, "validation_error", err)
		return
	}
	kid, err := h.kidSvc.Update(c.Request.Context(), id, updates)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, kid)
}

// DELETE /api/kids/:id
func (h *KidHandler) Deactivate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.FailStatus(c, http.StatusBadRequest, "validation_error", errors.New("invalid kid id"))
		return
	}
	if err := h.kidSvc.Deactivate(c.Request.Context(), id); err != nil {
		response.Fail(c, err)
		return
	}
	response.OKWithMessage(c, nil, "kid deactivated")
}

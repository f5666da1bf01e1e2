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

type EvaluationHandler struct {
	log     *logger.Logger
	evalSvc services.EvaluationService
}

func NewEvaluationHandler(log *logger.Logger, evalSvc services.EvaluationService) *EvaluationHandler {
	return &EvaluationHandler{
		log:     log.With("handler", "EvaluationHandler"),
		evalSvc: evalSvc,
	}
}

// GET /api/evaluations/leader/:id
func (h *EvaluationHandler) ListByLeader(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.FailStatus(c, http.StatusBadRequest, "validation_error", errors.New("invalid leader id"))
		return
	}
	evaluations, err := h.evalSvc.ListByLeader(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, evaluations)
}

// GET /api/evaluations/kid/:id
func (h *EvaluationHandler) ListByKid(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.FailStatus(c, http.StatusBadRequest, "validation_error", errors.New("invalid kid id"))
		return
	}
	evaluations, err := h.evalSvc.ListByKid(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, evaluations)
}

// POST /api/evaluations/auto-save
// Applies a batch of partial rating records. The batch is best-effort;
// the result reports per-record counts.
func (h *EvaluationHandler) AutoSave(c *gin.Context) {
	var req services.SaveBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FailStatus(c, http.StatusBadRequest, "validation_error", err)
		return
	}
	if req.IPAddress == "" {
		req.IPAddress = c.ClientIP()
	}
	result, err := h.evalSvc.AutoSave(c.Request.Context(), req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OKWithMessage(c, result, "evaluations saved")
}

// GET /api/evaluations/can-submit/:leaderId
func (h *EvaluationHandler) CanSubmit(c *gin.Context) {
	id, err := uuid.Parse(c.Param("leaderId"))
	if err != nil {
		response.FailStatus(c, http.StatusBadRequest, "validation_error", errors.New("invalid leader id"))
		return
	}
	readiness, err := h.evalSvc.CanSubmit(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, readiness)
}

// POST /api/evaluations/submit
func (h *EvaluationHandler) Submit(c *gin.Context) {
	var req services.SaveBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FailStatus(c, http.StatusBadRequest, "validation_error", err)
		return
	}
	if req.IPAddress == "" {
		req.IPAddress = c.ClientIP()
	}
	result, err := h.evalSvc.Submit(c.Request.Context(), req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	if result.AlreadyDone {
		response.OKWithMessage(c, result, "evaluations were already submitted")
		return
	}
	response.OKWithMessage(c, result, "evaluations submitted")
}

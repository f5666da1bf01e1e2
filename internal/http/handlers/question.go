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

type QuestionHandler struct {
	log         *logger.Logger
	questionSvc services.QuestionService
}

func NewQuestionHandler(log *logger.Logger, questionSvc services.QuestionService) *QuestionHandler {
	return &QuestionHandler{
		log:         log.With("handler", "QuestionHandler"),
		questionSvc: questionSvc,
	}
}

// GET /api/questions
func (h *QuestionHandler) List(c *gin.Context) {
	if category := c.Query("category"); category != "" {
		questions, err := h.questionSvc.ListByCategory(c.Request.Context(), category)
		if err != nil {
			response.Fail(c, err)
			return
		}
		response.OK(c, questions)
		return
	}
	questions, err := h.questionSvc.ListActive(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, questions)
}

// GET /api/questions/:id
func (h *QuestionHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.FailStatus(c, http.StatusBadRequest, "validation_error", errors.New("invalid question id"))
		return
	}
	question, err := h.questionSvc.Get(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, question)
}

// POST /api/questions
func (h *QuestionHandler) Create(c *gin.Context) {
	var question types.Question
	if err := c.ShouldBindJSON(&question); err != nil {
		response.FailStatus(c, http.StatusBadRequest, "validation_error", err)
		return
	}
	created, err := h.questionSvc.Create(c.Request.Context(), &question)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Created(c, created)
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campstack/evalboard-backend/internal/platform/apierr"
	"github.com/campstack/evalboard-backend/internal/platform/logger"
	"github.com/campstack/evalboard-backend/internal/repos"
	"github.com/campstack/evalboard-backend/internal/types"
)

type QuestionService interface {
	ListActive(ctx context.Context) ([]*types.Question, error)
	ListByCategory(ctx context.Context, category string) ([]*types.Question, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Question, error)
	Create(ctx context.Context, question *types.Question) (*types.Question, error)
}

type questionService struct {
	db           *gorm.DB
	log          *logger.Logger
	questionRepo repos.QuestionRepo
}

func NewQuestionService(db *gorm.DB, baseLog *logger.Logger, questionRepo repos.QuestionRepo) QuestionService {
	return &questionService{
		db:           db,
		log:          baseLog.With("service", "QuestionService"),
		questionRepo: questionRepo,
	}
}

func (s *questionService) ListActive(ctx context.Context) ([]*types.Question, error) {
	return s.questionRepo.GetAllActive(ctx, nil)
}

func (s *questionService) ListByCategory(ctx context.Context, category string) ([]*types.Question, error) {
	category = strings.TrimSpace(category)
	if !types.ValidCategory(category) {
		return nil, apierr.Validation(fmt.Errorf("unknown question category %q", category))
	}
	return s.questionRepo.GetActiveByCategory(ctx, nil, category)
}

func (s *questionService) Get(ctx context.Context, id uuid.UUID) (*types.Question, error) {
	if id == uuid.Nil {
		return nil, apierr.Validation(errors.New("question id is required"))
	}
	question, err := s.questionRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound(err)
		}
		return nil, apierr.Transient(err)
	}
	return question, nil
}

func (s *questionService) Create(ctx context.Context, question *types.Question) (*types.Question, error) {
	if question == nil || strings.TrimSpace(question.Text) == "" {
		return nil, apierr.Validation(errors.New("question text is required"))
	}
	if question.Category != "" && !types.ValidCategory(question.Category) {
		return nil, apierr.Validation(fmt.Errorf("unknown question category %q", question.Category))
	}
	if question.ScaleMin != 0 && question.ScaleMax != 0 && question.ScaleMin >= question.ScaleMax {
		return nil, apierr.Validation(errors.New("scale_min must be below scale_max"))
	}
	created, err := s.questionRepo.Create(ctx, nil, question)
	if err != nil {
		return nil, apierr.Transient(err)
	}
	s.log.Info("Question created", "question_id", created.ID, "category", created.Category)
	return created, nil
}

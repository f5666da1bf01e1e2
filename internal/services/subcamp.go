package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campstack/evalboard-backend/internal/platform/apierr"
	"github.com/campstack/evalboard-backend/internal/platform/logger"
	"github.com/campstack/evalboard-backend/internal/repos"
	"github.com/campstack/evalboard-backend/internal/types"
)

type SubcampService interface {
	List(ctx context.Context) ([]*types.Subcamp, error)
	ListByCamp(ctx context.Context, campID uuid.UUID) ([]*types.Subcamp, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Subcamp, error)
	Create(ctx context.Context, subcamp *types.Subcamp) (*types.Subcamp, error)
}

type subcampService struct {
	db          *gorm.DB
	log         *logger.Logger
	subcampRepo repos.SubcampRepo
	campRepo    repos.CampRepo
}

func NewSubcampService(db *gorm.DB, baseLog *logger.Logger, subcampRepo repos.SubcampRepo, campRepo repos.CampRepo) SubcampService {
	return &subcampService{
		db:          db,
		log:         baseLog.With("service", "SubcampService"),
		subcampRepo: subcampRepo,
		campRepo:    campRepo,
	}
}

func (s *subcampService) List(ctx context.Context) ([]*types.Subcamp, error) {
	return s.subcampRepo.GetAll(ctx, nil)
}

func (s *subcampService) ListByCamp(ctx context.Context, campID uuid.UUID) ([]*types.Subcamp, error) {
	if campID == uuid.Nil {
		return nil, apierr.Validation(errors.New("camp id is required"))
	}
	return s.subcampRepo.GetByCamp(ctx, nil, campID)
}

func (s *subcampService) Get(ctx context.Context, id uuid.UUID) (*types.Subcamp, error) {
	if id == uuid.Nil {
		return nil, apierr.Validation(errors.New("subcamp id is required"))
	}
	subcamp, err := s.subcampRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound(err)
		}
		return nil, apierr.Transient(err)
	}
	return subcamp, nil
}

func (s *subcampService) Create(ctx context.Context, subcamp *types.Subcamp) (*types.Subcamp, error) {
	if subcamp == nil || strings.TrimSpace(subcamp.Name) == "" {
		return nil, apierr.Validation(errors.New("subcamp name is required"))
	}
	if subcamp.CampID == uuid.Nil {
		return nil, apierr.Validation(errors.New("camp id is required"))
	}
	if _, err := s.campRepo.GetByID(ctx, nil, subcamp.CampID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.Validation(errors.New("camp does not exist"))
		}
		return nil, apierr.Transient(err)
	}
	created, err := s.subcampRepo.Create(ctx, nil, subcamp)
	if err != nil {
		return nil, apierr.Transient(err)
	}
	s.log.Info("Subcamp created", "subcamp_id", created.ID, "camp_id", created.CampID)
	return created, nil
}

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

type CampService interface {
	List(ctx context.Context) ([]*types.Camp, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Camp, error)
	Create(ctx context.Context, camp *types.Camp) (*types.Camp, error)
}

type campService struct {
	db       *gorm.DB
	log      *logger.Logger
	campRepo repos.CampRepo
}

func NewCampService(db *gorm.DB, baseLog *logger.Logger, campRepo repos.CampRepo) CampService {
	return &campService{
		db:       db,
		log:      baseLog.With("service", "CampService"),
		campRepo: campRepo,
	}
}

func (s *campService) List(ctx context.Context) ([]*types.Camp, error) {
	return s.campRepo.GetAll(ctx, nil)
}

func (s *campService) Get(ctx context.Context, id uuid.UUID) (*types.Camp, error) {
	if id == uuid.Nil {
		return nil, apierr.Validation(errors.New("camp id is required"))
	}
	camp, err := s.campRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound(err)
		}
		return nil, apierr.Transient(err)
	}
	return camp, nil
}

func (s *campService) Create(ctx context.Context, camp *types.Camp) (*types.Camp, error) {
	if camp == nil || strings.TrimSpace(camp.Name) == "" {
		return nil, apierr.Validation(errors.New("camp name is required"))
	}
	created, err := s.campRepo.Create(ctx, nil, camp)
	if err != nil {
		return nil, apierr.Transient(err)
	}
	s.log.Info("Camp created", "camp_id", created.ID, "name", created.Name)
	return created, nil
}

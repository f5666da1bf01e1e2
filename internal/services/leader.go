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

type LeaderService interface {
	List(ctx context.Context) ([]*types.Leader, error)
	ListBySubcamp(ctx context.Context, subcampID uuid.UUID) ([]*types.Leader, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Leader, error)
	Create(ctx context.Context, leader *types.Leader) (*types.Leader, error)
}

type leaderService struct {
	db          *gorm.DB
	log         *logger.Logger
	leaderRepo  repos.LeaderRepo
	subcampRepo repos.SubcampRepo
}

func NewLeaderService(db *gorm.DB, baseLog *logger.Logger, leaderRepo repos.LeaderRepo, subcampRepo repos.SubcampRepo) LeaderService {
	return &leaderService{
		db:          db,
		log:         baseLog.With("service", "LeaderService"),
		leaderRepo:  leaderRepo,
		subcampRepo: subcampRepo,
	}
}

func (s *leaderService) List(ctx context.Context) ([]*types.Leader, error) {
	return s.leaderRepo.GetAll(ctx, nil)
}

func (s *leaderService) ListBySubcamp(ctx context.Context, subcampID uuid.UUID) ([]*types.Leader, error) {
	if subcampID == uuid.Nil {
		return nil, apierr.Validation(errors.New("subcamp id is required"))
	}
	return s.leaderRepo.GetBySubcamp(ctx, nil, subcampID)
}

func (s *leaderService) Get(ctx context.Context, id uuid.UUID) (*types.Leader, error) {
	if id == uuid.Nil {
		return nil, apierr.Validation(errors.New("leader id is required"))
	}
	leader, err := s.leaderRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound(err)
		}
		return nil, apierr.Transient(err)
	}
	return leader, nil
}

func (s *leaderService) Create(ctx context.Context, leader *types.Leader) (*types.Leader, error) {
	if leader == nil || strings.TrimSpace(leader.Name) == "" {
		return nil, apierr.Validation(errors.New("leader name is required"))
	}
	if strings.TrimSpace(leader.Email) == "" {
		return nil, apierr.Validation(errors.New("leader email is required"))
	}
	if leader.SubcampID == uuid.Nil {
		return nil, apierr.Validation(errors.New("subcamp id is required"))
	}

	subcamp, err := s.subcampRepo.GetByID(ctx, nil, leader.SubcampID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.Validation(errors.New("subcamp does not exist"))
		}
		return nil, apierr.Transient(err)
	}
	if subcamp.MaxLeaders > 0 && subcamp.CurrentLeaders >= subcamp.MaxLeaders {
		return nil, apierr.Conflict(errors.New("subcamp is at leader capacity"))
	}

	created, err := s.leaderRepo.Create(ctx, nil, leader)
	if err != nil {
		return nil, apierr.Transient(err)
	}
	s.log.Info("Leader created", "leader_id", created.ID, "subcamp_id", created.SubcampID)
	return created, nil
}

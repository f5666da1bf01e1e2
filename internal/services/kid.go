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

type KidService interface {
	List(ctx context.Context) ([]*types.Kid, error)
	ListByLeader(ctx context.Context, leaderID uuid.UUID) ([]*types.Kid, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Kid, error)
	Create(ctx context.Context, kid *types.Kid) (*types.Kid, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*types.Kid, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type kidService struct {
	db         *gorm.DB
	log        *logger.Logger
	kidRepo    repos.KidRepo
	leaderRepo repos.LeaderRepo
}

func NewKidService(db *gorm.DB, baseLog *logger.Logger, kidRepo repos.KidRepo, leaderRepo repos.LeaderRepo) KidService {
	return &kidService{
		db:         db,
		log:        baseLog.With("service", "KidService"),
		kidRepo:    kidRepo,
		leaderRepo: leaderRepo,
	}
}

func (s *kidService) List(ctx context.Context) ([]*types.Kid, error) {
	return s.kidRepo.GetAll(ctx, nil)
}

func (s *kidService) ListByLeader(ctx context.Context, leaderID uuid.UUID) ([]*types.Kid, error) {
	if leaderID == uuid.Nil {
		return nil, apierr.Validation(errors.New("leader id is required"))
	}
	return s.kidRepo.GetByLeader(ctx, nil, leaderID)
}

func (s *kidService) Get(ctx context.Context, id uuid.UUID) (*types.Kid, error) {
	if id == uuid.Nil {
		return nil, apierr.Validation(errors.New("kid id is required"))
	}
	kid, err := s.kidRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound(err)
		}
		return nil, apierr.Transient(err)
	}
	return kid, nil
}

func (s *kidService) Create(ctx context.Context, kid *types.Kid) (*types.Kid, error) {
	if kid == nil || strings.TrimSpace(kid.Name) == "" {
		return nil, apierr.Validation(errors.New("kid name is required"))
	}
	if kid.LeaderID == uuid.Nil || kid.SubcampID == uuid.Nil {
		return nil, apierr.Validation(errors.New("leader id and subcamp id are required"))
	}

	leader, err := s.leaderRepo.GetByID(ctx, nil, kid.LeaderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.Validation(errors.New("leader does not exist"))
		}
		return nil, apierr.Transient(err)
	}
	if leader.SubcampID != kid.SubcampID {
		return nil, apierr.Validation(errors.New("kid and leader must share a subcamp"))
	}
	assigned, err := s.kidRepo.CountByLeader(ctx, nil, kid.LeaderID)
	if err != nil {
		return nil, apierr.Transient(err)
	}
	if assigned >= types.MaxKidsPerLeader {
		return nil, apierr.Conflict(errors.New("leader roster is full"))
	}

	created, err := s.kidRepo.Create(ctx, nil, kid)
	if err != nil {
		return nil, apierr.Transient(err)
	}
	s.log.Info("Kid created", "kid_id", created.ID, "leader_id", created.LeaderID)
	return created, nil
}

func (s *kidService) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*types.Kid, error) {
	if id == uuid.Nil {
		return nil, apierr.Validation(errors.New("kid id is required"))
	}
	// Rollup columns are owned by the aggregator, never by callers.
	for key := range updates {
		if strings.HasPrefix(key, "status_") || key == "id" {
			delete(updates, key)
		}
	}
	if err := s.kidRepo.Update(ctx, nil, id, updates); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound(err)
		}
		return nil, apierr.Transient(err)
	}
	return s.Get(ctx, id)
}

func (s *kidService) Deactivate(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return apierr.Validation(errors.New("kid id is required"))
	}
	if err := s.kidRepo.Deactivate(ctx, nil, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierr.NotFound(err)
		}
		return apierr.Transient(err)
	}
	s.log.Info("Kid deactivated", "kid_id", id)
	return nil
}

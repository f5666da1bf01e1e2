package services

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/campstack/evalboard-backend/internal/cache"
	"github.com/campstack/evalboard-backend/internal/observability"
	"github.com/campstack/evalboard-backend/internal/platform/apierr"
	"github.com/campstack/evalboard-backend/internal/platform/logger"
	"github.com/campstack/evalboard-backend/internal/repos"
	"github.com/campstack/evalboard-backend/internal/types"
)

type LeaderboardService interface {
	Leaderboard(ctx context.Context, campID uuid.UUID) (*types.Leaderboard, error)
	SubcampProgress(ctx context.Context, subcampID uuid.UUID) (*types.SubcampProgress, error)
	CampMetrics(ctx context.Context, campID uuid.UUID) (*types.CampMetrics, error)
}

type leaderboardService struct {
	db          *gorm.DB
	log         *logger.Logger
	evalRepo    repos.EvaluationRepo
	leaderRepo  repos.LeaderRepo
	kidRepo     repos.KidRepo
	subcampRepo repos.SubcampRepo
	boardCache  cache.LeaderboardCache
}

func NewLeaderboardService(
	db *gorm.DB,
	baseLog *logger.Logger,
	evalRepo repos.EvaluationRepo,
	leaderRepo repos.LeaderRepo,
	kidRepo repos.KidRepo,
	subcampRepo repos.SubcampRepo,
	boardCache cache.LeaderboardCache,
) LeaderboardService {
	return &leaderboardService{
		db:          db,
		log:         baseLog.With("service", "LeaderboardService"),
		evalRepo:    evalRepo,
		leaderRepo:  leaderRepo,
		kidRepo:     kidRepo,
		subcampRepo: subcampRepo,
		boardCache:  boardCache,
	}
}

// Leaderboard ranks a camp's subcamps by completion. Rows come from one
// grouped query; leader detail is fetched per subcamp in parallel.
func (s *leaderboardService) Leaderboard(ctx context.Context, campID uuid.UUID) (*types.Leaderboard, error) {
	if campID == uuid.Nil {
		return nil, apierr.Validation(errors.New("camp id is required"))
	}

	if board, ok := s.boardCache.Get(ctx, campID); ok {
		observability.Current().IncCacheLookup(true)
		return board, nil
	}
	observability.Current().IncCacheLookup(false)

	rows, err := s.evalRepo.LeaderboardRows(ctx, nil, campID)
	if err != nil {
		return nil, apierr.Transient(err)
	}

	// Subcamps with no evaluations yet still belong on the board.
	subcamps, err := s.subcampRepo.GetByCamp(ctx, nil, campID)
	if err != nil {
		return nil, apierr.Transient(err)
	}
	rowBySubcamp := make(map[uuid.UUID]repos.LeaderboardRow, len(rows))
	for _, row := range rows {
		rowBySubcamp[row.SubcampID] = row
	}

	summaries := make([]types.SubcampSummary, len(subcamps))
	g, gctx := errgroup.WithContext(ctx)
	for i, subcamp := range subcamps {
		i, subcamp := i, subcamp
		g.Go(func() error {
			row := rowBySubcamp[subcamp.ID]
			summary := types.SubcampSummary{
				SubcampID:            subcamp.ID,
				SubcampName:          subcamp.Name,
				SubcampDescription:   subcamp.Description,
				TotalEvaluations:     row.TotalEvaluations,
				CompletedEvaluations: row.CompletedEvaluations,
				Percentage:           types.Percentage(row.CompletedEvaluations, row.TotalEvaluations),
			}
			leaders, err := s.leaderRepo.GetBySubcamp(gctx, nil, subcamp.ID)
			if err != nil {
				return err
			}
			summary.TotalLeaders = len(leaders)
			summary.Leaders = make([]types.LeaderSummary, 0, len(leaders))
			for _, leader := range leaders {
				if leader.Progress.Status == types.ProgressCompleted {
					summary.CompletedLeaders++
				}
				summary.Leaders = append(summary.Leaders, types.LeaderSummary{
					Name:       leader.Name,
					Status:     leader.Progress.Status,
					Percentage: leader.Progress.Percentage,
				})
			}
			summaries[i] = summary
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, apierr.Transient(err)
	}

	sort.SliceStable(summaries, func(a, b int) bool {
		if summaries[a].Percentage != summaries[b].Percentage {
			return summaries[a].Percentage > summaries[b].Percentage
		}
		if summaries[a].CompletedEvaluations != summaries[b].CompletedEvaluations {
			return summaries[a].CompletedEvaluations > summaries[b].CompletedEvaluations
		}
		return summaries[a].SubcampName < summaries[b].SubcampName
	})

	board := &types.Leaderboard{Rows: summaries, GeneratedAt: time.Now().UTC()}
	s.boardCache.Set(ctx, campID, board)
	return board, nil
}

func (s *leaderboardService) SubcampProgress(ctx context.Context, subcampID uuid.UUID) (*types.SubcampProgress, error) {
	if subcampID == uuid.Nil {
		return nil, apierr.Validation(errors.New("subcamp id is required"))
	}
	if _, err := s.subcampRepo.GetByID(ctx, nil, subcampID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound(err)
		}
		return nil, apierr.Transient(err)
	}

	agg, err := s.evalRepo.SubcampAggregate(ctx, nil, subcampID)
	if err != nil {
		return nil, apierr.Transient(err)
	}
	return &types.SubcampProgress{
		TotalEvaluations:     agg.TotalEvaluations,
		CompletedEvaluations: agg.CompletedEvaluations,
		Percentage:           types.Percentage(agg.CompletedEvaluations, agg.TotalEvaluations),
		AverageRating:        agg.AverageRating,
	}, nil
}

// CampMetrics counts evaluations, leaders, kids and subcamps for one
// camp, with the count queries running in parallel.
func (s *leaderboardService) CampMetrics(ctx context.Context, campID uuid.UUID) (*types.CampMetrics, error) {
	if campID == uuid.Nil {
		return nil, apierr.Validation(errors.New("camp id is required"))
	}

	subcamps, err := s.subcampRepo.GetByCamp(ctx, nil, campID)
	if err != nil {
		return nil, apierr.Transient(err)
	}
	subcampIDs := make([]uuid.UUID, len(subcamps))
	completedSubcamps := 0
	for i, sc := range subcamps {
		subcampIDs[i] = sc.ID
		if sc.Stats.TotalEvaluations > 0 && sc.Stats.CompletionPercentage >= 100 {
			completedSubcamps++
		}
	}

	var (
		totalEvals, completedEvals int64
		totalLeaders, doneLeaders  int64
		totalKids, doneKids        int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		totalEvals, err = s.evalRepo.CountBySubcamps(gctx, nil, subcampIDs, false)
		return err
	})
	g.Go(func() (err error) {
		completedEvals, err = s.evalRepo.CountBySubcamps(gctx, nil, subcampIDs, true)
		return err
	})
	g.Go(func() (err error) {
		totalLeaders, err = s.leaderRepo.CountBySubcamps(gctx, nil, subcampIDs, false)
		return err
	})
	g.Go(func() (err error) {
		doneLeaders, err = s.leaderRepo.CountBySubcamps(gctx, nil, subcampIDs, true)
		return err
	})
	g.Go(func() (err error) {
		totalKids, err = s.kidRepo.CountBySubcamps(gctx, nil, subcampIDs, false)
		return err
	})
	g.Go(func() (err error) {
		doneKids, err = s.kidRepo.CountBySubcamps(gctx, nil, subcampIDs, true)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, apierr.Transient(err)
	}

	return &types.CampMetrics{
		Evaluations: types.MetricBlock{
			Total:      int(totalEvals),
			Completed:  int(completedEvals),
			Percentage: types.Percentage(int(completedEvals), int(totalEvals)),
		},
		Leaders: types.MetricBlock{
			Total:      int(totalLeaders),
			Completed:  int(doneLeaders),
			Percentage: types.Percentage(int(doneLeaders), int(totalLeaders)),
		},
		Kids: types.MetricBlock{
			Total:      int(totalKids),
			Completed:  int(doneKids),
			Percentage: types.Percentage(int(doneKids), int(totalKids)),
		},
		Subcamps: types.SubcampMetricBlock{
			Total:     len(subcamps),
			Completed: completedSubcamps,
		},
	}, nil
}

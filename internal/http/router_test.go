package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	httpH "github.com/campstack/evalboard-backend/internal/http/handlers"
	"github.com/campstack/evalboard-backend/internal/platform/logger"
	"github.com/campstack/evalboard-backend/internal/types"
)

type stubBoardService struct{}

func (stubBoardService) Leaderboard(ctx context.Context, campID uuid.UUID) (*types.Leaderboard, error) {
	return &types.Leaderboard{}, nil
}

func (stubBoardService) SubcampProgress(ctx context.Context, subcampID uuid.UUID) (*types.SubcampProgress, error) {
	return &types.SubcampProgress{}, nil
}

func (stubBoardService) CampMetrics(ctx context.Context, campID uuid.UUID) (*types.CampMetrics, error) {
	return &types.CampMetrics{}, nil
}

func newAggregateRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return NewRouter(RouterConfig{
		Log:                log,
		LeaderboardHandler: httpH.NewLeaderboardHandler(log, stubBoardService{}),
	})
}

func TestAggregateRoutesMountedUnderEvaluations(t *testing.T) {
	router := newAggregateRouter(t)
	id := uuid.New().String()

	paths := []string{
		"/api/evaluations/leaderboard/" + id,
		"/api/evaluations/progress/" + id,
		"/api/evaluations/metrics/" + id,
	}
	for _, path := range paths {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("GET %s: want=%d got=%d body=%s", path, http.StatusOK, rec.Code, rec.Body.String())
		}
	}
}

func TestAggregateRoutesNotOnResourcePaths(t *testing.T) {
	router := newAggregateRouter(t)
	id := uuid.New().String()

	for _, path := range []string{
		"/api/camps/" + id + "/leaderboard",
		"/api/subcamps/" + id + "/progress",
	} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("GET %s: want=%d got=%d", path, http.StatusNotFound, rec.Code)
		}
	}
}

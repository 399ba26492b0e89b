package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PARANDHAMAREDDYBOMMAKA/farmcon-sub000/internal/api/handlers"
	"github.com/PARANDHAMAREDDYBOMMAKA/farmcon-sub000/internal/config"
	"github.com/PARANDHAMAREDDYBOMMAKA/farmcon-sub000/internal/services"
	"github.com/PARANDHAMAREDDYBOMMAKA/farmcon-sub000/internal/upstream"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubFetcher struct{}

func (stubFetcher) FetchPrices(ctx context.Context, q upstream.Query) (*upstream.FetchResult, error) {
	return &upstream.FetchResult{Records: []upstream.RawRecord{}, Source: "stub"}, nil
}

func testRouter() *gin.Engine {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	h := Handlers{
		Prices: handlers.NewPriceHandler(
			stubFetcher{},
			services.NewNormalizer(),
			services.NewInsightsEngine(),
			services.NewHistoricalSynthesizer(),
			nil,
			nil,
			config.MarketDataConfig{DefaultCommodity: "Rice", DefaultLimit: 50, MaxLimit: 200},
			logger,
		),
		Cache:  handlers.NewCacheHandler(services.NewCacheAnalyticsService(nil), nil),
		Health: handlers.NewHealthHandler(nil, "test"),
	}

	router := gin.New()
	SetupRoutes(router, h, nil, logger)
	return router
}

func TestSetupRoutes_RegistersEndpoints(t *testing.T) {
	router := testRouter()

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/api/v1/market/prices", http.StatusOK},
		{http.MethodGet, "/api/v1/cache/stats", http.StatusOK},
		{http.MethodPost, "/api/v1/cache/stats/reset", http.StatusOK},
		{http.MethodGet, "/api/v1/nope", http.StatusNotFound},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
		assert.Equal(t, tt.want, w.Code, "%s %s", tt.method, tt.path)
	}
}

func TestRequestIDMiddleware_GeneratesID(t *testing.T) {
	router := testRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestRequestIDMiddleware_PreservesClientID(t *testing.T) {
	router := testRouter()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "client-supplied-id")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "client-supplied-id", w.Header().Get(RequestIDHeader))
}

func TestRecoveryMiddleware_CatchesPanics(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	router := gin.New()
	router.Use(RecoveryMiddleware(nil, logger))
	router.GET("/boom", func(c *gin.Context) {
		panic("handler exploded")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Internal server error")
}

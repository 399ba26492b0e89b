package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PARANDHAMAREDDYBOMMAKA/farmcon-sub000/internal/database"
)

func serveHealth(h *HealthHandler) *httptest.ResponseRecorder {
	router := gin.New()
	router.GET("/health", h.Health)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	return w
}

func TestHealth_OK(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	defer s.Close()

	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer client.Close()

	handler := NewHealthHandler(&database.RedisClient{Client: client}, "1.0.0")
	w := serveHealth(handler)
	require.Equal(t, http.StatusOK, w.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "ok", resp.Services.Redis)
	assert.Equal(t, "1.0.0", resp.Version)
}

func TestHealth_DegradedWithoutRedis(t *testing.T) {
	handler := NewHealthHandler(nil, "1.0.0")
	w := serveHealth(handler)

	// Redis down degrades the report but the service itself is still up.
	require.Equal(t, http.StatusOK, w.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp.Status)
	assert.Equal(t, "unavailable", resp.Services.Redis)
}

func TestHealth_DegradedOnRedisError(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer client.Close()
	s.Close() // connection established, then lost

	handler := NewHealthHandler(&database.RedisClient{Client: client}, "1.0.0")
	w := serveHealth(handler)
	require.Equal(t, http.StatusOK, w.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp.Status)
	assert.Equal(t, "error", resp.Services.Redis)
}

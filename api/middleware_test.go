package api

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimit(0.001, 1, nil))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/ping", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, do(r, http.MethodGet, "/ping", "").Code)
}

func TestRateLimit_Disabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimit(0, 0, nil))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/ping", "").Code)
	}
}

func TestRecoveryAndRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestLogger(logger), Recovery(logger))
	r.GET("/panic", func(c *gin.Context) { panic("boom") })
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusInternalServerError, do(r, http.MethodGet, "/panic", "").Code)
	assert.Equal(t, 1, logs.FilterMessage("panic recovered").Len())

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/ok", "").Code)
	assert.Equal(t, 2, logs.FilterMessage("request").Len())
}

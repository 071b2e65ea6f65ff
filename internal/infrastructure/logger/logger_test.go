package logger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/retailpos/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.LogConfig
	}{
		{name: "json to stdout", cfg: config.LogConfig{Level: "info", Format: "json", Output: "stdout"}},
		{name: "console to stderr", cfg: config.LogConfig{Level: "debug", Format: "console", Output: "stderr"}},
		{name: "unknown level falls back to info", cfg: config.LogConfig{Level: "verbose", Format: "json", Output: "stdout"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.cfg)
			require.NoError(t, err)
			require.NotNil(t, l)
		})
	}
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("WARNING"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel(""))
}

func TestContextLogger(t *testing.T) {
	t.Run("round trips through context", func(t *testing.T) {
		base := zap.NewNop()
		ctx := WithContext(context.Background(), base)
		assert.Same(t, base, FromContext(ctx))
	})

	t.Run("missing logger yields a no-op", func(t *testing.T) {
		assert.NotNil(t, FromContext(context.Background()))
	})

	t.Run("request id is stored and logged", func(t *testing.T) {
		core, logs := observer.New(zapcore.InfoLevel)
		ctx, enriched := WithRequestID(context.Background(), zap.New(core), "req-42")

		enriched.Info("hello")

		assert.Equal(t, "req-42", GetRequestID(ctx))
		require.Equal(t, 1, logs.Len())
		assert.Equal(t, "req-42", logs.All()[0].ContextMap()["request_id"])
	})

	t.Run("operator id is stored and logged", func(t *testing.T) {
		core, logs := observer.New(zapcore.InfoLevel)
		ctx, enriched := WithOperatorID(context.Background(), zap.New(core), "op-7")

		enriched.Info("hello")

		assert.Equal(t, "op-7", GetOperatorID(ctx))
		require.Equal(t, 1, logs.Len())
		assert.Equal(t, "op-7", logs.All()[0].ContextMap()["operator_id"])
	})

	t.Run("no span leaves the logger unchanged", func(t *testing.T) {
		base := zap.NewNop()
		assert.Same(t, base, WithTraceContext(context.Background(), base))
		assert.Empty(t, GetTraceID(context.Background()))
	})
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("generates an id when the client sends none", func(t *testing.T) {
		router := gin.New()
		router.Use(RequestID())
		router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		router.ServeHTTP(w, req)

		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	})

	t.Run("keeps a client-provided id", func(t *testing.T) {
		router := gin.New()
		router.Use(RequestID())
		router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("X-Request-ID", "client-id-1")
		router.ServeHTTP(w, req)

		assert.Equal(t, "client-id-1", w.Header().Get("X-Request-ID"))
	})
}

func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("logs status and path", func(t *testing.T) {
		core, logs := observer.New(zapcore.InfoLevel)
		router := gin.New()
		router.Use(RequestID(), GinMiddleware(zap.New(core)))
		router.GET("/products", func(c *gin.Context) { c.Status(http.StatusOK) })

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products", nil))

		require.Equal(t, 1, logs.Len())
		entry := logs.All()[0]
		assert.Equal(t, "HTTP Request", entry.Message)
		assert.Equal(t, zapcore.InfoLevel, entry.Level)
		assert.Equal(t, "/products", entry.ContextMap()["path"])
		assert.Equal(t, int64(http.StatusOK), entry.ContextMap()["status"])
	})

	t.Run("server errors log at error level", func(t *testing.T) {
		core, logs := observer.New(zapcore.InfoLevel)
		router := gin.New()
		router.Use(RequestID(), GinMiddleware(zap.New(core)))
		router.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

		require.Equal(t, 1, logs.Len())
		assert.Equal(t, zapcore.ErrorLevel, logs.All()[0].Level)
	})

	t.Run("handlers can retrieve the request logger", func(t *testing.T) {
		router := gin.New()
		router.Use(RequestID(), GinMiddleware(zap.NewNop()))
		var got *zap.Logger
		router.GET("/ping", func(c *gin.Context) {
			got = GetGinLogger(c)
			c.Status(http.StatusOK)
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

		assert.NotNil(t, got)
	})
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)

	core, logs := observer.New(zapcore.ErrorLevel)
	router := gin.New()
	router.Use(Recovery(zap.New(core)))
	router.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "Panic recovered", logs.All()[0].Message)
}

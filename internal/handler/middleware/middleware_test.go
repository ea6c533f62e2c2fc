package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/makkenzo/content-cms-api/internal/auth"
	"github.com/makkenzo/content-cms-api/internal/handler/dto"
	"github.com/makkenzo/content-cms-api/internal/ierr"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubAuthenticator struct {
	principal *auth.Principal
	err       error
	required  []string
}

func (s *stubAuthenticator) Authenticate(_ *http.Request, required []string) (*auth.Principal, error) {
	s.required = required
	return s.principal, s.err
}

type recordedUses struct{ ids []uuid.UUID }

func (r *recordedUses) RecordUse(_ context.Context, keyID uuid.UUID) {
	r.ids = append(r.ids, keyID)
}

func failingRouter(err error, expose bool) *gin.Engine {
	r := gin.New()
	r.Use(ErrorHandlerMiddleware(expose, zap.NewNop()))
	r.GET("/t", func(c *gin.Context) { _ = c.Error(err) })
	return r
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.APIErrorResponse {
	t.Helper()
	var body dto.APIErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestErrorHandlerMiddleware(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"missing credential", ierr.ErrMissingCredential, http.StatusUnauthorized, "MISSING_CREDENTIAL"},
		{"malformed credential", fmt.Errorf("%w: no bearer", ierr.ErrMalformedCredential), http.StatusUnauthorized, "MALFORMED_CREDENTIAL"},
		{"unknown credential", ierr.ErrCredentialNotFound, http.StatusUnauthorized, "INVALID_CREDENTIAL"},
		{"inactive credential", ierr.ErrCredentialInactive, http.StatusUnauthorized, "CREDENTIAL_INACTIVE"},
		{"expired credential", ierr.ErrCredentialExpired, http.StatusUnauthorized, "CREDENTIAL_EXPIRED"},
		{"insufficient scope", ierr.ErrInsufficientScope, http.StatusForbidden, "INSUFFICIENT_SCOPE"},
		{"not found", fmt.Errorf("schema x: %w", ierr.ErrNotFound), http.StatusNotFound, "NOT_FOUND"},
		{"validation", fmt.Errorf("%w: bad", ierr.ErrValidation), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"slug exhausted", ierr.ErrSlugExhausted, http.StatusConflict, "SLUG_EXHAUSTED"},
		{"plain conflict", ierr.ErrConflict, http.StatusConflict, "CONFLICT"},
		{"rate limited", ierr.ErrRateLimited, http.StatusTooManyRequests, "RATE_LIMITED"},
		{"store failure", fmt.Errorf("%w: select: boom", ierr.ErrUpstreamStore), http.StatusInternalServerError, "UPSTREAM_STORE_FAILURE"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			failingRouter(tc.err, false).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/t", nil))

			assert.Equal(t, tc.status, w.Code)
			body := decodeError(t, w)
			assert.Equal(t, tc.code, body.Code)
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestErrorHandlerMiddleware_InternalText(t *testing.T) {
	err := fmt.Errorf("%w: select api_keys: connection reset", ierr.ErrUpstreamStore)

	t.Run("Should hide internal text by default", func(t *testing.T) {
		w := httptest.NewRecorder()
		failingRouter(err, false).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/t", nil))
		assert.NotContains(t, decodeError(t, w).Error, "connection reset")
	})

	t.Run("Should expose internal text when enabled", func(t *testing.T) {
		w := httptest.NewRecorder()
		failingRouter(err, true).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/t", nil))
		assert.Contains(t, decodeError(t, w).Error, "connection reset")
	})
}

func TestErrorHandlerMiddleware_ValidationDetails(t *testing.T) {
	type payload struct {
		Name string `json:"name" binding:"required"`
	}
	r := gin.New()
	r.Use(ErrorHandlerMiddleware(false, zap.NewNop()))
	r.POST("/t", func(c *gin.Context) {
		var p payload
		if err := c.ShouldBindJSON(&p); err != nil {
			_ = c.Error(fmt.Errorf("%w: %w", ierr.ErrValidation, err))
			return
		}
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/t", strings.NewReader(`{}`)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, "VALIDATION_ERROR", body.Code)
	details, ok := body.Details.([]any)
	require.True(t, ok)
	require.Len(t, details, 1)
	assert.Equal(t, "Name", details[0].(map[string]any)["field"])
}

func TestAuthenticate(t *testing.T) {
	keyID := uuid.New()

	t.Run("Should store principal and record key use", func(t *testing.T) {
		p := &auth.Principal{OwnerID: uuid.New(), Method: auth.MethodAPIKey, KeyID: keyID}
		authn := &stubAuthenticator{principal: p}
		uses := &recordedUses{}

		var seen *auth.Principal
		r := gin.New()
		r.Use(ErrorHandlerMiddleware(false, zap.NewNop()))
		r.GET("/t", Authenticate(authn, uses, zap.NewNop(), "read:collections"), func(c *gin.Context) {
			seen = GetPrincipal(c)
			c.Status(http.StatusOK)
		})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/t", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Same(t, p, seen)
		assert.Equal(t, []string{"read:collections"}, authn.required)
		assert.Equal(t, []uuid.UUID{keyID}, uses.ids)
	})

	t.Run("Should not record sessions", func(t *testing.T) {
		authn := &stubAuthenticator{principal: &auth.Principal{OwnerID: uuid.New(), Method: auth.MethodSession}}
		uses := &recordedUses{}
		r := gin.New()
		r.GET("/t", Authenticate(authn, uses, zap.NewNop()), func(c *gin.Context) { c.Status(http.StatusOK) })

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/t", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, uses.ids)
	})

	t.Run("Should abort with the rejection", func(t *testing.T) {
		authn := &stubAuthenticator{err: ierr.ErrCredentialExpired}
		called := false
		r := gin.New()
		r.Use(ErrorHandlerMiddleware(false, zap.NewNop()))
		r.GET("/t", Authenticate(authn, nil, zap.NewNop()), func(c *gin.Context) { called = true })

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/t", nil))

		assert.False(t, called)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "CREDENTIAL_EXPIRED", decodeError(t, w).Code)
	})
}

func TestGetPrincipal_Missing(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Nil(t, GetPrincipal(c))
	c.Set(principalContextKey, "not a principal")
	assert.Nil(t, GetPrincipal(c))
}

func limitedRouter(t *testing.T, client *redis.Client, rate string) *gin.Engine {
	t.Helper()
	store, err := NewRateLimitStore(client)
	require.NoError(t, err)
	mw, err := RateLimit(store, rate, zap.NewNop())
	require.NoError(t, err)

	r := gin.New()
	r.Use(ErrorHandlerMiddleware(false, zap.NewNop()))
	r.GET("/t", mw, func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func hit(r *gin.Engine, ip string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/t", nil)
	req.RemoteAddr = ip + ":1234"
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimit(t *testing.T) {
	t.Run("Should block past the limit in memory", func(t *testing.T) {
		r := limitedRouter(t, nil, "1-M")

		assert.Equal(t, http.StatusOK, hit(r, "10.0.0.1").Code)
		blocked := hit(r, "10.0.0.1")
		assert.Equal(t, http.StatusTooManyRequests, blocked.Code)
		assert.Equal(t, "RATE_LIMITED", decodeError(t, blocked).Code)
		assert.Equal(t, http.StatusOK, hit(r, "10.0.0.2").Code)
	})

	t.Run("Should share counters through redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		defer client.Close()

		first := limitedRouter(t, client, "2-M")
		second := limitedRouter(t, client, "2-M")

		assert.Equal(t, http.StatusOK, hit(first, "10.0.0.9").Code)
		assert.Equal(t, http.StatusOK, hit(second, "10.0.0.9").Code)
		assert.Equal(t, http.StatusTooManyRequests, hit(first, "10.0.0.9").Code)
	})

	t.Run("Should reject malformed rates", func(t *testing.T) {
		store, err := NewRateLimitStore(nil)
		require.NoError(t, err)
		_, err = RateLimit(store, "lots", zap.NewNop())
		assert.ErrorIs(t, err, ierr.ErrValidation)
	})
}

func TestErrors_RecoversPanics(t *testing.T) {
	for name, value := range map[string]any{
		"string": "nil map write",
		"error":  errors.New("index out of range"),
		"other":  42,
	} {
		t.Run(name, func(t *testing.T) {
			r := gin.New()
			r.Use(Errors(false, zap.NewNop())...)
			r.GET("/boom", func(*gin.Context) { panic(value) })

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

			assert.Equal(t, http.StatusInternalServerError, w.Code)
			body := decodeError(t, w)
			assert.Equal(t, "INTERNAL_ERROR", body.Code)
			assert.NotContains(t, w.Body.String(), "index out of range")
		})
	}

	t.Run("Should leave healthy requests alone", func(t *testing.T) {
		r := gin.New()
		r.Use(Errors(false, zap.NewNop())...)
		r.GET("/ok", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

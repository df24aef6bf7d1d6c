package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gojoyas/internal/domain"
	"gojoyas/internal/pkg/logger"
	"gojoyas/internal/pkg/token"
)

func okHandler(t *testing.T, want UserClaims) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := GetUserClaimsFromContext(r.Context())
		require.True(t, ok)
		assert.Equal(t, want, claims)
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestAuthMiddleware(t *testing.T) {
	tokenSvc := token.NewService("segredo", time.Hour)
	valid, err := tokenSvc.GenerateToken("u-1", string(domain.UserAdmin))
	require.NoError(t, err)

	mw := NewAuthMiddleware(tokenSvc)(okHandler(t, UserClaims{UserID: "u-1", TypeUser: domain.UserAdmin}))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"sem header", "", http.StatusUnauthorized},
		{"sem prefixo Bearer", valid, http.StatusUnauthorized},
		{"token inválido", "Bearer abc.def.ghi", http.StatusUnauthorized},
		{"token válido", "Bearer " + valid, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			mw.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestPermissionMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	mw := PermissionMiddleware(domain.UserAdmin)(next)

	run := func(ctx context.Context) int {
		req := httptest.NewRequest(http.MethodGet, "/v1/warehouses", nil).WithContext(ctx)
		rec := httptest.NewRecorder()
		mw.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusUnauthorized, run(context.Background()))
	assert.Equal(t, http.StatusForbidden, run(WithUserClaims(context.Background(), UserClaims{UserID: "u", TypeUser: domain.UserBuyer})))
	assert.Equal(t, http.StatusNoContent, run(WithUserClaims(context.Background(), UserClaims{UserID: "u", TypeUser: domain.UserAdmin})))
}

type counterCache struct {
	count int64
	err   error
}

func (c *counterCache) Get(ctx context.Context, key string) (string, error) { return "", nil }
func (c *counterCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return nil
}
func (c *counterCache) Delete(ctx context.Context, key string) error { return nil }
func (c *counterCache) Incr(ctx context.Context, key string, expiration time.Duration) (int64, error) {
	if c.err != nil {
		return 0, c.err
	}
	c.count++
	return c.count, nil
}

func TestRateLimiter(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	t.Run("bloqueia acima do limite", func(t *testing.T) {
		mw := RateLimiter(&counterCache{}, 1, time.Minute, logger.NewLogger("error"))(next)

		rec := httptest.NewRecorder()
		mw.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

		rec = httptest.NewRecorder()
		mw.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	})

	t.Run("falha do cache não bloqueia", func(t *testing.T) {
		mw := RateLimiter(&counterCache{err: errors.New("redis fora")}, 1, time.Minute, logger.NewLogger("error"))(next)

		rec := httptest.NewRecorder()
		mw.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

package middleware

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"gojoyas/internal/pkg/cache"
	"gojoyas/internal/pkg/logger"
)

// RateLimiter limita o número de requisições por IP dentro de uma janela fixa.
// Falhas do cache não bloqueiam o tráfego: a requisição segue e o erro é registrado.
func RateLimiter(client cache.Client, limit int, window time.Duration, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}
			key := "rate-limit:" + ip

			count, err := client.Incr(r.Context(), key, window)
			if err != nil {
				log.Error("Falha ao incrementar contador de rate limit.", err)
				next.ServeHTTP(w, r)
				return
			}

			if count > int64(limit) {
				writeError(w, http.StatusTooManyRequests, "RATE_LIMITED", "Limite de requisições excedido.")
				return
			}

			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(int64(limit)-count, 10))
			next.ServeHTTP(w, r)
		})
	}
}

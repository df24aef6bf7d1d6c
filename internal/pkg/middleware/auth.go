package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"gojoyas/internal/domain"
	"gojoyas/internal/pkg/token"
)

// ContextKey é o tipo das chaves de contexto deste pacote (não exportadas para outros tipos).
type ContextKey int

const (
	UserClaimsKey ContextKey = iota
)

// UserClaims representa os dados do usuário extraídos do token JWT e anexados ao contexto.
type UserClaims struct {
	UserID   string
	TypeUser domain.UserType
}

// TokenService define o contrato de validação necessário para o middleware.
type TokenService interface {
	ValidateToken(tokenString string) (*token.CustomClaims, error)
}

// NewAuthMiddleware valida o JWT do header Authorization e anexa as claims ao contexto.
func NewAuthMiddleware(tokenSvc TokenService) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. Extrair o Token do Header Authorization: Bearer <token>
			authHeader := r.Header.Get("Authorization")
			tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
			if !found || tokenString == "" {
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Token de autorização ausente ou malformado.")
				return
			}

			// 2. Validar o Token
			claims, err := tokenSvc.ValidateToken(tokenString)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Token inválido ou expirado.")
				return
			}

			// 3. Anexar Claims ao Contexto
			ctx := WithUserClaims(r.Context(), UserClaims{
				UserID:   claims.UserID,
				TypeUser: domain.UserType(claims.TypeUser),
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithUserClaims anexa as claims ao contexto.
func WithUserClaims(ctx context.Context, claims UserClaims) context.Context {
	return context.WithValue(ctx, UserClaimsKey, claims)
}

// GetUserClaimsFromContext é uma função utilitária para extrair as claims no handler.
func GetUserClaimsFromContext(ctx context.Context) (UserClaims, bool) {
	claims, ok := ctx.Value(UserClaimsKey).(UserClaims)
	return claims, ok
}

// PermissionMiddleware só deixa passar usuários com um dos tipos informados.
// Deve ser encadeado depois de NewAuthMiddleware.
func PermissionMiddleware(allowed ...domain.UserType) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := GetUserClaimsFromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Autorização necessária. Token não processado.")
				return
			}

			for _, t := range allowed {
				if claims.TypeUser == t {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeError(w, http.StatusForbidden, "FORBIDDEN", "Acesso negado. Você não tem a permissão necessária.")
		})
	}
}

// writeError escreve o corpo padronizado domain.ErrorResponse.
func writeError(w http.ResponseWriter, status int, category, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(domain.ErrorResponse{Code: status, Category: category, Message: message})
}

package httpapi

import (
	"context"
	"net/http"
	"strings"

	"staywise-data/internal/domain"
	"staywise-data/internal/service"

	"go.uber.org/zap"
)

type contextKey string

const principalKey contextKey = "principal"

// PrincipalFrom 从请求上下文取出已认证身份
func PrincipalFrom(r *http.Request) (domain.Principal, bool) {
	p, ok := r.Context().Value(principalKey).(domain.Principal)
	return p, ok
}

// AuthMiddleware Bearer Token 认证中间件
type AuthMiddleware struct {
	secret string
	logger *zap.Logger
}

func NewAuthMiddleware(secret string, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{secret: secret, logger: logger}
}

// Wrap 校验 Authorization: Bearer <token>，把 Principal 注入上下文
func (m *AuthMiddleware) Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			writeJSON(w, http.StatusUnauthorized, FailCode(ResultTokenExpired, "missing token"))
			return
		}
		principal, err := service.ParseToken(strings.TrimPrefix(auth, "Bearer "), m.secret)
		if err != nil {
			m.logger.Debug("Token rejected", zap.Error(err))
			writeJSON(w, http.StatusUnauthorized, FailCode(ResultTokenExpired, "invalid token"))
			return
		}
		ctx := context.WithValue(r.Context(), principalKey, *principal)
		next(w, r.WithContext(ctx))
	}
}

// RequireManage 只放行 OWNER/MANAGER（必须套在 Wrap 里层）
func RequireManage(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := PrincipalFrom(r)
		if !ok {
			writeJSON(w, http.StatusUnauthorized, FailCode(ResultTokenExpired, "missing token"))
			return
		}
		if !p.CanManage() {
			writeJSON(w, http.StatusForbidden, Fail("insufficient role"))
			return
		}
		next(w, r)
	}
}

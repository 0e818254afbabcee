package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/xenith-eng/xenith-backend/internal/apperror"
	"github.com/xenith-eng/xenith-backend/internal/httputil"
)

type contextKey string

const principalKey contextKey = "principal"

// PrincipalFromContext returns the authenticated principal, or nil.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalKey).(*Principal)
	return p
}

// Authenticator parses the bearer token and attaches the principal to the
// request context. Requests without a valid token are rejected.
func Authenticator(service Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				httputil.Error(w, r, apperror.Permission("missing bearer token"))
				return
			}

			principal, err := service.ParseToken(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				httputil.Error(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), principalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireModule checks CanView for reads and CanEdit for writes on the
// given module.
func RequireModule(service Service, module string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := PrincipalFromContext(r.Context())
			allowed := false
			switch r.Method {
			case http.MethodGet, http.MethodHead:
				allowed = service.CanView(p, module)
			default:
				allowed = service.CanEdit(p, module)
			}
			if !allowed {
				httputil.Error(w, r, apperror.Permission("missing permission on module %s", module))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xenith-eng/xenith-backend/internal/modules/user"
)

// RequireModule grants reads via canView and writes via canEdit, so a role
// with view-only access to a module can GET but not POST.
func TestRequireModuleDistinguishesReadsFromWrites(t *testing.T) {
	svc, _ := newAuthService(t, user.RoleViewer)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	handler := RequireModule(svc, "clientes")(next)

	cases := []struct {
		name   string
		method string
		want   int
	}{
		{"read allowed", http.MethodGet, http.StatusNoContent},
		{"head allowed", http.MethodHead, http.StatusNoContent},
		{"write forbidden", http.MethodPost, http.StatusForbidden},
		{"delete forbidden", http.MethodDelete, http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, "/api/v1/clients", nil)
			ctx := context.WithValue(req.Context(), principalKey,
				&Principal{Role: user.RoleViewer})
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req.WithContext(ctx))
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestRequireModuleRejectsMissingPrincipal(t *testing.T) {
	svc, _ := newAuthService(t, user.RoleAdmin)

	handler := RequireModule(svc, "clientes")(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/clients", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

package authz

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/certwatch/certwatch-api/internal/models"
	"github.com/stretchr/testify/assert"
)

func doRequest(t *testing.T, required models.UserRole, role models.UserRole, withIdentity bool) *httptest.ResponseRecorder {
	t.Helper()
	handler := RequireRoleHandler(required, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/certifications", nil)
	if withIdentity {
		req = req.WithContext(WithIdentity(req.Context(), "u1", role))
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name     string
		required models.UserRole
		role     models.UserRole
		want     int
	}{
		{"viewer can read", models.RoleViewer, models.RoleViewer, http.StatusNoContent},
		{"editor outranks viewer", models.RoleViewer, models.RoleEditor, http.StatusNoContent},
		{"admin outranks editor", models.RoleEditor, models.RoleAdmin, http.StatusNoContent},
		{"viewer cannot edit", models.RoleEditor, models.RoleViewer, http.StatusForbidden},
		{"editor cannot administer", models.RoleAdmin, models.RoleEditor, http.StatusForbidden},
		{"unknown role rejected", models.RoleViewer, models.UserRole("root"), http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doRequest(t, tt.required, tt.role, true)
			assert.Equal(t, tt.want, rr.Code)
		})
	}
}

func TestRequireRoleNoIdentity(t *testing.T) {
	rr := doRequest(t, models.RoleViewer, "", false)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestIdentityRoundTrip(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithIdentity(req.Context(), "u1", models.RoleEditor))

	uid, ok := UserIDFromRequest(req)
	assert.True(t, ok)
	assert.Equal(t, "u1", uid)

	role, ok := RoleFromRequest(req)
	assert.True(t, ok)
	assert.Equal(t, models.RoleEditor, role)
}

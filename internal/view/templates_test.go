package view_test

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/niaxtu/niaxtu-admin/internal/gate"
	"github.com/niaxtu/niaxtu-admin/internal/niaxtu"
	"github.com/niaxtu/niaxtu-admin/internal/registry"
	"github.com/niaxtu/niaxtu-admin/internal/view"
)

func TestRenderLoginPage(t *testing.T) {
	engine, err := view.NewEngine()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	err = engine.Render(rec, "pages/login.html", view.TemplateData{
		Title:     "Connexion",
		CSRFToken: "token-123",
		Errors:    map[string]string{"general": "Identifiants invalides"},
		Data:      struct{ Email string }{Email: "admin@niaxtu.sn"},
	})
	require.NoError(t, err)

	body := rec.Body.String()
	assert.Contains(t, body, "Connexion")
	assert.Contains(t, body, "token-123")
	assert.Contains(t, body, "Identifiants invalides")
	assert.Contains(t, body, "admin@niaxtu.sn")
}

func TestNavHidesLinksWithoutPermission(t *testing.T) {
	engine, err := view.NewEngine()
	require.NoError(t, err)

	user := &niaxtu.User{
		ID:          "m1",
		FullName:    "Moussa Fall",
		Role:        registry.RoleModerator,
		Permissions: []registry.Permission{registry.PermViewComplaints},
		IsActive:    true,
	}

	rec := httptest.NewRecorder()
	err = engine.Render(rec, "pages/denied.html", view.TemplateData{
		Title: "Accès refusé",
		User:  user,
		Data: gate.Result{
			Decision:          gate.DecisionDeniedPermission,
			UserRole:          registry.RoleModerator,
			MissingPermission: registry.PermViewUsers,
		},
	})
	require.NoError(t, err)

	body := rec.Body.String()
	assert.Contains(t, body, "/complaints")
	assert.NotContains(t, body, "/admins\"", "nav must hide screens the user cannot open")
	assert.NotContains(t, body, "/history")
}

func TestSuperAdminBannerShows(t *testing.T) {
	engine, err := view.NewEngine()
	require.NoError(t, err)

	user := &niaxtu.User{ID: "root", FullName: "Racine", Role: registry.RoleSuperAdmin, IsActive: true}

	rec := httptest.NewRecorder()
	err = engine.Render(rec, "pages/dashboard.html", view.TemplateData{
		Title:      "Tableau de bord",
		User:       user,
		SuperAdmin: true,
		Data: struct {
			Stats    niaxtu.DashboardStats
			CanStats bool
		}{CanStats: true},
	})
	require.NoError(t, err)

	assert.Contains(t, rec.Body.String(), "Mode super administrateur")
}

package console

import (
	"net/http"

	"github.com/niaxtu/niaxtu-admin/internal/niaxtu"
	"github.com/niaxtu/niaxtu-admin/internal/registry"
)

type dashboardPage struct {
	Stats    niaxtu.DashboardStats
	CanStats bool
}

// The dashboard is every admin's landing page, so the route itself only
// requires a session; the stats block needs view_stats on top.
func (h *Handler) showDashboard(w http.ResponseWriter, r *http.Request) {
	page := dashboardPage{
		CanStats: h.sessions.IsSuperAdmin() || h.sessions.HasPermission(registry.PermViewStats),
	}
	if page.CanStats {
		stats, err := h.stats.Get(r.Context(), h.sessions.Token())
		if err != nil {
			if h.sessions.HandleAPIError(r.Context(), err) {
				http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
				return
			}
			h.logger.Warn("dashboard stats unavailable", "error", err)
			h.flash(r, "error", "Statistiques momentanément indisponibles")
		}
		page.Stats = stats
	}
	h.render(w, r, "pages/dashboard.html", "Tableau de bord", http.StatusOK, page, nil)
}

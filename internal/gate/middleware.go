package gate

import (
	"log/slog"
	"net/http"

	"github.com/niaxtu/niaxtu-admin/internal/registry"
	"github.com/niaxtu/niaxtu-admin/internal/session"
	"github.com/niaxtu/niaxtu-admin/internal/shared"
	"github.com/niaxtu/niaxtu-admin/internal/view"
)

// Middleware applies gate decisions to HTTP routes.
type Middleware struct {
	Sessions  *session.Manager
	Templates *view.Engine
	CSRF      *shared.CSRFManager
	Logger    *slog.Logger
}

// RequirePermission gates a route group behind a permission.
func (m Middleware) RequirePermission(perm registry.Permission) func(http.Handler) http.Handler {
	return m.Require(Requirement{Permission: perm})
}

// RequireRole gates a route group behind one of the given roles.
func (m Middleware) RequireRole(roles ...registry.Role) func(http.Handler) http.Handler {
	return m.Require(Requirement{Roles: roles})
}

// Require evaluates the decision table before each request.
func (m Middleware) Require(req Requirement) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			snap := m.Sessions.Snapshot()
			result := Decide(snap, req)

			switch result.Decision {
			case DecisionGrant:
				next.ServeHTTP(w, r)
			case DecisionLogin:
				http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
			case DecisionLoading:
				w.Header().Set("Retry-After", "1")
				m.render(w, r, snap, "pages/loading.html", "Veuillez patienter", http.StatusServiceUnavailable, result)
			case DecisionDisabled:
				m.render(w, r, snap, "pages/disabled.html", "Compte désactivé", http.StatusForbidden, result)
			default:
				m.render(w, r, snap, "pages/denied.html", "Accès refusé", http.StatusForbidden, result)
			}
		})
	}
}

func (m Middleware) render(w http.ResponseWriter, r *http.Request, snap session.Snapshot, page, title string, status int, result Result) {
	if m.Templates == nil {
		http.Error(w, http.StatusText(status), status)
		return
	}

	var csrfToken string
	if visit := shared.VisitFromContext(r.Context()); visit != nil && m.CSRF != nil {
		csrfToken, _ = m.CSRF.EnsureToken(visit)
	}

	data := view.TemplateData{
		Title:       title,
		CSRFToken:   csrfToken,
		CurrentPath: r.URL.Path,
		User:        snap.User,
		SuperAdmin:  result.SuperAdmin,
		Data:        result,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := m.Templates.Render(w, page, data); err != nil && m.Logger != nil {
		m.Logger.Error("render gate page", slog.String("page", page), slog.Any("error", err))
	}
}

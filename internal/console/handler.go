// Package console implements the permission-aware screens of the
// Niaxtu administration console. Route access goes through the gate
// middleware; action affordances are re-derived from the session on
// every render.
package console

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/niaxtu/niaxtu-admin/internal/gate"
	"github.com/niaxtu/niaxtu-admin/internal/niaxtu"
	"github.com/niaxtu/niaxtu-admin/internal/observability"
	"github.com/niaxtu/niaxtu-admin/internal/registry"
	"github.com/niaxtu/niaxtu-admin/internal/session"
	"github.com/niaxtu/niaxtu-admin/internal/shared"
	"github.com/niaxtu/niaxtu-admin/internal/view"
)

// ComplaintStatuses is the status vocabulary the API accepts.
var ComplaintStatuses = []string{"pending", "in_progress", "resolved", "rejected"}

// API is the slice of the Niaxtu client the screens consume.
type API interface {
	ListComplaints(ctx context.Context, token string, filter niaxtu.ComplaintFilter) ([]niaxtu.Complaint, error)
	GetComplaint(ctx context.Context, token, id string) (niaxtu.Complaint, error)
	UpdateComplaintStatus(ctx context.Context, token, id, status string) error
	DeleteComplaint(ctx context.Context, token, id string) error
	ListUsers(ctx context.Context, token string) ([]niaxtu.User, error)
	GetUser(ctx context.Context, token, id string) (niaxtu.User, error)
	UpdateUser(ctx context.Context, token, id string, fields map[string]any) (niaxtu.User, error)
	DeleteUser(ctx context.Context, token, id string) error
	ListStructures(ctx context.Context, token string) ([]niaxtu.Structure, error)
	SaveStructure(ctx context.Context, token string, structure niaxtu.Structure) (niaxtu.Structure, error)
	ListSectors(ctx context.Context, token string) ([]niaxtu.Sector, error)
	SaveSector(ctx context.Context, token string, sector niaxtu.Sector) (niaxtu.Sector, error)
	ListHistory(ctx context.Context, token string) ([]niaxtu.HistoryEntry, error)
}

// Handler wires every console screen.
type Handler struct {
	logger    *slog.Logger
	sessions  *session.Manager
	api       API
	stats     *StatsSource
	templates *view.Engine
	csrf      *shared.CSRFManager
	gate      gate.Middleware
	validator *validator.Validate
	metrics   *observability.Metrics
}

// SetMetrics attaches the Prometheus counters the handler increments.
func (h *Handler) SetMetrics(m *observability.Metrics) { h.metrics = m }

// NewHandler constructs the console handler.
func NewHandler(logger *slog.Logger, sessions *session.Manager, api API, stats *StatsSource, templates *view.Engine, csrf *shared.CSRFManager, gateMW gate.Middleware) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:    logger,
		sessions:  sessions,
		api:       api,
		stats:     stats,
		templates: templates,
		csrf:      csrf,
		gate:      gateMW,
		validator: validator.New(),
	}
}

// MountRoutes registers every screen on the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Get("/login", h.showLogin)
		r.Post("/login", h.handleLogin)
		r.Post("/logout", h.handleLogout)
	})

	r.Group(func(r chi.Router) {
		r.Use(h.gate.Require(gate.Requirement{}))
		r.Get("/", h.showDashboard)
		r.Get("/profile", h.showProfile)
		r.Post("/profile", h.handleProfileUpdate)
	})

	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequirePermission(registry.PermViewComplaints))
		r.Get("/complaints", h.listComplaints)
		r.Get("/complaints/{id}", h.showComplaint)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequirePermission(registry.PermExportData))
		r.Get("/complaints/export", h.exportComplaints)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequirePermission(registry.PermManageComplaintStatus))
		r.Post("/complaints/{id}/status", h.handleComplaintStatus)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequirePermission(registry.PermDeleteComplaints))
		r.Post("/complaints/{id}/delete", h.handleComplaintDelete)
	})

	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequirePermission(registry.PermViewUsers))
		r.Get("/admins", h.listAdmins)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireRole(registry.RoleSuperAdmin))
		r.Get("/admins/new", h.showAdminForm)
		r.Post("/admins/new", h.handleAdminCreate)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequirePermission(registry.PermEditUsers))
		r.Get("/admins/{id}/edit", h.showAdminEdit)
		r.Post("/admins/{id}/edit", h.handleAdminUpdate)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequirePermission(registry.PermDeleteUsers))
		r.Post("/admins/{id}/delete", h.handleAdminDelete)
	})

	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequirePermission(registry.PermViewStructures))
		r.Get("/structures", h.listStructures)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequirePermission(registry.PermManageStructures))
		r.Post("/structures", h.handleStructureSave)
	})

	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequirePermission(registry.PermViewSectors))
		r.Get("/sectors", h.listSectors)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequirePermission(registry.PermManageSectors))
		r.Post("/sectors", h.handleSectorSave)
	})

	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequirePermission(registry.PermViewHistory))
		r.Get("/history", h.listHistory)
	})
}

// render wraps the template engine with the per-request chrome: flash,
// CSRF token, current user, super-admin banner.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, page, title string, status int, data any, formErrors map[string]string) {
	snap := h.sessions.Snapshot()

	var csrfToken string
	var flash *shared.Flash
	if visit := shared.VisitFromContext(r.Context()); visit != nil {
		csrfToken, _ = h.csrf.EnsureToken(visit)
		flash = visit.PopFlash()
	}

	tplData := view.TemplateData{
		Title:       title,
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		User:        snap.User,
		SuperAdmin:  snap.User != nil && snap.User.Role == registry.RoleSuperAdmin,
		Errors:      formErrors,
		Data:        data,
	}
	if status != http.StatusOK {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
	}
	if err := h.templates.Render(w, page, tplData); err != nil {
		h.logger.Error("render page", slog.String("page", page), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// remoteFailed reacts to an API error: an expired session drops the
// operator on the login form, a denied operation or transport failure
// becomes a flash on the given return path. Reports true when the
// response has been written.
func (h *Handler) remoteFailed(w http.ResponseWriter, r *http.Request, err error, backTo string) bool {
	if err == nil {
		return false
	}
	if h.sessions.HandleAPIError(r.Context(), err) {
		if h.metrics != nil {
			h.metrics.SessionExpirations.Inc()
		}
		h.flash(r, "error", "Votre session a expiré, veuillez vous reconnecter")
		http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
		return true
	}

	h.logger.Error("remote call failed", slog.String("path", r.URL.Path), slog.Any("error", err))

	var authzErr *niaxtu.AuthorizationError
	switch {
	case errors.As(err, &authzErr):
		h.flash(r, "error", authzErr.Message)
	default:
		h.flash(r, "error", "Le serveur Niaxtu est injoignable, veuillez réessayer")
	}
	http.Redirect(w, r, backTo, http.StatusSeeOther)
	return true
}

func (h *Handler) flash(r *http.Request, kind, message string) {
	if visit := shared.VisitFromContext(r.Context()); visit != nil {
		visit.AddFlash(kind, message)
	}
}

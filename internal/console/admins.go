package console

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/niaxtu/niaxtu-admin/internal/niaxtu"
	"github.com/niaxtu/niaxtu-admin/internal/registry"
)

type adminRow struct {
	User      niaxtu.User
	CanEdit   bool
	CanDelete bool
}

type adminsPage struct {
	Rows      []adminRow
	CanCreate bool
}

type adminForm struct {
	FullName string `validate:"required,min=2"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8"`
	Role     registry.Role
	Roles    []registry.Role
}

type adminEditPage struct {
	Target   niaxtu.User
	Roles    []registry.Role
	IsActive bool
}

func (h *Handler) listAdmins(w http.ResponseWriter, r *http.Request) {
	users, err := h.api.ListUsers(r.Context(), h.sessions.Token())
	if h.remoteFailed(w, r, err, "/") {
		return
	}

	rows := make([]adminRow, 0, len(users))
	for _, u := range users {
		rows = append(rows, adminRow{
			User:      u,
			CanEdit:   CanEditAdmin(h.sessions, u),
			CanDelete: CanDeleteAdmin(h.sessions, u),
		})
	}
	h.render(w, r, "pages/admins.html", "Administrateurs", http.StatusOK, adminsPage{
		Rows:      rows,
		CanCreate: h.sessions.IsSuperAdmin(),
	}, nil)
}

func (h *Handler) showAdminForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "pages/admin_new.html", "Créer un compte", http.StatusOK, adminForm{
		Role:  registry.RoleModerator,
		Roles: registry.AllRoles(),
	}, nil)
}

func (h *Handler) handleAdminCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := adminForm{
		FullName: strings.TrimSpace(r.PostFormValue("full_name")),
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
		Role:     registry.Role(r.PostFormValue("role")),
		Roles:    registry.AllRoles(),
	}

	formErrors := map[string]string{}
	if err := h.validator.Struct(form); err != nil {
		formErrors["general"] = "Formulaire invalide, vérifiez les champs saisis"
	}
	if !registry.Known(form.Role) {
		formErrors["general"] = "Rôle inconnu"
	}
	if len(formErrors) > 0 {
		h.render(w, r, "pages/admin_new.html", "Créer un compte", http.StatusUnprocessableEntity, form, formErrors)
		return
	}

	_, err := h.sessions.Register(r.Context(), niaxtu.NewAdmin{
		Email:    form.Email,
		Password: form.Password,
		FullName: form.FullName,
		Role:     form.Role,
	})
	if err != nil {
		var authzErr *niaxtu.AuthorizationError
		if errors.As(err, &authzErr) {
			formErrors["general"] = authzErr.Message
			h.render(w, r, "pages/admin_new.html", "Créer un compte", http.StatusForbidden, form, formErrors)
			return
		}
		if h.remoteFailed(w, r, err, "/admins/new") {
			return
		}
	}
	h.flash(r, "success", "Compte créé pour "+form.Email)
	http.Redirect(w, r, "/admins", http.StatusSeeOther)
}

func (h *Handler) showAdminEdit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	target, err := h.api.GetUser(r.Context(), h.sessions.Token(), id)
	if h.remoteFailed(w, r, err, "/admins") {
		return
	}
	if !CanEditAdmin(h.sessions, target) {
		h.flash(r, "error", "Vous ne pouvez pas modifier ce compte")
		http.Redirect(w, r, "/admins", http.StatusSeeOther)
		return
	}
	h.render(w, r, "pages/admin_edit.html", "Modifier "+target.FullName, http.StatusOK, adminEditPage{
		Target:   target,
		Roles:    registry.AllRoles(),
		IsActive: target.IsActive,
	}, nil)
}

func (h *Handler) handleAdminUpdate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	id := chi.URLParam(r, "id")
	target, err := h.api.GetUser(r.Context(), h.sessions.Token(), id)
	if h.remoteFailed(w, r, err, "/admins") {
		return
	}
	if !CanEditAdmin(h.sessions, target) {
		h.flash(r, "error", "Vous ne pouvez pas modifier ce compte")
		http.Redirect(w, r, "/admins", http.StatusSeeOther)
		return
	}

	role := registry.Role(r.PostFormValue("role"))
	if !registry.Known(role) {
		h.flash(r, "error", "Rôle inconnu")
		http.Redirect(w, r, "/admins/"+id+"/edit", http.StatusSeeOther)
		return
	}
	// Only a super-admin may hand out the super-admin role.
	if role == registry.RoleSuperAdmin && !h.sessions.IsSuperAdmin() {
		h.flash(r, "error", "Seul un super administrateur peut attribuer ce rôle")
		http.Redirect(w, r, "/admins/"+id+"/edit", http.StatusSeeOther)
		return
	}

	fields := map[string]any{
		"role":     role,
		"isActive": r.PostFormValue("is_active") == "on",
		"fullName": strings.TrimSpace(r.PostFormValue("full_name")),
	}
	if _, err := h.api.UpdateUser(r.Context(), h.sessions.Token(), id, fields); err != nil {
		if h.remoteFailed(w, r, err, "/admins/"+id+"/edit") {
			return
		}
	}
	h.flash(r, "success", "Compte mis à jour")
	http.Redirect(w, r, "/admins", http.StatusSeeOther)
}

func (h *Handler) handleAdminDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	target, err := h.api.GetUser(r.Context(), h.sessions.Token(), id)
	if h.remoteFailed(w, r, err, "/admins") {
		return
	}
	if !CanDeleteAdmin(h.sessions, target) {
		h.flash(r, "error", "Vous ne pouvez pas supprimer ce compte")
		http.Redirect(w, r, "/admins", http.StatusSeeOther)
		return
	}

	if err := h.api.DeleteUser(r.Context(), h.sessions.Token(), id); err != nil {
		if h.remoteFailed(w, r, err, "/admins") {
			return
		}
	}
	h.flash(r, "success", "Compte supprimé")
	http.Redirect(w, r, "/admins", http.StatusSeeOther)
}

package console

import (
	"net/http"
	"strings"

	"github.com/niaxtu/niaxtu-admin/internal/niaxtu"
)

type profileForm struct {
	FullName string `validate:"omitempty,min=2"`
	Email    string `validate:"omitempty,email"`
	Password string `validate:"omitempty,min=8"`
}

func (h *Handler) showProfile(w http.ResponseWriter, r *http.Request) {
	if _, err := h.sessions.Profile(r.Context()); err != nil {
		if h.remoteFailed(w, r, err, "/") {
			return
		}
	}
	h.render(w, r, "pages/profile.html", "Mon profil", http.StatusOK, nil, nil)
}

func (h *Handler) handleProfileUpdate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := profileForm{
		FullName: strings.TrimSpace(r.PostFormValue("full_name")),
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}
	if err := h.validator.Struct(form); err != nil {
		h.render(w, r, "pages/profile.html", "Mon profil", http.StatusUnprocessableEntity, nil,
			map[string]string{"general": "Formulaire invalide, vérifiez les champs saisis"})
		return
	}

	update := profileUpdateFrom(form)
	if _, err := h.sessions.UpdateProfile(r.Context(), update); err != nil {
		if h.remoteFailed(w, r, err, "/profile") {
			return
		}
	}
	h.flash(r, "success", "Profil mis à jour")
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

func profileUpdateFrom(form profileForm) niaxtu.ProfileUpdate {
	var update niaxtu.ProfileUpdate
	if form.FullName != "" {
		update.FullName = &form.FullName
	}
	if form.Email != "" {
		update.Email = &form.Email
	}
	if form.Password != "" {
		update.Password = &form.Password
	}
	return update
}

package console

import (
	"errors"
	"net/http"
	"strings"

	"github.com/niaxtu/niaxtu-admin/internal/niaxtu"
	"github.com/niaxtu/niaxtu-admin/internal/session"
)

type loginPage struct {
	Email string
}

func (h *Handler) showLogin(w http.ResponseWriter, r *http.Request) {
	if h.sessions.IsAuthenticated() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.render(w, r, "pages/login.html", "Connexion", http.StatusOK, loginPage{}, nil)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	email := strings.TrimSpace(r.PostFormValue("email"))
	password := r.PostFormValue("password")

	user, err := h.sessions.Login(r.Context(), email, password)
	if err == nil {
		h.flash(r, "success", "Bienvenue, "+user.FullName)
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	formErrors := map[string]string{}
	var vErr *session.ValidationError
	var authErr *niaxtu.AuthenticationError
	switch {
	case errors.As(err, &vErr):
		formErrors[vErr.Field] = vErr.Message
	case errors.Is(err, session.ErrNotAdministrator):
		formErrors["general"] = "Ce compte n'a pas accès à la console d'administration"
	case errors.Is(err, session.ErrOperationInFlight):
		formErrors["general"] = "Une connexion est déjà en cours, veuillez patienter"
	case errors.As(err, &authErr):
		formErrors["general"] = authErr.Message
	default:
		formErrors["general"] = "Le serveur Niaxtu est injoignable, veuillez réessayer"
	}
	h.render(w, r, "pages/login.html", "Connexion", http.StatusUnprocessableEntity, loginPage{Email: email}, formErrors)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Logout(r.Context()); err != nil && !errors.Is(err, session.ErrOperationInFlight) {
		h.logger.Warn("logout", "error", err)
	}
	h.flash(r, "success", "Vous êtes déconnecté")
	http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
}

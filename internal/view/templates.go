// Package view renders the console's HTML templates.
package view

import (
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/niaxtu/niaxtu-admin/internal/niaxtu"
	"github.com/niaxtu/niaxtu-admin/internal/registry"
	"github.com/niaxtu/niaxtu-admin/internal/shared"
	"github.com/niaxtu/niaxtu-admin/web"
)

// Engine renders HTML templates parsed from the embedded FS.
type Engine struct {
	templates *template.Template
}

// TemplateData carries the values every layout expects.
type TemplateData struct {
	Title       string
	CSRFToken   string
	Flash       *shared.Flash
	CurrentPath string

	// User and SuperAdmin drive the navigation and the super-admin
	// mode banner.
	User       *niaxtu.User
	SuperAdmin bool

	Errors map[string]string
	Data   any
}

// NewEngine parses the embedded templates once at startup.
func NewEngine() (*Engine, error) {
	funcMap := template.FuncMap{
		"formatDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("02/01/2006 15:04")
		},
		"roleLabel": func(role registry.Role) string {
			return registry.RoleLabel(role)
		},
		"permLabel": func(perm registry.Permission) string {
			return registry.PermissionLabel(perm)
		},
		// can drives the navigation: a link only shows when the user
		// holds the permission, super-admins see everything.
		"can": func(user *niaxtu.User, perm string) bool {
			if user == nil {
				return false
			}
			if user.Role == registry.RoleSuperAdmin {
				return true
			}
			return user.HasPermission(registry.Permission(perm))
		},
	}
	tpl, err := template.New("root").Funcs(funcMap).ParseFS(web.Templates,
		"templates/layouts/*.html", "templates/partials/*.html", "templates/pages/*.html")
	if err != nil {
		return nil, err
	}
	return &Engine{templates: tpl}, nil
}

// Render executes a named template with TemplateData.
func (e *Engine) Render(w http.ResponseWriter, name string, data TemplateData) error {
	if e == nil {
		return fmt.Errorf("template engine not initialised")
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return e.templates.ExecuteTemplate(w, name, data)
}

package console

import (
	"net/http"
	"strings"

	"github.com/niaxtu/niaxtu-admin/internal/niaxtu"
	"github.com/niaxtu/niaxtu-admin/internal/registry"
)

type structuresPage struct {
	Structures []niaxtu.Structure
	Sectors    []niaxtu.Sector
	CanManage  bool
}

type sectorsPage struct {
	Sectors   []niaxtu.Sector
	CanManage bool
}

func (h *Handler) listStructures(w http.ResponseWriter, r *http.Request) {
	structures, err := h.api.ListStructures(r.Context(), h.sessions.Token())
	if h.remoteFailed(w, r, err, "/") {
		return
	}
	sectors, err := h.api.ListSectors(r.Context(), h.sessions.Token())
	if h.remoteFailed(w, r, err, "/") {
		return
	}
	h.render(w, r, "pages/structures.html", "Structures", http.StatusOK, structuresPage{
		Structures: structures,
		Sectors:    sectors,
		CanManage:  h.sessions.HasPermission(registry.PermManageStructures),
	}, nil)
}

func (h *Handler) handleStructureSave(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	structure := niaxtu.Structure{
		ID:       r.PostFormValue("id"),
		Name:     strings.TrimSpace(r.PostFormValue("name")),
		SectorID: r.PostFormValue("sector_id"),
		IsActive: r.PostFormValue("is_active") == "on",
	}
	if structure.Name == "" {
		h.flash(r, "error", "Le nom de la structure est obligatoire")
		http.Redirect(w, r, "/structures", http.StatusSeeOther)
		return
	}

	if _, err := h.api.SaveStructure(r.Context(), h.sessions.Token(), structure); err != nil {
		if h.remoteFailed(w, r, err, "/structures") {
			return
		}
	}
	h.flash(r, "success", "Structure enregistrée")
	http.Redirect(w, r, "/structures", http.StatusSeeOther)
}

func (h *Handler) listSectors(w http.ResponseWriter, r *http.Request) {
	sectors, err := h.api.ListSectors(r.Context(), h.sessions.Token())
	if h.remoteFailed(w, r, err, "/") {
		return
	}
	h.render(w, r, "pages/sectors.html", "Secteurs", http.StatusOK, sectorsPage{
		Sectors:   sectors,
		CanManage: h.sessions.HasPermission(registry.PermManageSectors),
	}, nil)
}

func (h *Handler) handleSectorSave(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	sector := niaxtu.Sector{
		ID:       r.PostFormValue("id"),
		Name:     strings.TrimSpace(r.PostFormValue("name")),
		IsActive: r.PostFormValue("is_active") == "on",
	}
	if sector.Name == "" {
		h.flash(r, "error", "Le nom du secteur est obligatoire")
		http.Redirect(w, r, "/sectors", http.StatusSeeOther)
		return
	}

	if _, err := h.api.SaveSector(r.Context(), h.sessions.Token(), sector); err != nil {
		if h.remoteFailed(w, r, err, "/sectors") {
			return
		}
	}
	h.flash(r, "success", "Secteur enregistré")
	http.Redirect(w, r, "/sectors", http.StatusSeeOther)
}

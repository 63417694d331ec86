package console

import (
	"encoding/csv"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/niaxtu/niaxtu-admin/internal/niaxtu"
	"github.com/niaxtu/niaxtu-admin/internal/registry"
)

type complaintsPage struct {
	Complaints []niaxtu.Complaint
	Statuses   []string
	Filter     niaxtu.ComplaintFilter
	CanDelete  bool
	CanExport  bool
}

type complaintDetailPage struct {
	Complaint       niaxtu.Complaint
	Statuses        []string
	CanManageStatus bool
}

func (h *Handler) listComplaints(w http.ResponseWriter, r *http.Request) {
	filter := niaxtu.ComplaintFilter{
		Status:      r.URL.Query().Get("status"),
		StructureID: r.URL.Query().Get("structure"),
		SectorID:    r.URL.Query().Get("sector"),
	}
	if page, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && page > 0 {
		filter.Page = page
	}

	complaints, err := h.api.ListComplaints(r.Context(), h.sessions.Token(), filter)
	if h.remoteFailed(w, r, err, "/") {
		return
	}
	h.render(w, r, "pages/complaints.html", "Plaintes", http.StatusOK, complaintsPage{
		Complaints: complaints,
		Statuses:   ComplaintStatuses,
		Filter:     filter,
		CanDelete:  h.sessions.HasPermission(registry.PermDeleteComplaints),
		CanExport:  h.sessions.HasPermission(registry.PermExportData),
	}, nil)
}

func (h *Handler) showComplaint(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	complaint, err := h.api.GetComplaint(r.Context(), h.sessions.Token(), id)
	if h.remoteFailed(w, r, err, "/complaints") {
		return
	}
	h.render(w, r, "pages/complaint_detail.html", "Plainte "+complaint.Reference, http.StatusOK, complaintDetailPage{
		Complaint:       complaint,
		Statuses:        ComplaintStatuses,
		CanManageStatus: h.sessions.HasPermission(registry.PermManageComplaintStatus),
	}, nil)
}

func (h *Handler) handleComplaintStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	status := r.PostFormValue("status")
	if !slices.Contains(ComplaintStatuses, status) {
		h.flash(r, "error", "Statut inconnu")
		http.Redirect(w, r, "/complaints/"+id, http.StatusSeeOther)
		return
	}

	err := h.api.UpdateComplaintStatus(r.Context(), h.sessions.Token(), id, status)
	if h.remoteFailed(w, r, err, "/complaints/"+id) {
		return
	}
	h.flash(r, "success", "Statut mis à jour")
	http.Redirect(w, r, "/complaints/"+id, http.StatusSeeOther)
}

// exportComplaints streams the current complaint listing as CSV.
func (h *Handler) exportComplaints(w http.ResponseWriter, r *http.Request) {
	filter := niaxtu.ComplaintFilter{Status: r.URL.Query().Get("status")}
	complaints, err := h.api.ListComplaints(r.Context(), h.sessions.Token(), filter)
	if h.remoteFailed(w, r, err, "/complaints") {
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="plaintes.csv"`)

	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"reference", "sujet", "statut", "structure", "secteur", "cree_le"})
	for _, c := range complaints {
		_ = cw.Write([]string{c.Reference, c.Subject, c.Status, c.StructureID, c.SectorID, c.CreatedAt.Format(time.RFC3339)})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		h.logger.Error("export complaints", slog.Any("error", err))
	}
}

func (h *Handler) handleComplaintDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := h.api.DeleteComplaint(r.Context(), h.sessions.Token(), id)
	if h.remoteFailed(w, r, err, "/complaints") {
		return
	}
	h.flash(r, "success", "Plainte supprimée")
	http.Redirect(w, r, "/complaints", http.StatusSeeOther)
}

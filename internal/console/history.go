package console

import (
	"net/http"

	"github.com/niaxtu/niaxtu-admin/internal/niaxtu"
)

type historyPage struct {
	Entries []niaxtu.HistoryEntry
}

func (h *Handler) listHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := h.api.ListHistory(r.Context(), h.sessions.Token())
	if h.remoteFailed(w, r, err, "/") {
		return
	}
	h.render(w, r, "pages/history.html", "Historique", http.StatusOK, historyPage{Entries: entries}, nil)
}

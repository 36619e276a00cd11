package adapthttp

import (
	"net/http"
	"time"
)

func (s *Server) handleSummaryDaily(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	user := userFromContext(r.Context())
	if user == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	days := intQuery(r, "days", 7)
	unit := r.URL.Query().Get("unit")
	if unit == "" {
		unit = "oz"
	}

	items, err := s.summary.GetDaily(r.Context(), user.ID, days, unit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"days":  len(items),
		"unit":  unit,
		"today": localDayString(time.Now()),
		"items": items,
	})
}

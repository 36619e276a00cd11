package adapthttp

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"babytracker/internal/app"
	"babytracker/internal/domain"
)

const noBabyMessage = "No baby profile found"

// eventRequest is the form editor body. Data is the payload as JSON text;
// a bare JSON object is accepted too.
type eventRequest struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func (req eventRequest) payloadText() (string, error) {
	raw := bytes.TrimSpace(req.Data)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "{}", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	return string(raw), nil
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	if user == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	switch r.Method {
	case http.MethodGet:
		limit := intQuery(r, "limit", 0)
		items, err := s.events.List(r.Context(), user.ID, limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		if items == nil {
			items = []domain.Event{}
		}
		writeJSON(w, http.StatusOK, items)
	case http.MethodPost:
		var req eventRequest
		if err := parseJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		data, err := req.payloadText()
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		e, err := s.events.Create(r.Context(), user.ID, req.Type, data)
		if err != nil {
			s.writeEventError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, e)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	user := userFromContext(r.Context())
	if user == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, errors.New("invalid event id"))
		return
	}

	var req eventRequest
	if err := parseJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	data, err := req.payloadText()
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	e, err := s.events.Update(r.Context(), user.ID, id, req.Type, data)
	if err != nil {
		s.writeEventError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) writeEventError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, app.ErrInvalidEvent):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, app.ErrNoBaby):
		writeMessage(w, http.StatusBadRequest, noBabyMessage)
	case errors.Is(err, app.ErrEventNotFound):
		writeError(w, http.StatusNotFound, err)
	default:
		s.log.Error("event request", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err)
	}
}

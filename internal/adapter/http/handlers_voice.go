package adapthttp

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"babytracker/internal/app"
	"babytracker/internal/interpreter"
)

func (s *Server) handleVoiceCommand(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	user := userFromContext(r.Context())
	if user == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var body struct {
		Command string `json:"command"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	out, err := s.voice.Process(r.Context(), user.ID, body.Command)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, out)
	case interpreter.Rejected(err):
		writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, app.ErrNoBaby):
		writeMessage(w, http.StatusBadRequest, noBabyMessage)
	default:
		s.log.Error("process voice command", zap.Int64("user_id", user.ID), zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, "Error processing voice command")
	}
}

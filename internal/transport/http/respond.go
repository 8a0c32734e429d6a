package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"live-quiz-service/internal/config"
	"live-quiz-service/internal/domain"
)

// Identity headers set by the upstream gateway after verifying the caller's credential.
const (
	HeaderLogin = "X-Participant-Login"
	HeaderCode  = "X-Participant-Code"
	HeaderRoles = "X-Participant-Roles"
)

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func callerFromRequest(r *http.Request) domain.Caller {
	return newCaller(r.Header.Get(HeaderLogin), r.Header.Get(HeaderCode), r.Header.Get(HeaderRoles))
}

func newCaller(login, code, roles string) domain.Caller {
	caller := domain.Caller{Participant: domain.Participant{Login: login, Code: code}}
	for _, raw := range strings.Split(roles, ",") {
		if role, ok := domain.ParseRole(raw); ok {
			caller.Roles = append(caller.Roles, role)
		}
	}
	return caller
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeRaw(w http.ResponseWriter, status int, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	e := domain.AsError(err)
	log := config.WithContext(r.Context()).WithField("code", e.Code())
	if e.Status() >= http.StatusInternalServerError {
		log.WithError(err).Error("request failed")
	} else {
		log.WithError(err).Warn("request rejected")
	}
	writeJSON(w, e.Status(), errorPayload{Code: e.Code(), Message: e.Detail})
}

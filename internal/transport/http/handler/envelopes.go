package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-signup-gate/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
	ErrorCode int    `json:"error_code,omitempty"`
}

// FlowEnvelope reports where a signup attempt stands.
type FlowEnvelope struct {
	State        domain.SignupState `json:"state"`
	Email        string             `json:"email,omitempty"`
	AttemptToken string             `json:"attempt_token,omitempty"`
	Next         string             `json:"next,omitempty"`
	Message      string             `json:"message,omitempty"`
	Error        string             `json:"error,omitempty"`
	Fields       map[string]string  `json:"fields,omitempty"`
}

// AuthEnvelope wraps responses that open a session.
type AuthEnvelope struct {
	Bearer  string          `json:"Bearer,omitempty"`
	Session *domain.Session `json:"session,omitempty"`
	Next    string          `json:"next,omitempty"`
	Message string          `json:"message,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// PageEnvelope describes a page the client should render.
type PageEnvelope struct {
	Page string       `json:"page"`
	User *domain.User `json:"user,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

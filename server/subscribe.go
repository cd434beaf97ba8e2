package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"unislay-landing/pkg/landing"
)

const maxBodyBytes = 4 << 10

type subscribeRequest struct {
	Email *string `json:"email"`
}

type response struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		s.logger.Info("Invalid subscribe body", "error", err)
		s.metrics.subscriptions.WithLabelValues(landing.ValidationFailed.String()).Inc()
		s.writeJSON(w, http.StatusBadRequest, response{Error: "A valid email is required"})
		return
	}

	var email string
	if req.Email != nil {
		email = *req.Email
	}

	out := s.subscriber.Subscribe(r.Context(), email)
	s.metrics.subscriptions.WithLabelValues(out.Result.String()).Inc()

	status, body := s.render(out.Result, out.Err)
	s.writeJSON(w, status, body)
}

// render maps a subscription result to its HTTP status and body.
func (s *Server) render(result landing.Result, err error) (int, response) {
	switch result {
	case landing.Created:
		return http.StatusCreated, response{Message: "Subscribed successfully!"}
	case landing.AlreadySubscribed:
		return http.StatusBadRequest, response{Error: "Email already subscribed"}
	case landing.ValidationFailed:
		return http.StatusBadRequest, response{Error: "A valid email is required"}
	case landing.NotificationFailed:
		resp := response{Error: "Subscribed, but the welcome email could not be sent"}
		if !s.production && err != nil {
			resp.Detail = err.Error()
		}
		return http.StatusInternalServerError, resp
	default:
		return http.StatusInternalServerError, response{Error: "Server error"}
	}
}

package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/dyluth/contactbook/internal/auth"
	"github.com/dyluth/contactbook/internal/store"
	"github.com/dyluth/contactbook/internal/views"
	"github.com/dyluth/contactbook/pkg/contact"
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// badRequestError reports a request body that could not be decoded at all.
type badRequestError struct {
	err error
}

func (e *badRequestError) Error() string {
	return "malformed request body: " + e.err.Error()
}

func (e *badRequestError) Unwrap() error {
	return e.err
}

// writeError maps err onto a status code and writes the response.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		notFound   *store.NotFoundError
		duplicate  *store.UniqueConstraintError
		invalid    *contact.ValidationError
		authFailed *auth.AuthenticationError
		malformed  *badRequestError
	)

	switch {
	case errors.As(err, &notFound):
		s.writeStatus(w, r, http.StatusNotFound, notFound.Error())
	case errors.As(err, &invalid):
		s.writeStatus(w, r, http.StatusUnprocessableEntity, invalid.Error())
	case errors.As(err, &duplicate):
		s.writeStatus(w, r, http.StatusConflict, duplicate.Error())
	case errors.As(err, &authFailed):
		w.Header().Set("WWW-Authenticate", s.gate.Challenge())
		s.writeStatus(w, r, http.StatusUnauthorized, authFailed.Reason)
	case errors.As(err, &malformed):
		s.writeStatus(w, r, http.StatusBadRequest, malformed.Error())
	default:
		s.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		s.writeStatus(w, r, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
}

// writeStatus writes detail as an HTML error page or a JSON ErrorResponse,
// depending on what the client asked for.
func (s *Server) writeStatus(w http.ResponseWriter, r *http.Request, status int, detail string) {
	if wantsHTML(r) {
		s.render(w, r, status, views.PageError, views.Data{Title: http.StatusText(status), Message: detail})
		return
	}
	s.writeJSON(w, status, ErrorResponse{Detail: detail})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, page string, data views.Data) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")

	// Render buffers internally, so on failure nothing has been written yet.
	rw := &deferredWriter{ResponseWriter: w, status: status}
	if err := s.views.Render(rw, page, data); err != nil {
		s.logger.Error("failed to render page", zap.String("page", page), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if !rw.wrote {
		w.WriteHeader(status)
	}
}

// deferredWriter holds back the status line until the first body write.
type deferredWriter struct {
	http.ResponseWriter
	status int
	wrote  bool
}

func (d *deferredWriter) Write(p []byte) (int, error) {
	if !d.wrote {
		d.wrote = true
		d.ResponseWriter.WriteHeader(d.status)
	}
	return d.ResponseWriter.Write(p)
}

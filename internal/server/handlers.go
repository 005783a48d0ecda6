package server

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/dyluth/contactbook/internal/views"
	"github.com/dyluth/contactbook/pkg/contact"
	"github.com/dyluth/contactbook/pkg/events"
)

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	contacts, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if wantsJSON(r) {
		s.writeJSON(w, http.StatusOK, contacts)
		return
	}
	s.render(w, r, http.StatusOK, views.PageList, views.Data{Title: "Contacts", Contacts: contacts})
}

func (s *Server) handleCreateForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, views.PageCreate, views.Data{Title: "New contact"})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	in, err := readInput(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	c, err := s.store.Insert(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info("contact created", zap.Int64("contact_id", c.ID))
	s.publish(r.Context(), events.EventTypeCreated, c)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	c, ok := s.lookup(w, r)
	if !ok {
		return
	}

	if wantsJSON(r) {
		s.writeJSON(w, http.StatusOK, c)
		return
	}
	s.render(w, r, http.StatusOK, views.PageView, views.Data{Title: c.FullName(), Contact: c})
}

func (s *Server) handleEditForm(w http.ResponseWriter, r *http.Request) {
	c, ok := s.lookup(w, r)
	if !ok {
		return
	}
	s.render(w, r, http.StatusOK, views.PageEdit, views.Data{Title: "Edit " + c.FullName(), Contact: c})
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	// existence is reported before validation problems
	if _, err := s.store.Get(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}

	in, err := readInput(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	c, err := s.store.UpdateExisting(r.Context(), id, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info("contact updated", zap.Int64("contact_id", c.ID))
	s.publish(r.Context(), events.EventTypeUpdated, c)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleDeleteConfirm(w http.ResponseWriter, r *http.Request) {
	c, ok := s.lookup(w, r)
	if !ok {
		return
	}
	s.render(w, r, http.StatusOK, views.PageDelete, views.Data{Title: "Delete " + c.FullName(), Contact: c})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	c, err := s.store.DeleteAndRenumber(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info("contact deleted", zap.Int64("contact_id", c.ID))
	s.publish(r.Context(), events.EventTypeDeleted, c)
	w.WriteHeader(http.StatusNoContent)
}

// pathID parses the {id} path segment. A value that is not a positive integer
// can never name a contact, so it is answered with 404.
func (s *Server) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		s.writeStatus(w, r, http.StatusNotFound, fmt.Sprintf("Contact with id %s not found", raw))
		return 0, false
	}
	return id, true
}

// lookup resolves {id} to a stored contact, writing the error response itself
// when that fails.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (contact.Contact, bool) {
	id, ok := s.pathID(w, r)
	if !ok {
		return contact.Contact{}, false
	}

	c, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return contact.Contact{}, false
	}
	return c, true
}

// readInput reads the four contact fields from a form or JSON body and
// validates them.
func readInput(w http.ResponseWriter, r *http.Request) (contact.Input, error) {
	var raw contact.Input

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&raw); err != nil {
			return contact.Input{}, &badRequestError{err: err}
		}
	} else {
		raw = contact.Input{
			FirstName:   r.PostFormValue(contact.FieldFirstName),
			LastName:    r.PostFormValue(contact.FieldLastName),
			PhoneNumber: r.PostFormValue(contact.FieldPhoneNumber),
			Email:       r.PostFormValue(contact.FieldEmail),
		}
	}

	return contact.Validate(raw.FirstName, raw.LastName, raw.PhoneNumber, raw.Email)
}

const maxBodyBytes = 64 << 10

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

// wantsHTML reports whether an error should be rendered as a page. Only GET
// navigations from a browser get HTML; everything else gets JSON.
func wantsHTML(r *http.Request) bool {
	return r.Method == http.MethodGet && strings.Contains(r.Header.Get("Accept"), "text/html")
}

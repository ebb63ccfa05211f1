package api

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/notesd/internal/apperr"
	"github.com/starford/notesd/internal/checksum"
	"github.com/starford/notesd/internal/storage"
)

// Handler holds the note route handlers. It keeps no state of its own.
type Handler struct {
	store  storage.Store
	logger *slog.Logger
}

// NewHandler creates a new Handler over store.
func NewHandler(store storage.Store, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{store: store, logger: logger}
}

// ListNotes handles GET /notes.
//
//	@Summary		Get all notes
//	@Tags			notes
//	@Produce		json
//	@Success		200	{array}	models.Note
//	@Router			/notes [get]
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := h.store.List()
	if err != nil {
		h.writeError(w, r, "list", "", err)
		return
	}
	writeJSON(w, http.StatusOK, notes)
}

// GetNote handles GET /notes/{name}.
//
//	@Summary		Get a note by name
//	@Tags			notes
//	@Produce		plain
//	@Param			name	path		string	true	"The name of the note"
//	@Success		200		{string}	string	"The content of the note"
//	@Failure		404		{string}	string	"Not found"
//	@Router			/notes/{name} [get]
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	name := noteName(r)
	text, err := h.store.Read(name)
	if err != nil {
		h.writeError(w, r, "get", name, err)
		return
	}
	w.Header().Set("ETag", checksum.ETag(text))
	writeText(w, http.StatusOK, text)
}

// CreateNote handles POST /write.
//
//	@Summary		Create a new note
//	@Tags			notes
//	@Accept			x-www-form-urlencoded,mpfd,json
//	@Produce		plain
//	@Param			note_name	formData	string	true	"Name of the note"
//	@Param			note		formData	string	true	"Text of the note"
//	@Success		201			{string}	string	"Created"
//	@Failure		400			{string}	string	"Note already exists"
//	@Router			/write [post]
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	req, err := decodeCreate(r)
	if err != nil {
		h.writeError(w, r, "create", "", err)
		return
	}
	if err := h.store.Create(*req.Name, *req.Text); err != nil {
		h.writeError(w, r, "create", *req.Name, err)
		return
	}
	writeText(w, http.StatusCreated, "Created")
}

// UpdateNote handles PUT /notes/{name}.
//
//	@Summary		Update a note by name
//	@Tags			notes
//	@Accept			json,x-www-form-urlencoded
//	@Produce		plain
//	@Param			name	path		string				true	"The name of the note"
//	@Param			body	body		UpdateNoteRequest	true	"New text"
//	@Success		200		{string}	string	"Updated"
//	@Failure		400		{string}	string	"Bad request"
//	@Failure		404		{string}	string	"Not found"
//	@Router			/notes/{name} [put]
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	name := noteName(r)

	// Existence is checked before the payload so a missing note is a 404
	// whatever the body holds.
	ok, err := h.store.Exists(name)
	if err != nil {
		h.writeError(w, r, "update", name, err)
		return
	}
	if !ok {
		h.writeError(w, r, "update", name, apperr.ErrNotFound)
		return
	}

	req, err := decodeUpdate(r)
	if err != nil {
		h.writeError(w, r, "update", name, err)
		return
	}
	if err := h.store.Update(name, *req.Text); err != nil {
		h.writeError(w, r, "update", name, err)
		return
	}
	writeText(w, http.StatusOK, "Updated")
}

// DeleteNote handles DELETE /notes/{name}.
//
//	@Summary		Delete a note by name
//	@Tags			notes
//	@Produce		plain
//	@Param			name	path		string	true	"The name of the note"
//	@Success		200		{string}	string	"Deleted"
//	@Failure		404		{string}	string	"Not found"
//	@Router			/notes/{name} [delete]
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	name := noteName(r)
	if err := h.store.Delete(name); err != nil {
		h.writeError(w, r, "delete", name, err)
		return
	}
	writeText(w, http.StatusOK, "Deleted")
}

// noteName returns the decoded {name} parameter. chi matches on the raw path
// when it differs from the default encoding, leaving escapes in the value.
func noteName(r *http.Request) string {
	name := chi.URLParam(r, "name")
	if r.URL.RawPath == "" {
		return name
	}
	if decoded, err := url.PathUnescape(name); err == nil {
		return decoded
	}
	return name
}

// writeError maps a store or validation error to its status and body.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, op, name string, err error) {
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		writeText(w, http.StatusRequestEntityTooLarge, "Request body too large")
	case errors.Is(err, apperr.ErrNotFound):
		writeText(w, http.StatusNotFound, "Not found")
	case errors.Is(err, apperr.ErrAlreadyExists):
		writeText(w, http.StatusBadRequest, "Note already exists")
	case errors.Is(err, apperr.ErrInvalidName):
		writeText(w, http.StatusBadRequest, "Bad request: invalid note name")
	case errors.Is(err, apperr.ErrValidation):
		msg := strings.TrimPrefix(err.Error(), apperr.ErrValidation.Error()+": ")
		writeText(w, http.StatusBadRequest, "Bad request: "+msg)
	default:
		h.logger.Error(op+" note failed",
			slog.String("name", name),
			slog.String("request_id", requestID(r)),
			slog.String("error", err.Error()))
		writeText(w, http.StatusInternalServerError, "Internal error")
	}
}

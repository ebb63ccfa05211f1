package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/notesd/internal/apperr"
)

const maxBodyBytes = 10 << 20

// CreateNoteRequest is the payload of POST /write. Both fields must be
// present; an empty note text is allowed.
type CreateNoteRequest struct {
	Name *string `json:"note_name"`
	Text *string `json:"note"`
}

// Validate checks that both fields were supplied.
func (r *CreateNoteRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name, validation.NotNil),
		validation.Field(&r.Text, validation.NotNil),
	)
}

// UpdateNoteRequest is the payload of PUT /notes/{name}.
type UpdateNoteRequest struct {
	Text *string `json:"text"`
}

// Validate checks that text was supplied.
func (r *UpdateNoteRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Text, validation.NotNil),
	)
}

// bodyKind classifies the request body by its declared media type.
func bodyKind(r *http.Request) string {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return "json"
	}
	switch mt {
	case "multipart/form-data":
		return "multipart"
	case "application/x-www-form-urlencoded":
		return "form"
	default:
		return "json"
	}
}

// formValue returns a pointer to the first value of key, or nil when the
// field is absent from the form.
func formValue(r *http.Request, key string) *string {
	vs, ok := r.PostForm[key]
	if !ok || len(vs) == 0 {
		return nil
	}
	return &vs[0]
}

func parseForm(r *http.Request, kind string) error {
	if kind == "multipart" {
		return r.ParseMultipartForm(maxBodyBytes)
	}
	return r.ParseForm()
}

// decodeJSON decodes a JSON body into v. An empty body leaves v untouched.
func decodeJSON(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// decodeCreate reads a create payload from a URL-encoded form, a multipart
// form, or a JSON object carrying the same field names.
func decodeCreate(r *http.Request) (*CreateNoteRequest, error) {
	req := &CreateNoteRequest{}
	switch kind := bodyKind(r); kind {
	case "form", "multipart":
		if err := parseForm(r, kind); err != nil {
			return nil, fmt.Errorf("%w: invalid form body: %w", apperr.ErrValidation, err)
		}
		req.Name = formValue(r, "note_name")
		req.Text = formValue(r, "note")
	default:
		if err := decodeJSON(r, req); err != nil {
			return nil, fmt.Errorf("%w: invalid JSON body: %w", apperr.ErrValidation, err)
		}
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: note_name and note are required", apperr.ErrValidation)
	}
	return req, nil
}

// decodeUpdate reads an update payload from JSON or form bodies.
func decodeUpdate(r *http.Request) (*UpdateNoteRequest, error) {
	req := &UpdateNoteRequest{}
	switch kind := bodyKind(r); kind {
	case "form", "multipart":
		if err := parseForm(r, kind); err != nil {
			return nil, fmt.Errorf("%w: invalid form body: %w", apperr.ErrValidation, err)
		}
		req.Text = formValue(r, "text")
	default:
		if err := decodeJSON(r, req); err != nil {
			return nil, fmt.Errorf("%w: invalid JSON body: %w", apperr.ErrValidation, err)
		}
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: text is undefined", apperr.ErrValidation)
	}
	return req, nil
}

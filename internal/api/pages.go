package api

import (
	_ "embed"
	"net/http"
)

var (
	//go:embed static/UploadForm.html
	uploadForm []byte

	//go:embed static/openapi.yaml
	openAPIDoc []byte

	//go:embed static/docs.html
	docsPage []byte
)

// Welcome handles GET /.
func Welcome(w http.ResponseWriter, _ *http.Request) {
	writeText(w, http.StatusOK, "Welcome to my API!")
}

// UploadForm handles GET /UploadForm.html, a form posting to /write.
func UploadForm(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(uploadForm)
}

// Docs serves a Swagger UI page rendering the API description.
func Docs(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(docsPage)
}

// OpenAPI serves the API description.
func OpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(openAPIDoc)
}

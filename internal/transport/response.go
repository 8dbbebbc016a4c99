package transport

import (
	"net/http"

	"github.com/pmorken/kinsource/internal/model"
)

// Response is one completed API exchange: status, headers, and raw body
type Response struct {
	URL        string
	StatusCode int
	Body       []byte

	header http.Header
}

// Data decodes the response body into a typed envelope
func (r *Response) Data() (*model.Envelope, error) {
	return model.ParseEnvelope(r.Body)
}

// Header returns the named response header, or "" when absent
func (r *Response) Header(name string) string {
	if r.header == nil {
		return ""
	}
	return r.header.Get(name)
}

// Location returns the redirect target set by create/update responses
func (r *Response) Location() string {
	return r.Header("Location")
}

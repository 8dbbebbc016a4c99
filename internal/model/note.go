package model

// Note is a free-text annotation attached to a source description or entity
type Note struct {
	ID          string       `json:"id,omitempty"`
	Subject     string       `json:"subject,omitempty"`
	Text        string       `json:"text,omitempty"`
	Attribution *Attribution `json:"attribution,omitempty"`
	Links       Links        `json:"links,omitempty"`
}

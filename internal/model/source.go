package model

// TextValue is a possibly language-tagged text fragment
type TextValue struct {
	Lang  string `json:"lang,omitempty"`
	Value string `json:"value"`
}

// Attribution records who changed a conclusion and why
type Attribution struct {
	Contributor   *ResourceReference `json:"contributor,omitempty"`
	Modified      int64              `json:"modified,omitempty"` // Epoch milliseconds
	ChangeMessage string             `json:"changeMessage,omitempty"`
}

// ResourceReference points at another resource by URI
type ResourceReference struct {
	Resource   string `json:"resource,omitempty"`
	ResourceID string `json:"resourceId,omitempty"`
}

// Tag classifies what a source reference supports (name, gender, birth, ...)
type Tag struct {
	Resource string `json:"resource"`
}

// SourceDescription describes a cited historical source
type SourceDescription struct {
	ID          string       `json:"id,omitempty"`
	About       string       `json:"about,omitempty"`     // URI of the described record
	Titles      []TextValue  `json:"titles,omitempty"`
	Citations   []TextValue  `json:"citations,omitempty"`
	Notes       []Note       `json:"notes,omitempty"`
	Attribution *Attribution `json:"attribution,omitempty"`
	Links       Links        `json:"links,omitempty"`
}

// Title returns the first title value, or "" when untitled
func (sd *SourceDescription) Title() string {
	if len(sd.Titles) == 0 {
		return ""
	}
	return sd.Titles[0].Value
}

// Citation returns the first citation value, or "" when none is recorded
func (sd *SourceDescription) Citation() string {
	if len(sd.Citations) == 0 {
		return ""
	}
	return sd.Citations[0].Value
}

// SourceRef is a reference from an entity to a SourceDescription.
// Description is either a full URL or a local fragment reference "#<id>".
//
// AttachedEntityID, AttachedEntityURL and Resolved are derived attributes not
// present in the wire format; the resolver stamps them during cross-reference
// resolution.
type SourceRef struct {
	ID          string       `json:"id,omitempty"`
	Description string       `json:"description"`
	Tags        []Tag        `json:"tags,omitempty"`
	Attribution *Attribution `json:"attribution,omitempty"`

	AttachedEntityID  string             `json:"-"`
	AttachedEntityURL string             `json:"-"`
	Resolved          *SourceDescription `json:"-"`
}

// IsFragment reports whether the reference points into its own envelope
// rather than at a separately fetchable resource
func (sr *SourceRef) IsFragment() bool {
	return len(sr.Description) > 0 && sr.Description[0] == '#'
}

// FragmentID returns the description id a fragment reference points at,
// or "" for absolute references
func (sr *SourceRef) FragmentID() string {
	if !sr.IsFragment() {
		return ""
	}
	return sr.Description[1:]
}

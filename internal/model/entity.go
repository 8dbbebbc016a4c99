package model

// Link is a hypermedia link attached to a resource
type Link struct {
	Href     string `json:"href,omitempty"`
	Template string `json:"template,omitempty"`
}

// Links maps link names ("person", "relationship", ...) to their targets
type Links map[string]Link

// Href returns the href of the named link, or "" when the link is absent.
// Paginated responses may omit self links entirely.
func (l Links) Href(name string) string {
	if l == nil {
		return ""
	}
	return l[name].Href
}

// Entity is implemented by every record kind that can carry source
// references: persons, couple relationships, and child-and-parents
// relationships
type Entity interface {
	EntityID() string
	SelfURL() string
	SourceRefs() []SourceRef
}

// Person is a tree person record
type Person struct {
	ID      string      `json:"id"`
	Living  bool        `json:"living,omitempty"`
	Display *NameForm   `json:"display,omitempty"`
	Links   Links       `json:"links,omitempty"`
	Sources []SourceRef `json:"sources,omitempty"`
	Notes   []Note      `json:"notes,omitempty"`
}

// NameForm holds display-ready name parts
type NameForm struct {
	Name      string `json:"name,omitempty"`
	Gender    string `json:"gender,omitempty"`
	Lifespan  string `json:"lifespan,omitempty"`
	BirthDate string `json:"birthDate,omitempty"`
	DeathDate string `json:"deathDate,omitempty"`
}

func (p *Person) EntityID() string        { return p.ID }
func (p *Person) SelfURL() string         { return p.Links.Href("person") }
func (p *Person) SourceRefs() []SourceRef { return p.Sources }

// Relationship is a couple relationship between two persons
type Relationship struct {
	ID      string             `json:"id"`
	Type    string             `json:"type,omitempty"`
	Person1 *ResourceReference `json:"person1,omitempty"`
	Person2 *ResourceReference `json:"person2,omitempty"`
	Links   Links              `json:"links,omitempty"`
	Sources []SourceRef        `json:"sources,omitempty"`
	Notes   []Note             `json:"notes,omitempty"`
}

func (r *Relationship) EntityID() string        { return r.ID }
func (r *Relationship) SelfURL() string         { return r.Links.Href("relationship") }
func (r *Relationship) SourceRefs() []SourceRef { return r.Sources }

// ChildAndParentsRelationship links a child to one or both parents
type ChildAndParentsRelationship struct {
	ID     string             `json:"id"`
	Father *ResourceReference `json:"father,omitempty"`
	Mother *ResourceReference `json:"mother,omitempty"`
	Child  *ResourceReference `json:"child,omitempty"`
	Links  Links              `json:"links,omitempty"`

	Sources []SourceRef `json:"sources,omitempty"`
	Notes   []Note      `json:"notes,omitempty"`
}

func (r *ChildAndParentsRelationship) EntityID() string        { return r.ID }
func (r *ChildAndParentsRelationship) SelfURL() string         { return r.Links.Href("relationship") }
func (r *ChildAndParentsRelationship) SourceRefs() []SourceRef { return r.Sources }

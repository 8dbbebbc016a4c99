// Package resolve stitches partially-denormalized API envelopes into a
// coherent typed view: source references carried by persons and relationships
// are stamped with the entity that owns them, and "#id" fragment references
// are resolved against the envelope's own sourceDescriptions collection.
package resolve

import "github.com/pmorken/kinsource/internal/model"

// Collection names the entity collections an envelope may carry
type Collection string

const (
	CollectionPersons                      Collection = "persons"
	CollectionRelationships                Collection = "relationships"
	CollectionChildAndParentsRelationships Collection = "childAndParentsRelationships"
)

// Options controls a single resolution pass
type Options struct {
	// IncludeDescriptions exposes the envelope's sourceDescriptions through
	// the view in query mode. Root mode always indexes descriptions because
	// fragment resolution needs the lookup.
	IncludeDescriptions bool

	// Root switches the resolver into single-entity mode: only the first
	// element of the named collection is considered. Empty means query mode
	// over all three collections.
	Root Collection
}

// View is the augmented read surface over one envelope. It holds references
// to (not copies of) the envelope's description collection; source refs are
// shallow-copied so derived attributes never leak back into the envelope.
type View struct {
	env          *model.Envelope
	descriptions []*model.SourceDescription

	personRefs          []*model.SourceRef
	coupleRefs          []*model.SourceRef
	childAndParentsRefs []*model.SourceRef

	rootRefs []*model.SourceRef
	rooted   bool
}

// Resolve builds an augmented view over env. It is a pure transform: env is
// never mutated, so resolving the same envelope twice yields equal results.
// Missing collections, entities, links, and fragment targets all degrade to
// empty results rather than errors.
func Resolve(env *model.Envelope, opts Options) *View {
	if env == nil {
		env = &model.Envelope{}
	}

	v := &View{env: env}

	if opts.IncludeDescriptions || opts.Root != "" {
		v.descriptions = make([]*model.SourceDescription, 0, len(env.SourceDescriptions))
		for i := range env.SourceDescriptions {
			v.descriptions = append(v.descriptions, &env.SourceDescriptions[i])
		}
	}

	if opts.Root != "" {
		v.rooted = true
		v.rootRefs = v.resolveRoot(opts.Root)
		return v
	}

	for i := range env.Persons {
		v.personRefs = append(v.personRefs, stampRefs(&env.Persons[i])...)
	}
	for i := range env.Relationships {
		v.coupleRefs = append(v.coupleRefs, stampRefs(&env.Relationships[i])...)
	}
	for i := range env.ChildAndParentsRelationships {
		v.childAndParentsRefs = append(v.childAndParentsRefs, stampRefs(&env.ChildAndParentsRelationships[i])...)
	}

	return v
}

// resolveRoot handles single-entity mode: only the first element of the root
// collection contributes refs, and fragment references are resolved in-envelope.
func (v *View) resolveRoot(root Collection) []*model.SourceRef {
	entity := v.firstEntity(root)
	if entity == nil {
		return nil
	}

	refs := stampRefs(entity)
	for _, ref := range refs {
		if ref.IsFragment() {
			// Unmatched ids leave Resolved nil; a fabricated
			// description would be worse than none.
			ref.Resolved = v.SourceDescription(ref.FragmentID())
		}
	}
	return refs
}

func (v *View) firstEntity(root Collection) model.Entity {
	env := v.env
	switch root {
	case CollectionPersons:
		if len(env.Persons) > 0 {
			return &env.Persons[0]
		}
	case CollectionRelationships:
		if len(env.Relationships) > 0 {
			return &env.Relationships[0]
		}
	case CollectionChildAndParentsRelationships:
		if len(env.ChildAndParentsRelationships) > 0 {
			return &env.ChildAndParentsRelationships[0]
		}
	}
	return nil
}

// stampRefs shallow-copies an entity's source refs and records which entity
// owns them. Server order is preserved.
func stampRefs(entity model.Entity) []*model.SourceRef {
	raw := entity.SourceRefs()
	if len(raw) == 0 {
		return nil
	}

	refs := make([]*model.SourceRef, 0, len(raw))
	for i := range raw {
		ref := raw[i]
		ref.AttachedEntityID = entity.EntityID()
		ref.AttachedEntityURL = entity.SelfURL()
		refs = append(refs, &ref)
	}
	return refs
}

// SourceDescriptions returns the wrapped description collection. Empty unless
// IncludeDescriptions was set or the view is rooted.
func (v *View) SourceDescriptions() []*model.SourceDescription {
	return v.descriptions
}

// SourceDescription looks up a description by id. Ids compare as opaque
// strings; the first match wins and an unmatched id returns nil.
func (v *View) SourceDescription(id string) *model.SourceDescription {
	for _, sd := range v.descriptions {
		if sd.ID == id {
			return sd
		}
	}
	return nil
}

// PersonSourceRefs returns every source ref across the persons collection,
// flattened in entity order then server order
func (v *View) PersonSourceRefs() []*model.SourceRef { return v.personRefs }

// CoupleSourceRefs returns every source ref across the couple relationships
// collection
func (v *View) CoupleSourceRefs() []*model.SourceRef { return v.coupleRefs }

// ChildAndParentsSourceRefs returns every source ref across the
// child-and-parents relationships collection
func (v *View) ChildAndParentsSourceRefs() []*model.SourceRef { return v.childAndParentsRefs }

// SourceRefs returns the root entity's ordered source refs. Only meaningful
// in single-entity mode; nil otherwise.
func (v *View) SourceRefs() []*model.SourceRef {
	if !v.rooted {
		return nil
	}
	return v.rootRefs
}

// PersonIDs returns the ids of every person in the envelope
func (v *View) PersonIDs() []string {
	ids := make([]string, 0, len(v.env.Persons))
	for i := range v.env.Persons {
		ids = append(ids, v.env.Persons[i].ID)
	}
	return ids
}

// CoupleIDs returns the ids of every couple relationship in the envelope
func (v *View) CoupleIDs() []string {
	ids := make([]string, 0, len(v.env.Relationships))
	for i := range v.env.Relationships {
		ids = append(ids, v.env.Relationships[i].ID)
	}
	return ids
}

// ChildAndParentsIDs returns the ids of every child-and-parents relationship
// in the envelope
func (v *View) ChildAndParentsIDs() []string {
	ids := make([]string, 0, len(v.env.ChildAndParentsRelationships))
	for i := range v.env.ChildAndParentsRelationships {
		ids = append(ids, v.env.ChildAndParentsRelationships[i].ID)
	}
	return ids
}

// Envelope returns the underlying envelope the view was built over
func (v *View) Envelope() *model.Envelope { return v.env }

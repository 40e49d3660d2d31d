package usecase

import (
	"itemsync/internal/sync/domain/model"
)

// AttributeSpec declares how one canonical attribute is reconciled. The
// policy is pure data: behavioral differences between item variants live
// here, not in copied code paths.
type AttributeSpec struct {
	// Name is the canonical attribute name. It always wins over aliases.
	Name string
	// Aliases are legacy source names mapping to the same attribute.
	Aliases []string
	Type    model.AttributeType
	// Required attributes must parse to positive integers before any write
	// is attempted; a failure aborts the whole upsert.
	Required bool
	// CreateOnly attributes are settable during create only; the store
	// forbids changing them post-creation, so update mode skips them.
	CreateOnly bool
	// Watched attributes participate in outbound change diffing.
	Watched bool
	// MaxLen, when positive, bounds string values.
	MaxLen int
}

// ReconciliationPolicy is one versioned reconciliation table plus the line
// collection layout. Callers select a version; the engine is otherwise
// identical across variants.
type ReconciliationPolicy struct {
	Version    string
	Attributes []AttributeSpec

	// LineCollection names the record sub-collection holding party lines.
	LineCollection string
	// LineKeyField is the field that keys entries within the collection.
	LineKeyField string
	// PreferredField is forced true on every reconciled line.
	PreferredField string
	// DemotePreferred clears the preferred flag on all other lines when a
	// line is reconciled, keeping at most one preferred entry.
	DemotePreferred bool

	byName map[string]*AttributeSpec
}

// NewPolicy builds a policy and indexes its attribute table.
func NewPolicy(version string, attrs []AttributeSpec, lineCollection, lineKeyField, preferredField string) *ReconciliationPolicy {
	p := &ReconciliationPolicy{
		Version:         version,
		Attributes:      attrs,
		LineCollection:  lineCollection,
		LineKeyField:    lineKeyField,
		PreferredField:  preferredField,
		DemotePreferred: true,
	}
	p.byName = make(map[string]*AttributeSpec, len(attrs))
	for i := range p.Attributes {
		p.byName[p.Attributes[i].Name] = &p.Attributes[i]
	}
	return p
}

// Spec returns the attribute spec for a canonical name.
func (p *ReconciliationPolicy) Spec(name string) (*AttributeSpec, bool) {
	s, ok := p.byName[name]
	return s, ok
}

// RequiredAttributes returns the specs that must validate before any write.
func (p *ReconciliationPolicy) RequiredAttributes() []AttributeSpec {
	var out []AttributeSpec
	for _, s := range p.Attributes {
		if s.Required {
			out = append(out, s)
		}
	}
	return out
}

// WatchedAttributes returns the names diffed by the outbound notifier.
func (p *ReconciliationPolicy) WatchedAttributes() []string {
	var out []string
	for _, s := range p.Attributes {
		if s.Watched {
			out = append(out, s.Name)
		}
	}
	return out
}

// Canonical attribute names for the item entity.
const (
	AttrUPCCode     = "upcCode"
	AttrCrossLinkA  = "crossLinkIdA"
	AttrCrossLinkB  = "crossLinkIdB"
	AttrDescription = "description"
	AttrBaseUnit    = "baseUnit"
	AttrWeight      = "weight"
	AttrListPrice   = "listPrice"
	AttrIsActive    = "isActive"
	AttrNotes       = "notes"
)

// DefaultPolicy returns the v1 item reconciliation table.
func DefaultPolicy() *ReconciliationPolicy {
	return NewPolicy("v1", []AttributeSpec{
		{Name: AttrUPCCode, Type: model.AttributeTypeString, Watched: true, MaxLen: 20},
		{Name: AttrCrossLinkA, Type: model.AttributeTypeInt, Required: true},
		{Name: AttrCrossLinkB, Type: model.AttributeTypeInt, Required: true},
		{Name: AttrDescription, Aliases: []string{"salesDescription"}, Type: model.AttributeTypeString, Watched: true},
		{Name: AttrBaseUnit, Aliases: []string{"unitOfMeasure"}, Type: model.AttributeTypeString, CreateOnly: true},
		{Name: AttrWeight, Type: model.AttributeTypeDecimal, Watched: true},
		{Name: AttrListPrice, Aliases: []string{"price"}, Type: model.AttributeTypeDecimal, Watched: true},
		{Name: AttrIsActive, Aliases: []string{"active"}, Type: model.AttributeTypeBool},
		{Name: AttrNotes, Type: model.AttributeTypeText},
	}, "partyLines", "partyId", "preferred")
}

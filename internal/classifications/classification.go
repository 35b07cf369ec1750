// Package classifications defines the closed set of document kinds an operator
// can assign during review, the classification value that pairs a kind with its
// optional description, and the text normalization shared by addresses and
// descriptions.
package classifications

import (
	"fmt"
	"strings"
)

// Kind identifies the category an operator assigns to a source document.
type Kind string

const (
	KindChecklist Kind = "CHECKLIST"
	KindMTW       Kind = "MTW"
	KindRecharge  Kind = "RECHARGE"
	KindBMD       Kind = "BMD"
	KindWorkOrder Kind = "WORK_ORDER"
	KindSkip      Kind = "SKIP"
)

var kinds = []Kind{
	KindChecklist,
	KindMTW,
	KindRecharge,
	KindBMD,
	KindWorkOrder,
	KindSkip,
}

var labels = map[Kind]string{
	KindChecklist: "Inspection Checklist",
	KindMTW:       "AC Gold MTW",
	KindRecharge:  "Rechargeable Works",
	KindBMD:       "BMD Works",
	KindWorkOrder: "Work Order",
	KindSkip:      "Skip",
}

// Kinds returns every known kind in display order.
func Kinds() []Kind {
	out := make([]Kind, len(kinds))
	copy(out, kinds)
	return out
}

// ParseKind resolves a kind from its name, ignoring case and surrounding space.
func ParseKind(s string) (Kind, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return "", ErrKindRequired
	}
	k := Kind(s)
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
	return k, nil
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	_, ok := labels[k]
	return ok
}

// RequiresDescription reports whether k carries a mandatory description.
func (k Kind) RequiresDescription() bool {
	return k == KindWorkOrder
}

// Label returns the operator-facing name of the kind.
func (k Kind) Label() string {
	if l, ok := labels[k]; ok {
		return l
	}
	return string(k)
}

func (k Kind) String() string {
	return string(k)
}

// Classification is the operator's decision for one document. Description is
// only populated for kinds that require it and is always stored normalized.
type Classification struct {
	Kind        Kind   `json:"kind" msgpack:"kind"`
	Description string `json:"description,omitempty" msgpack:"description,omitempty"`
}

// New builds a validated classification. Descriptions are normalized; a
// description supplied for a kind that does not carry one is discarded.
func New(kind Kind, description string) (Classification, error) {
	c := Classification{Kind: kind}
	if kind.RequiresDescription() {
		c.Description = Normalize(description)
	}
	if err := c.Validate(); err != nil {
		return Classification{}, err
	}
	return c, nil
}

// Parse is New for a kind given by name.
func Parse(kind, description string) (Classification, error) {
	k, err := ParseKind(kind)
	if err != nil {
		return Classification{}, err
	}
	return New(k, description)
}

// Validate checks that a kind is chosen and that a required description is
// non-empty after normalization.
func (c Classification) Validate() error {
	if c.Kind == "" {
		return ErrKindRequired
	}
	if !c.Kind.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownKind, c.Kind)
	}
	if c.Kind.RequiresDescription() && Normalize(c.Description) == "" {
		return ErrDescriptionRequired
	}
	return nil
}

// IsZero reports whether no kind has been assigned.
func (c Classification) IsZero() bool {
	return c.Kind == ""
}

// Skipped reports whether the classification is the explicit skip marker.
func (c Classification) Skipped() bool {
	return c.Kind == KindSkip
}

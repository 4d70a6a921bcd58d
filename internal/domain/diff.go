package domain

// AttributeChange is a single changed attribute with its old and new values.
type AttributeChange struct {
	Field string `json:"field" yaml:"field"`
	Old   string `json:"old" yaml:"old"`
	New   string `json:"new" yaml:"new"`
}

// Diff lists the attributes that differ between two bundles, in canonical field order.
type Diff []AttributeChange

// Empty reports whether nothing changed.
func (d Diff) Empty() bool {
	return len(d) == 0
}

// Field returns the change for the given field name, if present.
func (d Diff) Field(name string) (AttributeChange, bool) {
	for _, c := range d {
		if c.Field == name {
			return c, true
		}
	}
	return AttributeChange{}, false
}

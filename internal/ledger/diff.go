package ledger

import (
	"strconv"

	"dynamic-nft/internal/domain"
)

// DiffBundles lists the fields that differ between old and new, in canonical field order.
// btc_price is included whenever the prices differ.
func DiffBundles(old, new domain.AttributeBundle) domain.Diff {
	var d domain.Diff
	add := func(field, o, n string) {
		if o != n {
			d = append(d, domain.AttributeChange{Field: field, Old: o, New: n})
		}
	}

	add(domain.FieldColor, string(old.Color), string(new.Color))
	add(domain.FieldRarity, string(old.Rarity), string(new.Rarity))
	add(domain.FieldMood, string(old.Mood), string(new.Mood))
	add(domain.FieldAnimationSpeed, string(old.AnimationSpeed), string(new.AnimationSpeed))
	add(domain.FieldBackground, string(old.Background), string(new.Background))
	add(domain.FieldPrice, strconv.FormatInt(old.Price, 10), strconv.FormatInt(new.Price, 10))

	return d
}

// changedFields returns the field names of d.
func changedFields(d domain.Diff) []string {
	fields := make([]string, len(d))
	for i, c := range d {
		fields[i] = c.Field
	}
	return fields
}

package core

import (
	"strings"
	"unicode"

	"github.com/joseph-ayodele/cards-extractor/constants"
)

// NormalizePhoneLike keeps the decimal digits of raw (any script, not only ASCII) and puts a
// single "+" in front.
// "NA" and other digit-free answers come out as a bare "+".
func NormalizePhoneLike(raw string) string {
	var b strings.Builder
	b.Grow(len(raw) + 1)
	b.WriteByte('+')
	for _, r := range raw {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// RecordNormalizer rewrites the phone-like fields of an extracted card.
type RecordNormalizer struct {
	// PreserveSentinel keeps "NA" for phone and mobile instead of collapsing it to "+".
	PreserveSentinel bool
}

// Normalize returns a new map; values is not modified. Non phone-like fields pass through verbatim.
func (n RecordNormalizer) Normalize(values map[constants.FieldName]string) map[constants.FieldName]string {
	out := make(map[constants.FieldName]string, len(values))
	for f, v := range values {
		if !f.IsPhoneLike() {
			out[f] = v
			continue
		}
		if n.PreserveSentinel && v == constants.NotAvailable {
			out[f] = v
			continue
		}
		out[f] = NormalizePhoneLike(v)
	}
	return out
}

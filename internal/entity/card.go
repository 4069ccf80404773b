package entity

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/joseph-ayodele/cards-extractor/constants"
)

// CardImage is one image file picked up from the input directory.
type CardImage struct {
	Path   string `json:"path"`
	Name   string `json:"name"`
	Format string `json:"format"`
}

// NewCardImage builds a CardImage for path. Format is the lowercased extension.
func NewCardImage(path string) CardImage {
	return CardImage{
		Path:   path,
		Name:   filepath.Base(path),
		Format: constants.NormalizeExt(filepath.Ext(path)),
	}
}

// CardRecord holds one value per field, in the fixed field order. Build it with NewCardRecord;
// the zero value is not a valid record.
type CardRecord struct {
	values []string
}

// NewCardRecord requires a value for every field. Empty strings are allowed.
func NewCardRecord(values map[constants.FieldName]string) (CardRecord, error) {
	fields := constants.Fields()
	out := make([]string, len(fields))
	for i, f := range fields {
		v, ok := values[f]
		if !ok {
			return CardRecord{}, fmt.Errorf("card record missing field %q", f)
		}
		out[i] = v
	}
	if len(values) != len(fields) {
		return CardRecord{}, fmt.Errorf("card record has %d fields, want %d", len(values), len(fields))
	}
	return CardRecord{values: out}, nil
}

// Get returns the value for field, or "" if the field is unknown.
func (r CardRecord) Get(field constants.FieldName) string {
	for i, f := range constants.Fields() {
		if f == field && i < len(r.values) {
			return r.values[i]
		}
	}
	return ""
}

// Values returns the row in field order. The slice is a copy.
func (r CardRecord) Values() []string {
	out := make([]string, len(r.values))
	copy(out, r.values)
	return out
}

// IsZero reports whether r was built without NewCardRecord.
func (r CardRecord) IsZero() bool { return len(r.values) == 0 }

func (r CardRecord) MarshalJSON() ([]byte, error) {
	m := make(map[string]string, len(r.values))
	for i, f := range constants.Fields() {
		if i < len(r.values) {
			m[string(f)] = r.values[i]
		}
	}
	return json.Marshal(m)
}

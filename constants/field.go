package constants

import (
	"strings"
)

// FieldName identifies one business-card attribute. The string value is used both as the
// LLM query key and as the output column header.
type FieldName string

const (
	FirstName   FieldName = "first name"
	LastName    FieldName = "last name"
	Designation FieldName = "designation"
	Company     FieldName = "company"
	Phone       FieldName = "phone"
	Mobile      FieldName = "mobile"
	Email       FieldName = "email"
	Website     FieldName = "website"
	Country     FieldName = "country"
	Address     FieldName = "address"
)

// NotAvailable is the sentinel the model returns when a field cannot be determined.
const NotAvailable = "NA"

var allFields = []FieldName{
	FirstName,
	LastName,
	Designation,
	Company,
	Phone,
	Mobile,
	Email,
	Website,
	Country,
	Address,
}

// Fields returns the fixed field order. The slice is a copy.
func Fields() []FieldName {
	out := make([]FieldName, len(allFields))
	copy(out, allFields)
	return out
}

// FieldCount is the number of columns in every record.
func FieldCount() int { return len(allFields) }

// AsStringSlice returns the header row.
func AsStringSlice() []string {
	result := make([]string, len(allFields))
	for i, f := range allFields {
		result[i] = string(f)
	}
	return result
}

// IsPhoneLike reports whether the field holds a phone number and gets digit normalization.
func (f FieldName) IsPhoneLike() bool {
	return f == Phone || f == Mobile
}

// Canonicalize maps loose user input ("First_Name", "tel") to a known field.
func Canonicalize(input string) (FieldName, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	normalized = strings.NewReplacer("_", " ", "-", " ").Replace(normalized)
	if normalized == "" {
		return "", false
	}

	synonyms := map[string]FieldName{
		"firstname":    FirstName,
		"given name":   FirstName,
		"lastname":     LastName,
		"surname":      LastName,
		"title":        Designation,
		"job title":    Designation,
		"position":     Designation,
		"org":          Company,
		"organization": Company,
		"tel":          Phone,
		"telephone":    Phone,
		"cell":         Mobile,
		"mobile phone": Mobile,
		"e mail":       Email,
		"url":          Website,
		"web":          Website,
	}
	if f, ok := synonyms[normalized]; ok {
		return f, true
	}

	for _, f := range allFields {
		if normalized == string(f) {
			return f, true
		}
	}
	return "", false
}

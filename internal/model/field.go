package model

import "strings"

// FieldType identifies the storage type of a dataset column.
type FieldType string

const (
	FieldTypeInteger FieldType = "integer"
	FieldTypeBigint  FieldType = "bigint"
	FieldTypeFloat   FieldType = "double precision"
	FieldTypeNumeric FieldType = "numeric"
	FieldTypeText    FieldType = "text"
)

// String returns the string representation of the field type.
func (t FieldType) String() string {
	return string(t)
}

// IsNumeric reports whether the field type can hold a category count.
func (t FieldType) IsNumeric() bool {
	switch t {
	case FieldTypeInteger, FieldTypeBigint, FieldTypeFloat, FieldTypeNumeric:
		return true
	}
	return false
}

// Field describes one column of a dataset table.
type Field struct {
	Name string    `json:"name"`
	Type FieldType `json:"type"`
}

// Schema is the ordered column set of a dataset table.
type Schema []Field

// Has reports whether the schema contains the named field.
// Postgres folds unquoted identifiers to lower case, so the
// comparison is case-insensitive.
func (s Schema) Has(name string) bool {
	for _, f := range s {
		if strings.EqualFold(f.Name, name) {
			return true
		}
	}
	return false
}

// Names returns the field names in schema order.
func (s Schema) Names() []string {
	names := make([]string, len(s))
	for i, f := range s {
		names[i] = f.Name
	}
	return names
}

package lead

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// FieldType is the input type declared for a schema field
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldTextarea FieldType = "textarea"
	FieldSelect   FieldType = "select"
	FieldNumber   FieldType = "number"
	FieldDate     FieldType = "date"
	FieldEmail    FieldType = "email"
	FieldTel      FieldType = "tel"
)

// Normalize maps unknown or empty types to text.
func (t FieldType) Normalize() FieldType {
	switch t {
	case FieldText, FieldTextarea, FieldSelect, FieldNumber, FieldDate, FieldEmail, FieldTel:
		return t
	default:
		return FieldText
	}
}

// Flag is a boolean that also accepts "true", "1" and 1 from loosely typed sources.
type Flag bool

func (f *Flag) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*f = Flag(truthy(v))
	return nil
}

func (f *Flag) UnmarshalYAML(n *yaml.Node) error {
	var v any
	if err := n.Decode(&v); err != nil {
		return err
	}
	*f = Flag(truthy(v))
	return nil
}

func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t == "true" || t == "1"
	case float64:
		return t == 1
	case int:
		return t == 1
	case int64:
		return t == 1
	default:
		return false
	}
}

// FieldDefinition describes one input of a lead form
type FieldDefinition struct {
	Key      string    `json:"key" yaml:"key"`
	Label    string    `json:"label" yaml:"label"`
	Type     FieldType `json:"type" yaml:"type"`
	Required Flag      `json:"required" yaml:"required"`
	Options  []string  `json:"options,omitempty" yaml:"options,omitempty"`
	Order    int       `json:"order" yaml:"order"`
}

// DisplayName returns the label, or the key when no label is configured.
func (f FieldDefinition) DisplayName() string {
	if f.Label != "" {
		return f.Label
	}
	return f.Key
}

// DocumentTypeDefinition describes a document the form asks for
type DocumentTypeDefinition struct {
	Key      string `json:"key" yaml:"key"`
	Name     string `json:"name" yaml:"name"`
	Required Flag   `json:"required" yaml:"required"`
}

// DisplayName returns the name, or the key when no name is configured.
func (d DocumentTypeDefinition) DisplayName() string {
	if d.Name != "" {
		return d.Name
	}
	return d.Key
}

// Schema is a lead form definition served for a bank or for new leads.
// It is read-only once fetched.
type Schema struct {
	ID            string                   `json:"id" yaml:"id"`
	LeadType      LeadType                 `json:"leadType" yaml:"leadType"`
	Bank          *Ref                     `json:"bank,omitempty" yaml:"bank,omitempty"`
	Fields        []FieldDefinition        `json:"fields" yaml:"fields"`
	AgentFields   []FieldDefinition        `json:"agentFields" yaml:"agentFields"`
	DocumentTypes []DocumentTypeDefinition `json:"documentTypes" yaml:"documentTypes"`
}

func (s *Schema) UnmarshalJSON(b []byte) error {
	type plain Schema
	aux := struct {
		*plain
		MongoID string `json:"_id"`
	}{plain: (*plain)(s)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if s.ID == "" {
		s.ID = aux.MongoID
	}
	return nil
}

// EffectiveFields returns agentFields when configured, otherwise fields.
func (s *Schema) EffectiveFields() []FieldDefinition {
	if s == nil {
		return nil
	}
	if len(s.AgentFields) > 0 {
		return s.AgentFields
	}
	return s.Fields
}

// HasField reports whether key is one of the effective fields.
func (s *Schema) HasField(key string) bool {
	for _, f := range s.EffectiveFields() {
		if f.Key == key {
			return true
		}
	}
	return false
}

// DocumentType looks up a declared document type by key.
func (s *Schema) DocumentType(key string) (DocumentTypeDefinition, bool) {
	if s == nil {
		return DocumentTypeDefinition{}, false
	}
	for _, dt := range s.DocumentTypes {
		if dt.Key == key {
			return dt, true
		}
	}
	return DocumentTypeDefinition{}, false
}

// Check verifies key uniqueness within each field list and the document types.
func (s *Schema) Check() error {
	if s == nil {
		return ErrSchemaMissing
	}
	if err := uniqueFieldKeys("fields", s.Fields); err != nil {
		return err
	}
	if err := uniqueFieldKeys("agentFields", s.AgentFields); err != nil {
		return err
	}

	seen := make(map[string]struct{}, len(s.DocumentTypes))
	for _, dt := range s.DocumentTypes {
		if strings.TrimSpace(dt.Key) == "" {
			return fmt.Errorf("%w: document type without key", ErrInvalidSchema)
		}
		if _, dup := seen[dt.Key]; dup {
			return fmt.Errorf("%w: duplicate document type %q", ErrInvalidSchema, dt.Key)
		}
		seen[dt.Key] = struct{}{}
	}
	return nil
}

func uniqueFieldKeys(list string, fields []FieldDefinition) error {
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if strings.TrimSpace(f.Key) == "" {
			return fmt.Errorf("%w: %s entry without key", ErrInvalidSchema, list)
		}
		if _, dup := seen[f.Key]; dup {
			return fmt.Errorf("%w: duplicate %s key %q", ErrInvalidSchema, list, f.Key)
		}
		seen[f.Key] = struct{}{}
	}
	return nil
}

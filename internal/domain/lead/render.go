package lead

import (
	"sort"
	"strings"
)

// WidgetKind is the input control a field renders as
type WidgetKind string

const (
	KindSelect   WidgetKind = "select"
	KindTextarea WidgetKind = "textarea"
	KindInput    WidgetKind = "input"
)

// UnselectedLabel labels the blank option that leads every dropdown.
const UnselectedLabel = "-- select --"

// Option is one dropdown entry
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Widget is a field bound to its current draft value
type Widget struct {
	Key       string     `json:"key"`
	Label     string     `json:"label"`
	Kind      WidgetKind `json:"kind"`
	InputType FieldType  `json:"inputType,omitempty"`
	Required  bool       `json:"required"`
	Options   []Option   `json:"options,omitempty"`
	Value     string     `json:"value"`
}

// DocumentSlot is a requested document type with the uploads made for it
type DocumentSlot struct {
	Key      string     `json:"key"`
	Name     string     `json:"name"`
	Required bool       `json:"required"`
	Uploaded []Document `json:"uploaded"`
}

// Keys the backend fills itself on bank leads; compared lowercased.
var systemManagedKeys = []string{
	"applicantemail", "applicantmobile", "customername", "leadname",
	"asmname", "asmemail", "asmmobile",
	"smbmname", "smbmemail", "smbmmobile",
	"salary",
}

// VisibleFields returns the effective fields of s in render order: system-managed
// fields dropped on bank forms, duplicate DSA code fields collapsed to the first,
// stable-sorted by order.
func VisibleFields(s *Schema, newLead bool) []FieldDefinition {
	fields := s.EffectiveFields()
	out := make([]FieldDefinition, 0, len(fields))

	seenDSA := false
	for _, f := range fields {
		if !newLead && isSystemManaged(f) {
			continue
		}
		if isDSACode(f) {
			if seenDSA {
				continue
			}
			seenDSA = true
		}
		out = append(out, f)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Order < out[j].Order
	})
	return out
}

// Render binds the visible fields of s to the values of d.
func Render(s *Schema, d *Draft) []Widget {
	if s == nil {
		return nil
	}

	fields := VisibleFields(s, d.IsNewLead(s))
	widgets := make([]Widget, 0, len(fields))
	for _, f := range fields {
		w := Widget{
			Key:      f.Key,
			Label:    f.Label,
			Required: bool(f.Required),
			Value:    d.Value(f.Key),
		}

		switch f.Type.Normalize() {
		case FieldSelect:
			w.Kind = KindSelect
			w.Options = make([]Option, 0, len(f.Options)+1)
			w.Options = append(w.Options, Option{Value: "", Label: UnselectedLabel})
			for _, o := range f.Options {
				w.Options = append(w.Options, Option{Value: o, Label: o})
			}
		case FieldTextarea:
			w.Kind = KindTextarea
		default:
			w.Kind = KindInput
			w.InputType = f.Type.Normalize()
		}
		widgets = append(widgets, w)
	}
	return widgets
}

// RenderDocuments lists the schema's document types with matching uploads.
func RenderDocuments(s *Schema, d *Draft) []DocumentSlot {
	if s == nil {
		return nil
	}

	slots := make([]DocumentSlot, 0, len(s.DocumentTypes))
	for _, dt := range s.DocumentTypes {
		slot := DocumentSlot{
			Key:      dt.Key,
			Name:     dt.DisplayName(),
			Required: bool(dt.Required),
			Uploaded: []Document{},
		}
		for _, doc := range d.Documents {
			if doc.DocumentType == dt.Key {
				slot.Uploaded = append(slot.Uploaded, doc)
			}
		}
		slots = append(slots, slot)
	}
	return slots
}

func isSystemManaged(f FieldDefinition) bool {
	key := strings.ToLower(f.Key)
	label := strings.ToLower(f.Label)
	for _, k := range systemManagedKeys {
		if key == k || strings.Contains(label, k) {
			return true
		}
	}
	return false
}

func isDSACode(f FieldDefinition) bool {
	switch strings.ToLower(f.Key) {
	case "dsacode", "dsa_code", "codeuse":
		return true
	}
	return strings.Contains(strings.ToLower(f.Label), "dsa code")
}

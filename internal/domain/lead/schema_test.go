package lead

import (
	"errors"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestSchema_DecodeLooseJSON(t *testing.T) {
	raw := `{
		"_id": "form-1",
		"leadType": "bank",
		"bank": {"_id": "bank-9", "name": "HDFC"},
		"fields": [
			{"key": "pan", "label": "PAN", "type": "text", "required": "true", "order": 2},
			{"key": "city", "required": 0}
		],
		"documentTypes": [{"key": "aadhaar", "required": 1}]
	}`

	var s Schema
	require.NoError(t, json.Unmarshal([]byte(raw), &s))

	assert.Equal(t, "form-1", s.ID)
	assert.Equal(t, "bank-9", RefID(s.Bank))
	assert.Equal(t, "HDFC", s.Bank.Name)
	require.Len(t, s.Fields, 2)
	assert.True(t, bool(s.Fields[0].Required))
	assert.False(t, bool(s.Fields[1].Required))
	assert.True(t, bool(s.DocumentTypes[0].Required))
	assert.True(t, s.HasField("city"))
	assert.False(t, s.HasField("missing"))
}

func TestSchema_DecodeYAML(t *testing.T) {
	raw := `
id: nl
leadType: new_lead
fields:
  - key: loanType
    type: select
    required: "1"
    options: [home_loan, car_loan]
`
	var s Schema
	require.NoError(t, yaml.Unmarshal([]byte(raw), &s))

	assert.Equal(t, TypeNewLead, s.LeadType)
	assert.True(t, bool(s.Fields[0].Required))
	assert.Equal(t, []string{"home_loan", "car_loan"}, s.Fields[0].Options)
}

func TestRef_DecodeForms(t *testing.T) {
	var l Lead
	raw := `{"_id": "lead-1", "bank": "bank-1", "agent": {"id": "agent-1"}, "subAgent": null}`
	require.NoError(t, json.Unmarshal([]byte(raw), &l))

	assert.Equal(t, "lead-1", l.ID)
	assert.Equal(t, "bank-1", RefID(l.Bank))
	assert.Equal(t, "agent-1", RefID(l.Agent))
	assert.Empty(t, RefID(l.SubAgent))
}

func TestSchema_Check(t *testing.T) {
	var nilSchema *Schema
	assert.ErrorIs(t, nilSchema.Check(), ErrSchemaMissing)

	ok := &Schema{Fields: []FieldDefinition{{Key: "a"}, {Key: "b"}}, AgentFields: []FieldDefinition{{Key: "a"}}}
	assert.NoError(t, ok.Check())

	dup := &Schema{Fields: []FieldDefinition{{Key: "a"}, {Key: "a"}}}
	err := dup.Check()
	assert.True(t, errors.Is(err, ErrInvalidSchema))

	emptyDoc := &Schema{DocumentTypes: []DocumentTypeDefinition{{Key: " "}}}
	assert.ErrorIs(t, emptyDoc.Check(), ErrInvalidSchema)
}

func TestFieldType_Normalize(t *testing.T) {
	assert.Equal(t, FieldText, FieldType("").Normalize())
	assert.Equal(t, FieldText, FieldType("color").Normalize())
	assert.Equal(t, FieldTel, FieldTel.Normalize())
}

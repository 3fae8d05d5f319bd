package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadintake/internal/domain/lead"
)

const schemaYAML = `
id: form-hdfc
leadType: bank
bank: {id: bank-1, name: HDFC}
agentFields:
  - key: applicantName
    label: Applicant Name
    type: text
    required: "true"
    order: 2
  - key: loanAmount
    label: Loan Amount
    type: number
    required: 1
    order: 1
documentTypes:
  - key: pan
    name: PAN Card
    required: true
`

const draftYAML = `
standard: {}
dynamic:
  applicantName: Nisha Rao
  loanAmount: "300000"
documents:
  - documentType: pan
    url: https://files.example/pan.pdf
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestRender(t *testing.T) {
	dir := t.TempDir()
	schema := writeFile(t, dir, "schema.yaml", schemaYAML)

	out, err := runCmd(t, "render", "--schema", schema, "--role", "agent")
	require.NoError(t, err)

	var res struct {
		Fields []lead.Widget `json:"fields"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Len(t, res.Fields, 2)
	assert.Equal(t, "loanAmount", res.Fields[0].Key)
	assert.True(t, res.Fields[1].Required)
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	schema := writeFile(t, dir, "schema.yaml", schemaYAML)
	draft := writeFile(t, dir, "draft.yaml", draftYAML)

	out, err := runCmd(t, "validate", "-s", schema)
	assert.ErrorIs(t, err, errInvalidDraft)
	assert.Contains(t, out, "- Required fields missing: Applicant Name, Loan Amount")
	assert.Contains(t, out, "- Required documents missing: PAN Card")

	out, err = runCmd(t, "validate", "-s", schema, "-d", draft)
	require.NoError(t, err)
	assert.Contains(t, out, "ok")
}

func TestPayload(t *testing.T) {
	dir := t.TempDir()
	schema := writeFile(t, dir, "schema.yaml", schemaYAML)
	draft := writeFile(t, dir, "draft.yaml", draftYAML)

	out, err := runCmd(t, "payload", "-s", schema, "-d", draft)
	require.NoError(t, err)

	var p lead.Payload
	require.NoError(t, json.Unmarshal([]byte(out), &p))
	assert.Equal(t, lead.TypeBank, p.LeadType)
	require.NotNil(t, p.LeadForm)
	assert.Equal(t, "form-hdfc", *p.LeadForm)
	assert.Equal(t, "Nisha Rao", p.FormValues["applicantName"])
	assert.Equal(t, []lead.DocumentRef{{DocumentType: "pan", URL: "https://files.example/pan.pdf"}}, p.Documents)

	_, err = runCmd(t, "payload", "-s", schema)
	assert.ErrorIs(t, err, errInvalidDraft)
}

func TestToken(t *testing.T) {
	out, err := runCmd(t, "token", "--user", "u-1", "--role", "franchise", "--secret", "test-secret")
	require.NoError(t, err)
	assert.NotEmpty(t, bytes.TrimSpace([]byte(out)))
}

func TestJournalPrune(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "journal.db")

	out, err := runCmd(t, "journal", "prune", "--db", dsn, "--older-than", "1h")
	require.NoError(t, err)
	assert.Contains(t, out, "pruned 0 submissions")

	out, err = runCmd(t, "journal", "list", "--db", dsn)
	require.NoError(t, err)
	assert.Contains(t, out, "0 of 0")
}

package staff

import (
	"strings"

	"github.com/goccy/go-json"

	"leadintake/internal/domain/lead"
)

// Role is the bank-side staff role
type Role string

const (
	RoleBM  Role = "bm"
	RoleSM  Role = "sm"
	RoleASM Role = "asm"
)

const StatusActive = "active"

// Manager is a bank manager record in the staff directory
type Manager struct {
	ID     string    `json:"id,omitempty"`
	Name   string    `json:"name"`
	Email  string    `json:"email,omitempty"`
	Mobile string    `json:"mobile,omitempty"`
	Role   Role      `json:"role"`
	Bank   *lead.Ref `json:"bank,omitempty"`
	Status string    `json:"status,omitempty"`
}

func (m *Manager) UnmarshalJSON(b []byte) error {
	type plain Manager
	aux := struct {
		*plain
		MongoID string `json:"_id"`
	}{plain: (*plain)(m)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if m.ID == "" {
		m.ID = aux.MongoID
	}
	return nil
}

// MarshalJSON sends the bank as a bare id, which is what the directory expects on create.
func (m Manager) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID     string `json:"id,omitempty"`
		Name   string `json:"name"`
		Email  string `json:"email,omitempty"`
		Mobile string `json:"mobile,omitempty"`
		Role   Role   `json:"role"`
		Bank   string `json:"bank,omitempty"`
		Status string `json:"status,omitempty"`
	}{m.ID, m.Name, m.Email, m.Mobile, m.Role, lead.RefID(m.Bank), m.Status})
}

// Contact is the SM/BM contact typed into a lead form
type Contact struct {
	Name   string
	Email  string
	Mobile string
}

// IsEmpty reports whether no email or mobile was given.
func (c Contact) IsEmpty() bool {
	return strings.TrimSpace(c.Email) == "" && strings.TrimSpace(c.Mobile) == ""
}

// Matches reports whether m is the contact: same email ignoring case, or same mobile.
func (c Contact) Matches(m Manager) bool {
	email := strings.TrimSpace(c.Email)
	if email != "" && strings.EqualFold(email, strings.TrimSpace(m.Email)) {
		return true
	}
	mobile := normalizeMobile(c.Mobile)
	return mobile != "" && mobile == normalizeMobile(m.Mobile)
}

func normalizeMobile(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

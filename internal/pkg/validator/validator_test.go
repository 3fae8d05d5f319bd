package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	Key   string `json:"key" validate:"required"`
	Email string `json:"email" validate:"omitempty,email"`
	Kind  string `json:"kind,omitempty" validate:"omitempty,oneof=edit select assign"`
}

func TestValidate(t *testing.T) {
	assert.Nil(t, Validate(&sample{Key: "pan"}))

	errs := Validate(&sample{Email: "nope", Kind: "drop"})
	assert.Equal(t, map[string]string{"key": "required", "email": "email", "kind": "oneof"}, errs)
}

package models

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValidator_UsesJSONNames(t *testing.T) {
	bad := "not-an-email"
	err := NewValidator().Struct(&Partner{Email: &bad})
	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, "email", verrs[0].Field())

	err = NewValidator().Struct(EventRegistration{EventID: "e1", Age: -1})
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, "age", verrs[0].Field())
}

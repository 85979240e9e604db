package apiserver

import (
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValidatorRegistersPastDate(t *testing.T) {
	var v *validator.Validate
	require.NotPanics(t, func() { v = newValidator() })

	type form struct {
		Birthday string `json:"birthday" validate:"required,pastdate"`
	}
	assert.NoError(t, v.Struct(form{Birthday: "1990-04-01"}))
	assert.NoError(t, v.Struct(form{Birthday: time.Now().AddDate(0, 0, -2).Format(time.DateOnly)}))
	assert.Error(t, v.Struct(form{Birthday: time.Now().AddDate(0, 0, 2).Format(time.DateOnly)}))
	assert.Error(t, v.Struct(form{Birthday: "01/04/1990"}))
}

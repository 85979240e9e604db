package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		KindValidation:   http.StatusUnprocessableEntity,
		KindNotFound:     http.StatusNotFound,
		KindForbidden:    http.StatusForbidden,
		KindConflict:     http.StatusConflict,
		KindUnauthorized: http.StatusUnauthorized,
		KindInternal:     http.StatusInternalServerError,
		Kind("bogus"):    http.StatusInternalServerError,
	}
	for kind, want := range cases {
		assert.Equal(t, want, HTTPStatus(kind), kind)
	}
}

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("loading post: %w", NotFound("Post not found"))
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrForbidden))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
}

func TestPublicMessageHidesInternalCause(t *testing.T) {
	err := Internal("query posts", errors.New("pq: connection refused"))
	assert.Equal(t, "Internal server error", PublicMessage(err))
	assert.ErrorContains(t, err, "connection refused")
	assert.Equal(t, "Comment not found", PublicMessage(NotFound("Comment not found")))
}

func TestValidationFields(t *testing.T) {
	err := ValidationFields("invalid input", map[string]string{"password": "min"})
	assert.Equal(t, map[string]string{"password": "min"}, FieldsOf(err))
	assert.Nil(t, FieldsOf(errors.New("x")))
}

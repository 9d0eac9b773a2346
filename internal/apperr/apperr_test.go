package apperr_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/mauv0809/court-call/internal/apperr"
	"github.com/stretchr/testify/assert"
)

func TestKindSurvivesWrapping(t *testing.T) {
	base := apperr.Conflict("event %s is not open for registration", "ev1")
	wrapped := fmt.Errorf("register: %w", base)

	assert.True(t, apperr.IsConflict(wrapped))
	assert.False(t, apperr.IsValidation(wrapped))
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(wrapped))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, apperr.HTTPStatus(apperr.Validation("bad")))
	assert.Equal(t, http.StatusConflict, apperr.HTTPStatus(apperr.Conflict("conflict")))
	assert.Equal(t, http.StatusNotFound, apperr.HTTPStatus(apperr.NotFound("missing")))
	assert.Equal(t, http.StatusForbidden, apperr.HTTPStatus(apperr.Forbidden("nope")))
	assert.Equal(t, http.StatusInternalServerError, apperr.HTTPStatus(fmt.Errorf("boom")))
}

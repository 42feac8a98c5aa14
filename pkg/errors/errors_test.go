package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_ErrorString(t *testing.T) {
	e := NotFound("offer", "of-1")
	assert.Contains(t, e.Error(), "NOT_FOUND")
	assert.Contains(t, e.Error(), "of-1")
}

func TestAppError_Unwrap(t *testing.T) {
	assert.True(t, errors.Is(NotFound("offer", "x"), ErrNotFound))
	assert.True(t, errors.Is(InvalidInput("bad"), ErrInvalidInput))
	assert.True(t, errors.Is(InvalidState("INVALID_TRANSITION", "nope"), ErrInvalidState))
	assert.True(t, errors.Is(ProviderUnavailable("down", errors.New("timeout")), ErrServiceUnavail))
}

func TestInvalidState_CarriesCode(t *testing.T) {
	e := InvalidState("SELLER_NOT_ONBOARDED", "seller has no payout account")
	assert.Equal(t, "SELLER_NOT_ONBOARDED", e.Code)
	assert.Equal(t, http.StatusBadRequest, e.Status)
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{NotFound("offer", "x"), http.StatusNotFound},
		{AlreadyExists("user", "id", "u1"), http.StatusConflict},
		{InvalidInput("bad"), http.StatusBadRequest},
		{InvalidState("INVALID_TRANSITION", "nope"), http.StatusBadRequest},
		{Unauthorized("no token"), http.StatusUnauthorized},
		{Forbidden("not yours"), http.StatusForbidden},
		{ProviderUnavailable("down", nil), http.StatusBadGateway},
		{Internal(errors.New("boom")), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
		{fmt.Errorf("wrapped: %w", ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("wrapped: %w", ErrInvalidState), http.StatusBadRequest},
	}

	for _, c := range cases {
		assert.Equal(t, c.want, HTTPStatus(c.err), "for error %v", c.err)
	}
}

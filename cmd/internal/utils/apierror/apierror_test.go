package apierror_test

import (
	"clinicbook/cmd/internal/utils/apierror"
	"clinicbook/cmd/internal/utils/validators"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

type req struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"required,max=4"`
}

func TestFromValidationError(t *testing.T) {
	err := validators.New().Struct(req{Email: "nope", Name: "too long"})
	require.Error(t, err)

	apierr := apierror.FromValidationError(err)
	require.Equal(t, http.StatusBadRequest, apierr.Code())
	require.Equal(t, apierror.KindInvalidInput, apierr.Kind())

	body, err := json.Marshal(apierr)
	require.NoError(t, err)
	require.Contains(t, string(body), `"email":"must be a valid email address"`)
	require.Contains(t, string(body), `"name":"must be at most 4 characters long"`)
}

func TestFromValidationErrorFallsBackToMalformedBody(t *testing.T) {
	require.Equal(t, apierror.MalformedBodyError, apierror.FromValidationError(errors.New("boom")))
}

func TestNewSimpleDerivesKind(t *testing.T) {
	require.Equal(t, apierror.KindNotFound, apierror.NewSimple(http.StatusNotFound, "x").Kind())
	require.Equal(t, apierror.KindInvalidInput, apierror.NewSimple(http.StatusBadRequest, "x").Kind())
}

func TestIsMatchesKind(t *testing.T) {
	wrapped := fmt.Errorf("booking: %w", apierror.SlotTakenError)
	require.True(t, apierror.Is(wrapped, apierror.KindSlotTaken))
	require.False(t, apierror.Is(wrapped, apierror.KindConflict))
	require.True(t, apierror.Is(apierror.AlreadyCompletedError, apierror.KindAlreadyTerminal))
}

package errorutil_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/spec-kit/ticket-bot/pkg/util/errorutil"
)

func TestToDomainErrorUnwrapsWrappedDomainError(t *testing.T) {
	base := apperrors.NewConflict("❌ You already have a ticket open.", nil)
	wrapped := fmt.Errorf("open ticket: %w", base)

	de := apperrors.ToDomainError(wrapped)
	require.NotNil(t, de)
	assert.Equal(t, apperrors.CodeConflict, de.Code)
	assert.True(t, apperrors.IsUserError(wrapped))
}

func TestToDomainErrorHidesPlainErrors(t *testing.T) {
	de := apperrors.ToDomainError(errors.New("HTTP 403 Forbidden"))
	require.NotNil(t, de)
	assert.Equal(t, apperrors.CodeInternal, de.Code)
	assert.Equal(t, apperrors.GenericFailureMessage, de.Message)
	assert.False(t, apperrors.IsUserError(de))
	assert.Nil(t, apperrors.ToDomainError(nil))
}

func TestMissingConfigurationIsNotUserError(t *testing.T) {
	cause := errors.New("unknown role")
	err := apperrors.NewMissingConfiguration("staff role", cause)

	assert.False(t, apperrors.IsUserError(err))
	assert.ErrorIs(t, err, cause)
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, 403, apperrors.ToDomainError(apperrors.NewForbidden("no")).HTTPStatus())
	assert.Equal(t, 409, apperrors.ToDomainError(apperrors.NewConflict("dup", nil)).HTTPStatus())
	assert.Equal(t, 500, apperrors.ToDomainError(errors.New("boom")).HTTPStatus())
}

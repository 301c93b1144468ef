package util

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapErrorNil(t *testing.T) {
	// Must be a plain nil error, not a typed-nil *DomainError.
	assert.NoError(t, MapError(nil))
}

func TestMapErrorNoRows(t *testing.T) {
	err := MapError(pgx.ErrNoRows)
	assert.Equal(t, "NOT_FOUND", CodeOf(err))
}

func TestMapErrorKeepsDomainError(t *testing.T) {
	original := NewDomainError("UNIT_CONFLICT", "unit is held", 409, nil)
	mapped := MapError(fmt.Errorf("scheduling: %w", original))

	var domainErr *DomainError
	require.ErrorAs(t, mapped, &domainErr)
	assert.Equal(t, "UNIT_CONFLICT", domainErr.Code)
}

func TestMapErrorWrapsUnknown(t *testing.T) {
	err := MapError(errors.New("connection reset"))
	assert.Equal(t, "INTERNAL_ERROR", CodeOf(err))
}

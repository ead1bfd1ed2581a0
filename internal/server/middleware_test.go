package server

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reisekosten/reisekosten/constants"
)

func TestTokenRoundtrip(t *testing.T) {
	userID := uuid.New()
	token, err := signToken("test-secret", userID, constants.RoleController, time.Hour)
	require.NoError(t, err)

	gotID, gotRole, err := parseToken("test-secret", token)
	require.NoError(t, err)
	assert.Equal(t, userID, gotID)
	assert.Equal(t, constants.RoleController, gotRole)
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, err := signToken("secret-a", uuid.New(), constants.RoleEmployee, time.Hour)
	require.NoError(t, err)

	_, _, err = parseToken("secret-b", token)
	assert.Error(t, err)
}

func TestParseTokenExpired(t *testing.T) {
	token, err := signToken("test-secret", uuid.New(), constants.RoleEmployee, -time.Minute)
	require.NoError(t, err)

	_, _, err = parseToken("test-secret", token)
	assert.Error(t, err)
}

func TestParseTokenGarbage(t *testing.T) {
	_, _, err := parseToken("test-secret", "not-a-token")
	assert.Error(t, err)
}

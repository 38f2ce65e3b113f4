package util

import (
	"testing"
	"time"

	"peymonak_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestTokenPairRoundTrip(t *testing.T) {
	account := &model.Account{PhoneNumber: "09120000000", Role: model.RoleWorker}
	account.ID = 42

	pair, err := GenerateTokenPair(account, testSecret, time.Hour, 2*time.Hour)
	require.NoError(t, err)

	access, err := ParseJWT(pair.AccessToken, testSecret)
	require.NoError(t, err)
	assert.Equal(t, uint(42), access.AccountID)
	assert.Equal(t, model.RoleWorker, access.Role)
	assert.Equal(t, TokenTypeAccess, access.TokenType)
	assert.NotEmpty(t, access.ID)

	refresh, err := ParseJWT(pair.RefreshToken, testSecret)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeRefresh, refresh.TokenType)
	assert.NotEqual(t, access.ID, refresh.ID)
}

func TestParseJWTRejectsWrongSecretAndExpiry(t *testing.T) {
	account := &model.Account{PhoneNumber: "09120000000"}
	account.ID = 1

	token, _, err := GenerateJWT(account, TokenTypeAccess, testSecret, time.Hour)
	require.NoError(t, err)
	_, err = ParseJWT(token, "another-secret-another-secret-xx")
	assert.Error(t, err)

	expired, _, err := GenerateJWT(account, TokenTypeAccess, testSecret, -time.Minute)
	require.NoError(t, err)
	_, err = ParseJWT(expired, testSecret)
	assert.Error(t, err)
}

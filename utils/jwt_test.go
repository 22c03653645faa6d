package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseToken(t *testing.T) {
	token, err := GenerateToken(7, "admin")
	require.NoError(t, err)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "admin", claims.Role)

	exp, ok := TokenExpiry(token)
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(TokenTTL), exp, time.Minute)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	_, err := ParseToken("not-a-token")
	assert.Error(t, err)

	_, ok := TokenExpiry("not-a-token")
	assert.False(t, ok)
}

func TestJoinValidationMessages(t *testing.T) {
	got := JoinValidationMessages(map[string][]string{
		"order_text":    {"Missing data for required field."},
		"restaurant_id": {"Not a valid integer.", "Required."},
	})
	assert.Equal(t, "order_text: Missing data for required field. • restaurant_id: Not a valid integer., Required.", got)
}

func TestBlacklistedTokenIsRejected(t *testing.T) {
	token, err := GenerateToken(3, "user")
	require.NoError(t, err)

	_, err = ValidateToken(token)
	require.NoError(t, err)

	BlacklistToken(token)
	assert.True(t, IsTokenBlacklisted(token))
	_, err = ValidateToken(token)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "0123456789abcdef0123456789abcdef"

func TestIssueAndValidate(t *testing.T) {
	v := NewJWTValidator(secret)
	userID := uuid.NewString()

	token, err := v.Issue(userID, time.Hour)
	require.NoError(t, err)

	got, err := v.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestValidateRejectsExpired(t *testing.T) {
	v := NewJWTValidator(secret)

	token, err := v.Issue(uuid.NewString(), -time.Minute)
	require.NoError(t, err)

	_, err = v.ValidateToken(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsForeignSignature(t *testing.T) {
	token, err := NewJWTValidator("another-secret-another-secret-xx").Issue(uuid.NewString(), time.Hour)
	require.NoError(t, err)

	_, err = NewJWTValidator(secret).ValidateToken(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsGarbage(t *testing.T) {
	_, err := NewJWTValidator(secret).ValidateToken(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsNonUUIDSubject(t *testing.T) {
	v := NewJWTValidator(secret)
	token, err := v.Issue("42", time.Hour)
	require.NoError(t, err)

	_, err = v.ValidateToken(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

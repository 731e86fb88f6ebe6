package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndVerify(t *testing.T) {
	s := NewSigner([]string{"current", "previous"}, time.Hour)

	token, exp, err := s.Sign(42, "jane@example.com", []string{"Author"})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := s.Verify(token)
	require.NoError(t, err)
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, "jane@example.com", claims.Email)
	assert.Equal(t, []string{"Author"}, claims.Roles)
}

func TestVerifyAcceptsRotatedKey(t *testing.T) {
	old := NewSigner([]string{"previous"}, time.Hour)
	token, _, err := old.Sign(7, "a@b.c", nil)
	require.NoError(t, err)

	rotated := NewSigner([]string{"current", "previous"}, time.Hour)
	_, err = rotated.Verify(token)
	assert.NoError(t, err)

	unknown := NewSigner([]string{"other"}, time.Hour)
	_, err = unknown.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsExpired(t *testing.T) {
	s := NewSigner([]string{"k"}, time.Minute)
	s.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err := s.Sign(1, "a@b.c", nil)
	require.NoError(t, err)

	s.now = time.Now
	_, err = s.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNoKeys(t *testing.T) {
	s := NewSigner(nil, time.Hour)
	_, _, err := s.Sign(1, "a@b.c", nil)
	assert.ErrorIs(t, err, ErrNoSigningKeys)
	_, err = s.Verify("x.y.z")
	assert.ErrorIs(t, err, ErrNoSigningKeys)
}

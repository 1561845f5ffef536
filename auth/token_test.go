package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pairchat/errors"
)

func newTestIssuer() *TokenIssuer {
	return NewTokenIssuer("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
}

func TestTokenIssuer_IssueAndVerifyPair(t *testing.T) {
	req := require.New(t)
	issuer := newTestIssuer()

	access, refresh, err := issuer.IssuePair("user-42")
	req.NoError(err)
	req.NotEqual(access, refresh)

	userID, err := issuer.VerifyAccess(access)
	req.NoError(err)
	req.Equal("user-42", userID)

	userID, err = issuer.VerifyRefresh(refresh)
	req.NoError(err)
	req.Equal("user-42", userID)
}

func TestTokenIssuer_KindsAreNotInterchangeable(t *testing.T) {
	req := require.New(t)
	issuer := newTestIssuer()

	access, refresh, err := issuer.IssuePair("user-42")
	req.NoError(err)

	// A refresh token never passes as an access token and vice versa
	_, err = issuer.VerifyAccess(refresh)
	req.True(errors.Is(err, errors.KindUnauthorized))
	_, err = issuer.VerifyRefresh(access)
	req.True(errors.Is(err, errors.KindUnauthorized))
}

func TestTokenIssuer_ExpiredTokenRejected(t *testing.T) {
	req := require.New(t)
	issuer := NewTokenIssuer("access-secret", "refresh-secret", -time.Minute, -time.Minute)

	access, _, err := issuer.IssuePair("user-42")
	req.NoError(err)

	_, err = issuer.VerifyAccess(access)
	req.True(errors.Is(err, errors.KindUnauthorized))
}

func TestTokenIssuer_WrongSecretRejected(t *testing.T) {
	req := require.New(t)
	issuer := newTestIssuer()
	other := NewTokenIssuer("evil", "evil", 15*time.Minute, time.Hour)

	access, _, err := other.IssuePair("user-42")
	req.NoError(err)

	_, err = issuer.VerifyAccess(access)
	req.True(errors.Is(err, errors.KindUnauthorized))
}

func TestTokenIssuer_GarbageRejected(t *testing.T) {
	req := require.New(t)
	issuer := newTestIssuer()

	_, err := issuer.VerifyAccess("not-a-jwt")
	req.True(errors.Is(err, errors.KindUnauthorized))
}

package recetario

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

const (
	// VerificationTokenTTL is how long an email verification link stays valid
	VerificationTokenTTL = 24 * time.Hour
	// ResetTokenTTL is how long a password reset link stays valid
	ResetTokenTTL = time.Hour

	tokenByteLength = 32
)

// Token is a single-use opaque credential with an absolute expiry.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// TokenIssuer produces opaque tokens for email verification and password
// reset. Tokens carry 256 bits of entropy; single-use semantics are enforced
// by the store's conditional consume queries, not here.
type TokenIssuer interface {
	Issue(ttl time.Duration) (Token, error)
}

type randomTokenIssuer struct{}

// NewTokenIssuer returns the crypto/rand backed issuer.
func NewTokenIssuer() TokenIssuer {
	return randomTokenIssuer{}
}

func (randomTokenIssuer) Issue(ttl time.Duration) (Token, error) {
	buf := make([]byte, tokenByteLength)
	if _, err := rand.Read(buf); err != nil {
		return Token{}, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate token")
	}

	return Token{
		Value:     hex.EncodeToString(buf),
		ExpiresAt: time.Now().Add(ttl),
	}, nil
}

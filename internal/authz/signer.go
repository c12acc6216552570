package authz

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"vibesrm/internal/domain"
)

// Signer issues HS256 tokens the validator accepts. It exists for local
// development and the CLI; production tokens come from the identity service.
type Signer struct {
	secret []byte
	Issuer string
}

func NewSigner(secret, issuer string) (*Signer, error) {
	if secret == "" {
		return nil, errors.New("signing secret is empty")
	}
	return &Signer{secret: []byte(secret), Issuer: issuer}, nil
}

// Sign issues a token for userID that expires after ttl.
func (s *Signer) Sign(userID domain.UserID, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    s.Issuer,
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/edustack/lms-api/pkg/config"
	appErrors "github.com/edustack/lms-api/pkg/errors"
)

// TokenClaims are the claims embedded in issued bearer tokens: the
// entity id as subject plus its email.
type TokenClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// TokenIssuer issues and verifies opaque bearer tokens for users and
// lecturers alike.
type TokenIssuer struct {
	secret []byte
	expiry time.Duration
	issuer string
}

// NewTokenIssuer constructs a TokenIssuer from JWT configuration.
func NewTokenIssuer(cfg config.JWTConfig) *TokenIssuer {
	expiry := cfg.Expiration
	if expiry <= 0 {
		expiry = 7 * 24 * time.Hour
	}
	return &TokenIssuer{secret: []byte(cfg.Secret), expiry: expiry, issuer: cfg.Issuer}
}

// Issue signs a token embedding the entity id and email.
func (i *TokenIssuer) Issue(entityID, email string) (string, error) {
	now := time.Now().UTC()
	claims := TokenClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   entityID,
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign token")
	}
	return signed, nil
}

// Verify parses a token and returns its claims, or an unauthorized
// error for anything expired, malformed, or signed differently.
func (i *TokenIssuer) Verify(tokenString string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return i.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired token")
	}
	return claims, nil
}

package service

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/clinicworks/ehr-system/internal/core/domain"
)

// TokenTTL is the absolute lifetime of a session token.
const TokenTTL = 24 * time.Hour

type sessionClaims struct {
	jwt.RegisteredClaims
	UserID   int64       `json:"id"`
	Username string      `json:"username"`
	Role     domain.Role `json:"role"`
}

// TokenCodec issues and verifies HS256-signed session tokens carrying the
// {id, username, role} identity claim.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenCodec(secret string) *TokenCodec {
	return &TokenCodec{secret: []byte(secret), ttl: TokenTTL, now: time.Now}
}

// Issue signs identity with an expiry TokenTTL from now.
func (c *TokenCodec) Issue(identity domain.Identity) (string, time.Time, error) {
	now := c.now()
	expiresAt := now.Add(c.ttl)

	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(identity.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID:   identity.ID,
		Username: identity.Username,
		Role:     identity.Role,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Verify returns the identity carried by token. Any signature, algorithm,
// expiry or claim problem yields domain.ErrInvalidToken.
func (c *TokenCodec) Verify(token string) (domain.Identity, error) {
	claims := &sessionClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return c.secret, nil
	}, jwt.WithExpirationRequired(), jwt.WithTimeFunc(c.now))
	if err != nil || !tkn.Valid {
		return domain.Identity{}, domain.ErrInvalidToken
	}

	if claims.UserID <= 0 || claims.Username == "" || !claims.Role.Valid() {
		return domain.Identity{}, domain.ErrInvalidToken
	}

	return domain.Identity{
		ID:       claims.UserID,
		Username: claims.Username,
		Role:     claims.Role,
	}, nil
}

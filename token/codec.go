// Package token mints and verifies the signed bearer credentials used on
// every authenticated request. A credential embeds the subject, tenant and
// role; the HMAC signature covers all claims, so no single claim can be
// altered without invalidating the token.
package token

import (
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	apperrors "github.com/Nayab-Gohar-95/llm-saas-backend/internal/errors"
	"github.com/Nayab-Gohar-95/llm-saas-backend/users"
)

// Claims are the authorization facts carried by a credential.
type Claims struct {
	TenantID string         `json:"tenant_id"`
	Role     users.RoleType `json:"role"`
	jwtlib.RegisteredClaims
}

// Codec issues and verifies signed, expiring credentials. The signing secret
// and issuer are fixed at construction and read-only afterwards.
type Codec struct {
	secret  []byte
	issuer  string
	nowTime func() time.Time // nowTime function (injectable for testing)
}

// CodecOption defines a function type to modify the Codec instance.
type CodecOption func(*Codec)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) CodecOption {
	return func(c *Codec) {
		c.nowTime = nowFunc
	}
}

func NewCodec(secret, issuer string, options ...CodecOption) *Codec {
	c := &Codec{
		secret:  []byte(secret),
		issuer:  issuer,
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Issue mints a signed credential for the subject. The same inputs at
// different times yield different tokens because the timestamps differ.
func (c *Codec) Issue(subjectID, tenantID string, role users.RoleType, ttl time.Duration) (string, error) {
	now := c.nowTime()
	claims := Claims{
		TenantID: tenantID,
		Role:     role,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   subjectID,
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(ttl)),
			ID:        uuid.New().String(),
		},
	}

	t := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	signed, err := t.SignedString(c.secret)
	if err != nil {
		return "", apperrors.Wrapf(err, "[Issue] failed to sign credential")
	}
	return signed, nil
}

// Verify checks the signature and expiry of a credential and returns its
// claims. It is a pure function of the token and the clock; it never touches
// persistence and no verification result is cached across calls.
func (c *Codec) Verify(tokenString string) (*Claims, error) {
	parsed, err := jwtlib.ParseWithClaims(tokenString, &Claims{},
		func(t *jwtlib.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
				return nil, apperrors.ErrBadSignature
			}
			return c.secret, nil
		},
		jwtlib.WithTimeFunc(c.nowTime),
	)
	if err != nil {
		switch {
		case apperrors.Is(err, jwtlib.ErrTokenExpired):
			return nil, apperrors.ErrTokenExpired
		case apperrors.Is(err, jwtlib.ErrTokenSignatureInvalid):
			return nil, apperrors.ErrBadSignature
		case apperrors.Is(err, jwtlib.ErrTokenMalformed):
			return nil, apperrors.ErrMalformedToken
		default:
			return nil, apperrors.Wrapf(apperrors.ErrMalformedToken, "[Verify] %v", err)
		}
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, apperrors.ErrMalformedToken
	}
	return claims, nil
}

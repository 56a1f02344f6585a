package middleware

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// OwnerLocalKey is the key under which Identity stores the caller's identity in Fiber's context locals.
const OwnerLocalKey = "owner"

var errMissingSubject = errors.New("token has no subject")

// Identity authenticates requests carrying "Authorization: Bearer <jwt>".
// The token must be HS256-signed with secret; when issuer is non-empty the iss claim must match.
// The sub claim becomes the owner identity. Failures end the request with 401.
func Identity(secret, issuer string) fiber.Handler {
	key := []byte(secret)
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	parser := jwt.NewParser(opts...)

	return func(c *fiber.Ctx) error {
		h := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(h, "Bearer ") || len(key) == 0 {
			return fiber.ErrUnauthorized
		}
		owner, err := parseSubject(parser, key, strings.TrimPrefix(h, "Bearer "))
		if err != nil {
			return fiber.ErrUnauthorized
		}
		c.Locals(OwnerLocalKey, owner)
		return c.Next()
	}
}

func parseSubject(p *jwt.Parser, key []byte, raw string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := p.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return key, nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", jwt.ErrTokenInvalidClaims
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return "", errMissingSubject
	}
	return claims.Subject, nil
}

// Owner returns the identity stored by Identity, or "" if the request was not authenticated.
func Owner(c *fiber.Ctx) string {
	s, _ := c.Locals(OwnerLocalKey).(string)
	return s
}

// IssueToken signs an HS256 token for owner valid for ttl.
func IssueToken(secret, issuer, owner string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   owner,
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

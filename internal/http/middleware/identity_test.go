package middleware

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func identityApp(issuer string) *fiber.App {
	app := fiber.New()
	app.Use(Identity(testSecret, issuer))
	app.Get("/me", func(c *fiber.Ctx) error {
		return c.SendString(Owner(c))
	})
	return app
}

func TestIdentity(t *testing.T) {
	valid, err := IssueToken(testSecret, "cloudbucket", "alice", time.Hour)
	require.NoError(t, err)
	expired, err := IssueToken(testSecret, "cloudbucket", "alice", -time.Hour)
	require.NoError(t, err)
	otherKey, err := IssueToken("other-secret", "cloudbucket", "alice", time.Hour)
	require.NoError(t, err)
	noSubject, err := IssueToken(testSecret, "cloudbucket", "", time.Hour)
	require.NoError(t, err)
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "alice"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name       string
		issuer     string
		header     string
		wantStatus int
		wantOwner  string
	}{
		{name: "valid token", header: "Bearer " + valid, wantStatus: fiber.StatusOK, wantOwner: "alice"},
		{name: "issuer checked", issuer: "cloudbucket", header: "Bearer " + valid, wantStatus: fiber.StatusOK, wantOwner: "alice"},
		{name: "issuer mismatch", issuer: "someone-else", header: "Bearer " + valid, wantStatus: fiber.StatusUnauthorized},
		{name: "missing header", wantStatus: fiber.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic " + valid, wantStatus: fiber.StatusUnauthorized},
		{name: "expired", header: "Bearer " + expired, wantStatus: fiber.StatusUnauthorized},
		{name: "wrong key", header: "Bearer " + otherKey, wantStatus: fiber.StatusUnauthorized},
		{name: "no subject", header: "Bearer " + noSubject, wantStatus: fiber.StatusUnauthorized},
		{name: "alg none", header: "Bearer " + none, wantStatus: fiber.StatusUnauthorized},
		{name: "garbage", header: "Bearer not.a.jwt", wantStatus: fiber.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := identityApp(tt.issuer).Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantOwner != "" {
				body, _ := io.ReadAll(resp.Body)
				assert.Equal(t, tt.wantOwner, string(body))
			}
		})
	}
}

func TestIdentity_EmptySecretRejectsEverything(t *testing.T) {
	tok, err := IssueToken("", "", "alice", time.Hour)
	if err != nil {
		// An empty HMAC key is refused by the signer; nothing to authenticate with.
		return
	}
	app := fiber.New()
	app.Use(Identity("", ""))
	app.Get("/me", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

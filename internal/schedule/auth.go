package schedule

import (
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenAudience is the audience of scheduler tokens.
const TokenAudience = "morfi-plan/send"

// Authenticator recognizes the external scheduler. It accepts the shared
// secret itself as a bearer token, or an HS256 token signed with it.
type Authenticator struct {
	secret []byte
	now    func() time.Time
}

// NewAuthenticator creates an Authenticator. An empty secret
// authenticates nobody.
func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret), now: time.Now}
}

// Enabled reports whether a secret is configured.
func (a *Authenticator) Enabled() bool {
	return len(a.secret) > 0
}

// Authenticate checks an Authorization header value.
func (a *Authenticator) Authenticate(header string) bool {
	if !a.Enabled() {
		return false
	}
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return false
	}
	token = strings.TrimSpace(token)
	if subtle.ConstantTimeCompare([]byte(token), a.secret) == 1 {
		return true
	}
	return a.verify(token) == nil
}

func (a *Authenticator) verify(tokenString string) error {
	_, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(TokenAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	return err
}

// IssueToken mints a short-lived scheduler token.
func (a *Authenticator) IssueToken(ttl time.Duration) (string, error) {
	if !a.Enabled() {
		return "", fmt.Errorf("no scheduler secret configured")
	}
	now := a.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Audience:  jwt.ClaimStrings{TokenAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	})
	return token.SignedString(a.secret)
}

package tokenizer

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/layer-3/warden/core"
	"github.com/layer-3/warden/ports"
)

// DefaultAccessExpiry is the validity window of an access token
const DefaultAccessExpiry = 300 * time.Second

// JWTTokenizer implements the Tokenizer interface using HS256 JWTs
type JWTTokenizer struct {
	keys   *Keys
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

// Option customizes a JWTTokenizer
type Option func(*JWTTokenizer)

// WithClock replaces the wall clock used for issuing and verifying
func WithClock(now func() time.Time) Option {
	return func(j *JWTTokenizer) {
		j.now = now
	}
}

// NewJWTTokenizer creates a new JWT tokenizer
func NewJWTTokenizer(keys *Keys, opts ...Option) ports.Tokenizer {
	j := &JWTTokenizer{
		keys: keys,
		ttl:  DefaultAccessExpiry,
		now:  time.Now,
		// Expiry is checked against j.now after the signature, so the
		// library's own claim validation is switched off.
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithStrictDecoding(),
			jwt.WithoutClaimsValidation(),
		),
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// IdentityToToken converts an authenticated identity to a signed access token
func (j *JWTTokenizer) IdentityToToken(identity *core.Identity) (string, *core.Claims, error) {
	if identity == nil || identity.Subject == "" || identity.Organization == "" {
		return "", nil, fmt.Errorf("%w: incomplete identity", core.ErrTokenCreation)
	}

	claims := claimsFromCore(&core.Claims{
		Subject:      identity.Subject,
		Organization: identity.Organization,
		ExpiresAt:    j.now().Add(j.ttl),
	})

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedToken, err := token.SignedString(j.keys.SigningKey())
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", core.ErrTokenCreation, err)
	}

	return signedToken, claims.toCore(), nil
}

// TokenToClaims verifies the signature and expiry of a token and returns its claims.
// Every failure is reported as core.ErrInvalidToken.
func (j *JWTTokenizer) TokenToClaims(tokenStr string) (*core.Claims, error) {
	claims := &Claims{}
	token, err := j.parser.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.keys.VerificationKey(), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, core.ErrInvalidToken
	}

	if err := claims.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidToken, err)
	}

	if j.now().After(claims.ExpiresAt.Time) {
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidToken, jwt.ErrTokenExpired)
	}

	return claims.toCore(), nil
}

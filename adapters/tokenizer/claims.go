package tokenizer

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/layer-3/warden/core"
)

var (
	errMissingSubject      = errors.New("missing sub claim")
	errMissingOrganization = errors.New("missing company claim")
	errMissingExpiry       = errors.New("missing exp claim")
)

// Claims is the token payload. Field order is the serialization order.
type Claims struct {
	Subject   string           `json:"sub"`
	Company   string           `json:"company"`
	ExpiresAt *jwt.NumericDate `json:"exp"`
}

var _ jwt.Claims = (*Claims)(nil)

func claimsFromCore(c *core.Claims) *Claims {
	return &Claims{
		Subject:   c.Subject,
		Company:   c.Organization,
		ExpiresAt: jwt.NewNumericDate(c.ExpiresAt),
	}
}

func (c *Claims) toCore() *core.Claims {
	return &core.Claims{
		Subject:      c.Subject,
		Organization: c.Company,
		ExpiresAt:    c.ExpiresAt.Time,
	}
}

// Validate reports whether all required claims are present
func (c *Claims) Validate() error {
	switch {
	case c.Subject == "":
		return errMissingSubject
	case c.Company == "":
		return errMissingOrganization
	case c.ExpiresAt == nil:
		return errMissingExpiry
	}
	return nil
}

func (c *Claims) GetExpirationTime() (*jwt.NumericDate, error) { return c.ExpiresAt, nil }
func (c *Claims) GetIssuedAt() (*jwt.NumericDate, error)       { return nil, nil }
func (c *Claims) GetNotBefore() (*jwt.NumericDate, error)      { return nil, nil }
func (c *Claims) GetIssuer() (string, error)                   { return "", nil }
func (c *Claims) GetSubject() (string, error)                  { return c.Subject, nil }
func (c *Claims) GetAudience() (jwt.ClaimStrings, error)       { return nil, nil }

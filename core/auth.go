package core

import (
	"fmt"
	"time"
)

// Identity is an already authenticated principal that tokens are issued for
type Identity struct {
	Subject      string // Subject identifier, e.g. an email address
	Organization string // Organization the subject acts for
}

// Credential is the client_id/client_secret pair presented on login
type Credential struct {
	ClientID     string
	ClientSecret string
}

// Claims is the set of facts carried by an access token
type Claims struct {
	Subject      string    // Subject identifier
	Organization string    // Organization tag
	ExpiresAt    time.Time // Absolute expiry, second precision
}

// String renders the claims the way the protected area shows them
func (c Claims) String() string {
	return fmt.Sprintf("Email: %s\nCompany: %s", c.Subject, c.Organization)
}

// LoginOutcome describes how a login attempt ended
type LoginOutcome string

const (
	LoginSuccess            LoginOutcome = "success"
	LoginMissingCredentials LoginOutcome = "missing_credentials"
	LoginWrongCredentials   LoginOutcome = "wrong_credentials"
	LoginTokenCreation      LoginOutcome = "token_creation"
)

// LoginEvent is published for every login attempt. It never carries secrets or tokens.
type LoginEvent struct {
	ClientID     string
	Subject      string
	Organization string
	Outcome      LoginOutcome
	ExpiresAt    time.Time // zero unless Outcome is LoginSuccess
	At           time.Time
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/layer-3/warden/core"
	"github.com/layer-3/warden/ports"
)

const bearerScheme = "Bearer"

// AuthService handles authentication business logic
type AuthService struct {
	tokenizer  ports.Tokenizer
	identities ports.IdentitySource
	eventPub   ports.EventPublisher
	logger     log.Logger
	now        func() time.Time
}

// NewAuthService creates a new authentication service
func NewAuthService(
	tokenizer ports.Tokenizer,
	identities ports.IdentitySource,
	eventPub ports.EventPublisher,
	logger log.Logger,
) *AuthService {
	return &AuthService{
		tokenizer:  tokenizer,
		identities: identities,
		eventPub:   eventPub,
		logger:     log.With(logger, "component", "service/auth"),
		now:        time.Now,
	}
}

// Login checks the client credential and issues an access token for the matching identity
func (s *AuthService) Login(ctx context.Context, clientID, clientSecret string) (string, error) {
	event := core.LoginEvent{ClientID: clientID}
	defer func() {
		event.At = s.now()
		s.publish(ctx, event)
	}()

	if clientID == "" || clientSecret == "" {
		event.Outcome = core.LoginMissingCredentials
		return "", core.ErrMissingCredentials
	}

	identity, err := s.identities.Lookup(ctx, core.Credential{ClientID: clientID, ClientSecret: clientSecret})
	if err != nil {
		event.Outcome = core.LoginWrongCredentials
		if !errors.Is(err, core.ErrWrongCredentials) {
			level.Warn(s.logger).Log("msg", "identity lookup failed", "client_id", clientID, "err", err)
		}
		return "", core.ErrWrongCredentials
	}

	event.Subject = identity.Subject
	event.Organization = identity.Organization

	token, claims, err := s.tokenizer.IdentityToToken(identity)
	if err != nil {
		event.Outcome = core.LoginTokenCreation
		level.Error(s.logger).Log("msg", "failed to create token", "subject", identity.Subject, "err", err)
		if errors.Is(err, core.ErrTokenCreation) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", core.ErrTokenCreation, err)
	}

	event.Outcome = core.LoginSuccess
	event.ExpiresAt = claims.ExpiresAt

	return token, nil
}

// Authenticate extracts the bearer token from an Authorization header value and verifies it
func (s *AuthService) Authenticate(authorization string) (*core.Claims, error) {
	token, err := BearerToken(authorization)
	if err != nil {
		return nil, err
	}

	claims, err := s.tokenizer.TokenToClaims(token)
	if err != nil {
		level.Debug(s.logger).Log("msg", "token rejected", "err", err)
		return nil, core.ErrInvalidToken
	}

	return claims, nil
}

// BearerToken returns the token of a "Bearer <token>" Authorization header value.
// The scheme is matched case-insensitively.
func BearerToken(authorization string) (string, error) {
	scheme, token, ok := strings.Cut(authorization, " ")
	if !ok || !strings.EqualFold(scheme, bearerScheme) {
		return "", core.ErrInvalidToken
	}

	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", core.ErrInvalidToken
	}

	return token, nil
}

func (s *AuthService) publish(ctx context.Context, event core.LoginEvent) {
	// The login result stands even when the event cannot be delivered
	if err := s.eventPub.PublishLogin(ctx, event); err != nil {
		level.Warn(s.logger).Log("msg", "failed to publish login event", "outcome", event.Outcome, "err", err)
	}
}

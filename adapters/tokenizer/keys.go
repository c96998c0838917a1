package tokenizer

import (
	"bytes"
	"errors"
)

// ErrEmptySecret is returned when keys are derived from an empty secret
var ErrEmptySecret = errors.New("signing secret must not be empty")

// Keys holds the signing and verification keys derived from one symmetric secret.
// Keys is immutable after NewKeys returns and safe for concurrent use.
type Keys struct {
	signing      []byte
	verification []byte
}

// NewKeys derives the key pair from secret. The secret is copied.
func NewKeys(secret []byte) (*Keys, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}

	// HS256 signs and verifies with the same bytes; the roles stay separate
	// so an asymmetric pair can be dropped in later.
	return &Keys{
		signing:      bytes.Clone(secret),
		verification: bytes.Clone(secret),
	}, nil
}

// SigningKey returns a copy of the key used to sign tokens
func (k *Keys) SigningKey() []byte {
	return bytes.Clone(k.signing)
}

// VerificationKey returns a copy of the key used to verify tokens
func (k *Keys) VerificationKey() []byte {
	return bytes.Clone(k.verification)
}

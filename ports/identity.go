package ports

import (
	"context"

	"github.com/layer-3/warden/core"
)

// IdentitySource matches login credentials against known identities
type IdentitySource interface {
	// Lookup returns the identity bound to the credential or core.ErrWrongCredentials
	Lookup(ctx context.Context, credential core.Credential) (*core.Identity, error)
}

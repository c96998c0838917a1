package ports

import "github.com/layer-3/warden/core"

// Tokenizer converts between identities and signed access tokens
type Tokenizer interface {
	// IdentityToToken issues a signed token for an identity the caller has already
	// authenticated, together with the claims embedded in it
	IdentityToToken(identity *core.Identity) (string, *core.Claims, error)

	// TokenToClaims verifies a token and returns the claims it carries
	TokenToClaims(token string) (*core.Claims, error)
}

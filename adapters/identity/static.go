package identity

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"fmt"
	"os"

	"github.com/layer-3/warden/core"
	"github.com/layer-3/warden/ports"
	"gopkg.in/yaml.v3"
)

// Entry binds a client credential to the identity a token is issued for
type Entry struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	Subject      string `yaml:"subject"`
	Organization string `yaml:"organization"`
}

type file struct {
	Identities []Entry `yaml:"identities"`
}

// StaticSource is an IdentitySource over a fixed list of entries
type StaticSource struct {
	entries []Entry
}

var _ ports.IdentitySource = (*StaticSource)(nil)

// NewStaticSource creates a source from entries. An empty source rejects every credential.
func NewStaticSource(entries ...Entry) (*StaticSource, error) {
	seen := make(map[string]struct{}, len(entries))
	for i, e := range entries {
		if e.ClientID == "" || e.ClientSecret == "" || e.Subject == "" || e.Organization == "" {
			return nil, fmt.Errorf("identity %d: client_id, client_secret, subject and organization are required", i)
		}
		if _, ok := seen[e.ClientID]; ok {
			return nil, fmt.Errorf("identity %d: duplicate client_id %q", i, e.ClientID)
		}
		seen[e.ClientID] = struct{}{}
	}
	return &StaticSource{entries: append([]Entry(nil), entries...)}, nil
}

// LoadFile reads identities from a YAML file
func LoadFile(path string) (*StaticSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read identities file: %w", err)
	}

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse identities file: %w", err)
	}

	return NewStaticSource(f.Identities...)
}

// Len returns the number of configured identities
func (s *StaticSource) Len() int {
	return len(s.entries)
}

// Lookup matches the credential against every entry. Both sides are hashed
// first so the comparison time does not depend on their lengths.
func (s *StaticSource) Lookup(_ context.Context, credential core.Credential) (*core.Identity, error) {
	id := sha256.Sum256([]byte(credential.ClientID))
	secret := sha256.Sum256([]byte(credential.ClientSecret))

	var match *Entry
	for i := range s.entries {
		e := &s.entries[i]
		if equalDigest(e.ClientID, id)&equalDigest(e.ClientSecret, secret) == 1 {
			match = e
		}
	}

	if match == nil {
		return nil, core.ErrWrongCredentials
	}

	return &core.Identity{
		Subject:      match.Subject,
		Organization: match.Organization,
	}, nil
}

func equalDigest(value string, digest [sha256.Size]byte) int {
	d := sha256.Sum256([]byte(value))
	return subtle.ConstantTimeCompare(d[:], digest[:])
}

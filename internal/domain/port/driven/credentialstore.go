package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/shortest/internal/domain/model"
)

// ErrEncryptionKeyNotSet is returned by CredentialStore operations when
// SHORTEST_SECRET_KEY has not been configured.
var ErrEncryptionKeyNotSet = errors.New("encryption key not configured: set SHORTEST_SECRET_KEY")

// CredentialStore defines the driven port for encrypted provider token persistence.
// Values cross this boundary as plaintext; the adapter encrypts at rest.
type CredentialStore interface {
	// Set stores or replaces the token for provider.
	Set(ctx context.Context, provider model.Provider, token string) error

	// Get returns the token for provider, or ("", nil) when none is stored.
	Get(ctx context.Context, provider model.Provider) (string, error)

	Delete(ctx context.Context, provider model.Provider) error
}

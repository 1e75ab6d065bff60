package secrets

import "context"

// Provider abstracts a secrets backend. The adapter stores one credential
// bundle per upstream account, keyed by path, and discovers accounts by
// listing under a shared prefix.
type Provider interface {
	// GetSecret retrieves a secret by key and returns its decoded key-value map.
	GetSecret(ctx context.Context, key string) (map[string]string, error)

	// ListSecrets returns the names of all secrets under the given prefix.
	ListSecrets(ctx context.Context, prefix string) ([]string, error)
}

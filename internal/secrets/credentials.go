package secrets

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	pkgsecrets "github.com/ericnishio/scribe-adapter/pkg/secrets"
)

// Credentials are the Scribe login credentials for one account.
type Credentials struct {
	Identifier string
	Secret     string
}

// CredentialsResolver resolves per-account Scribe credentials from AWS
// Secrets Manager. It is a thin wrapper over the generic
// AWSResolver[Credentials].
//
// Secret naming convention: {env}/{account}/scribe
// Secret JSON format:       {"identifier": "writer@example.com", "secret": "..."}
type CredentialsResolver struct {
	inner *AWSResolver[Credentials]
}

// NewCredentialsResolver constructs a Scribe-specific credentials resolver.
func NewCredentialsResolver(
	logger *zap.Logger,
	env string,
	provider pkgsecrets.Provider,
	cache *pkgsecrets.Cache[Credentials],
) *CredentialsResolver {
	inner := NewAWSResolver(logger, env, "scribe", provider, cache)
	return &CredentialsResolver{inner: inner}
}

// Resolve fetches or caches the Credentials for a given account.
func (r *CredentialsResolver) Resolve(ctx context.Context, account string) (*Credentials, error) {
	creds, err := r.inner.Resolve(ctx, account, parseCredentials)
	if err != nil {
		return nil, err
	}
	return &creds, nil
}

// DiscoverAccounts lists all accounts that have Scribe secrets configured.
func (r *CredentialsResolver) DiscoverAccounts(ctx context.Context) ([]string, error) {
	return r.inner.DiscoverAccounts(ctx)
}

// parseCredentials extracts Credentials from the raw AWS secret map.
func parseCredentials(m map[string]string) (Credentials, error) {
	creds := Credentials{
		Identifier: m["identifier"],
		Secret:     m["secret"],
	}
	if creds.Identifier == "" {
		return Credentials{}, fmt.Errorf("missing required field 'identifier'")
	}
	if creds.Secret == "" {
		return Credentials{}, fmt.Errorf("missing required field 'secret'")
	}
	return creds, nil
}

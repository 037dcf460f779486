package tool

import (
	"context"

	"github.com/choreolab/choreo/pkg/secrets"
)

// WithUserAuth wraps a descriptor so that calls carrying a user ID resolve a
// credential for (userID, serverName) and inject it as the auth_token
// argument before forwarding. Calls without a user ID pass through untouched.
// Credentials are resolved fresh on every call and never stored on the
// descriptor or in the tool cache.
func WithUserAuth(d Descriptor, serverName string, resolver secrets.Resolver) Descriptor {
	inner := d.invoke
	d.RequiresUserAuth = true
	d.invoke = func(ctx context.Context, args map[string]any, userID string) (string, error) {
		if userID != "" && resolver != nil {
			if cred, ok := resolver.UserCredential(ctx, userID, serverName); ok {
				merged := make(map[string]any, len(args)+1)
				for k, v := range args {
					merged[k] = v
				}
				merged["auth_token"] = cred
				args = merged
			}
		}
		return inner(ctx, args, userID)
	}
	return d
}

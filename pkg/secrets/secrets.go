// Package secrets resolves per-user, per-service credentials for tools that
// require user authorization. Lookups are best-effort: a missing credential
// is reported as absent, never as a fatal error, and results are resolved
// fresh on every call rather than cached.
package secrets

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

// Resolver looks up the credential for a (user, service) pair.
type Resolver interface {
	// UserCredential returns the opaque credential and whether one exists.
	UserCredential(ctx context.Context, userID, service string) (string, bool)
}

// EnvResolver reads credentials from the process environment. The key
// mirrors the secret-store naming of user-credentials--{user}--{service}:
// CHOREO_USER_CREDENTIAL__{USER}__{SERVICE}, uppercased with non-alphanumeric
// runes folded to underscores.
type EnvResolver struct{}

const envKeyPrefix = "CHOREO_USER_CREDENTIAL__"

// UserCredential implements Resolver.
func (EnvResolver) UserCredential(ctx context.Context, userID, service string) (string, bool) {
	if userID == "" || service == "" {
		return "", false
	}
	key := envKeyPrefix + envKeyPart(userID) + "__" + envKeyPart(service)
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		slog.DebugContext(ctx, "user credential not found",
			"user_id", userID, "service", service)
		return "", false
	}
	return value, true
}

func envKeyPart(s string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(s) {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// Static is a map-backed resolver for tests and local development, keyed by
// "{user}/{service}".
type Static map[string]string

// UserCredential implements Resolver.
func (s Static) UserCredential(ctx context.Context, userID, service string) (string, bool) {
	value, ok := s[userID+"/"+service]
	return value, ok && value != ""
}

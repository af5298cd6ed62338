// Package grpc carries the authcode login over to gRPC services: the
// interceptors verify the hub-issued auth token from incoming metadata and
// make the user ID available on the request context.
package grpc

import (
	"context"
	"strings"

	"google.golang.org/grpc/metadata"
)

// Default metadata keys for authentication context.
const (
	// DefaultMetadataKeyAuthToken is the default gRPC metadata key carrying
	// the auth token, matching the HTTP Authorization header convention.
	DefaultMetadataKeyAuthToken = "authorization"
)

type userIDContextKey struct{}

// VerifyToken validates an auth token and resolves the user it was issued
// to. Auth.Middleware.VerifyToken from the root package satisfies this.
type VerifyToken func(tokenString string) (loggedInUserId string, token any, err error)

// Config holds the metadata key configuration for auth context.
type Config struct {
	// MetadataKeyAuthToken is the gRPC metadata key for the auth token.
	// Defaults to "authorization".
	MetadataKeyAuthToken string
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{MetadataKeyAuthToken: DefaultMetadataKeyAuthToken}
}

// EnsureDefaults fills in default values for any unset fields.
func (c *Config) EnsureDefaults() {
	if c.MetadataKeyAuthToken == "" {
		c.MetadataKeyAuthToken = DefaultMetadataKeyAuthToken
	}
}

// UserIDFromContext extracts the authenticated user ID placed on the context
// by the interceptors. Returns empty string if no user is authenticated.
func UserIDFromContext(ctx context.Context) string {
	userID, _ := ctx.Value(userIDContextKey{}).(string)
	return userID
}

// IsAuthenticated returns true if there is an authenticated user in the context.
func IsAuthenticated(ctx context.Context) bool {
	return UserIDFromContext(ctx) != ""
}

// WithUserID returns a context carrying the user ID the way the
// interceptors set it. Mostly useful in tests.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey{}, userID)
}

// TokenToOutgoingContext attaches an auth token to outgoing gRPC metadata
// for a client calling an interceptor-protected service.
func TokenToOutgoingContext(ctx context.Context, token string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, DefaultMetadataKeyAuthToken, "Bearer "+token)
}

// tokenFromMetadata pulls the raw auth token out of incoming metadata,
// stripping any Bearer prefix.
func tokenFromMetadata(ctx context.Context, config *Config) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	for _, value := range md.Get(config.MetadataKeyAuthToken) {
		value = strings.TrimPrefix(value, "Bearer ")
		if value != "" {
			return value
		}
	}
	return ""
}

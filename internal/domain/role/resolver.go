package role

import (
	"context"

	"go.uber.org/zap"
)

// Membership is an identity's membership within one organization as
// reported by the identity provider.
type Membership struct {
	Role string
}

// Profile is an identity's own profile at the provider. Metadata may
// carry a fallback role under the "role" key.
type Profile struct {
	DisplayName string
	Email       string
	Metadata    map[string]string
}

// Provider is the narrow identity-provider surface the resolver needs.
// The provider is only trusted for identity and raw role strings; role
// meaning is derived locally.
type Provider interface {
	// Membership returns the identity's membership in the organization,
	// or nil when no membership exists.
	Membership(ctx context.Context, userID, orgID string) (*Membership, error)

	// Profile returns the identity's own profile.
	Profile(ctx context.Context, userID string) (*Profile, error)
}

// metadataRoleKey is the profile metadata key holding the fallback role.
const metadataRoleKey = "role"

// Resolver resolves an authenticated identity and organization context
// to exactly one local role.
type Resolver struct {
	provider Provider
	logger   *zap.Logger
}

// NewResolver creates a role resolver backed by the given provider.
func NewResolver(provider Provider, logger *zap.Logger) *Resolver {
	return &Resolver{
		provider: provider,
		logger:   logger,
	}
}

// Resolve returns the local role for userID within orgID. Every failure
// path resolves to Submitter: missing organization context, missing
// membership, unmapped provider role, and provider errors (after the
// profile-metadata fallback) all fail closed.
func (r *Resolver) Resolve(ctx context.Context, userID, orgID string) Role {
	if orgID == "" {
		return Submitter
	}

	membership, err := r.provider.Membership(ctx, userID, orgID)
	if err != nil {
		r.logger.Warn("membership lookup failed, falling back to profile metadata",
			zap.String("user_id", userID),
			zap.String("org_id", orgID),
			zap.Error(err))
		return r.resolveFromProfile(ctx, userID)
	}

	if membership == nil {
		return Submitter
	}

	return FromProviderRole(membership.Role)
}

// resolveFromProfile resolves a role from the identity's own profile
// metadata. Any error here resolves to Submitter.
func (r *Resolver) resolveFromProfile(ctx context.Context, userID string) Role {
	profile, err := r.provider.Profile(ctx, userID)
	if err != nil {
		r.logger.Warn("profile lookup failed, defaulting to submitter",
			zap.String("user_id", userID),
			zap.Error(err))
		return Submitter
	}

	if profile == nil || profile.Metadata == nil {
		return Submitter
	}

	return FromProviderRole(profile.Metadata[metadataRoleKey])
}

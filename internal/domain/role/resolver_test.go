package role

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type mockProvider struct {
	membershipFunc func(ctx context.Context, userID, orgID string) (*Membership, error)
	profileFunc    func(ctx context.Context, userID string) (*Profile, error)
}

func (m *mockProvider) Membership(ctx context.Context, userID, orgID string) (*Membership, error) {
	if m.membershipFunc != nil {
		return m.membershipFunc(ctx, userID, orgID)
	}
	return nil, nil
}

func (m *mockProvider) Profile(ctx context.Context, userID string) (*Profile, error) {
	if m.profileFunc != nil {
		return m.profileFunc(ctx, userID)
	}
	return &Profile{}, nil
}

func TestResolver_Resolve(t *testing.T) {
	tests := []struct {
		name     string
		userID   string
		orgID    string
		provider *mockProvider
		expected Role
	}{
		{
			name:   "mapped membership role",
			userID: "user_1",
			orgID:  "org_1",
			provider: &mockProvider{
				membershipFunc: func(ctx context.Context, userID, orgID string) (*Membership, error) {
					return &Membership{Role: "org:admin"}, nil
				},
			},
			expected: Admin,
		},
		{
			name:     "no organization context",
			userID:   "user_1",
			orgID:    "",
			provider: &mockProvider{},
			expected: Submitter,
		},
		{
			name:   "no membership found",
			userID: "user_1",
			orgID:  "org_1",
			provider: &mockProvider{
				membershipFunc: func(ctx context.Context, userID, orgID string) (*Membership, error) {
					return nil, nil
				},
			},
			expected: Submitter,
		},
		{
			name:   "unmapped provider role fails closed",
			userID: "user_1",
			orgID:  "org_1",
			provider: &mockProvider{
				membershipFunc: func(ctx context.Context, userID, orgID string) (*Membership, error) {
					return &Membership{Role: "galactic_overlord"}, nil
				},
			},
			expected: Submitter,
		},
		{
			name:   "provider error falls back to profile metadata",
			userID: "user_1",
			orgID:  "org_1",
			provider: &mockProvider{
				membershipFunc: func(ctx context.Context, userID, orgID string) (*Membership, error) {
					return nil, errors.New("provider unavailable")
				},
				profileFunc: func(ctx context.Context, userID string) (*Profile, error) {
					return &Profile{Metadata: map[string]string{"role": "reviewer"}}, nil
				},
			},
			expected: Reviewer,
		},
		{
			name:   "provider error and profile error default to submitter",
			userID: "user_1",
			orgID:  "org_1",
			provider: &mockProvider{
				membershipFunc: func(ctx context.Context, userID, orgID string) (*Membership, error) {
					return nil, errors.New("provider unavailable")
				},
				profileFunc: func(ctx context.Context, userID string) (*Profile, error) {
					return nil, errors.New("provider unavailable")
				},
			},
			expected: Submitter,
		},
		{
			name:   "provider error and empty metadata default to submitter",
			userID: "user_1",
			orgID:  "org_1",
			provider: &mockProvider{
				membershipFunc: func(ctx context.Context, userID, orgID string) (*Membership, error) {
					return nil, errors.New("provider unavailable")
				},
				profileFunc: func(ctx context.Context, userID string) (*Profile, error) {
					return &Profile{}, nil
				},
			},
			expected: Submitter,
		},
		{
			name:   "metadata fallback never elevates past its mapping",
			userID: "user_1",
			orgID:  "org_1",
			provider: &mockProvider{
				membershipFunc: func(ctx context.Context, userID, orgID string) (*Membership, error) {
					return nil, errors.New("provider unavailable")
				},
				profileFunc: func(ctx context.Context, userID string) (*Profile, error) {
					return &Profile{Metadata: map[string]string{"role": "CEO"}}, nil
				},
			},
			expected: Submitter,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver := NewResolver(tt.provider, zap.NewNop())
			got := resolver.Resolve(context.Background(), tt.userID, tt.orgID)
			assert.Equal(t, tt.expected, got)
		})
	}
}

package service

import (
	"github.com/clematis-labs/justify-server/internal/domain/apperr"
	"github.com/clematis-labs/justify-server/internal/domain/role"
)

// Actor is the resolved caller of an operation: authenticated identity,
// tenant context and the role derived for this request. Passing the
// tenant explicitly in every operation keeps cross-tenant leakage
// structurally impossible.
type Actor struct {
	UserID         string
	OrganizationID string
	Role           role.Role
}

// Validate checks that the actor carries an identity and a tenant.
func (a Actor) Validate() error {
	if a.UserID == "" {
		return apperr.AuthenticationRequired("no authenticated identity")
	}
	if a.OrganizationID == "" {
		return apperr.OrganizationContextMissing("no organization context")
	}
	return nil
}

// Pagination defaults
const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// normalizePage clamps limit/offset to sane bounds.
func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

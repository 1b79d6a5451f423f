// Package role maps provider membership roles into the local role
// hierarchy and resolves one role per request. Resolution fails closed:
// every failure path yields the least-privileged role.
package role

// Role is a local role in the fixed hierarchy. Ordering matters:
// Submitter < Reviewer < Admin < Superadmin.
type Role string

const (
	Submitter  Role = "submitter"
	Reviewer   Role = "reviewer"
	Admin      Role = "admin"
	Superadmin Role = "superadmin"
)

var ranks = map[Role]int{
	Submitter:  0,
	Reviewer:   1,
	Admin:      2,
	Superadmin: 3,
}

// providerRoles maps provider role strings to local roles. The table
// covers both vocabularies the provider has used over time (the older
// user/chef set and the current org-prefixed set); anything unmapped
// resolves to Submitter.
var providerRoles = map[string]Role{
	"org:superadmin": Superadmin,
	"superadmin":     Superadmin,
	"owner":          Superadmin,
	"org:admin":      Admin,
	"admin":          Admin,
	"org:reviewer":   Reviewer,
	"reviewer":       Reviewer,
	"chef":           Reviewer,
	"org:member":     Submitter,
	"member":         Submitter,
	"basic_member":   Submitter,
	"user":           Submitter,
	"association":    Submitter,
}

// FromProviderRole maps a provider role string to a local role. Total:
// unknown or empty strings map to Submitter, never higher.
func FromProviderRole(providerRole string) Role {
	if r, ok := providerRoles[providerRole]; ok {
		return r
	}
	return Submitter
}

// Rank returns the privilege rank of the role. Unknown roles rank as
// Submitter.
func (r Role) Rank() int {
	if rank, ok := ranks[r]; ok {
		return rank
	}
	return ranks[Submitter]
}

// AtLeast reports whether r carries at least the privilege of other.
func (r Role) AtLeast(other Role) bool {
	return r.Rank() >= other.Rank()
}

// CanReview reports whether the role may approve or reject submissions.
func (r Role) CanReview() bool {
	return r.AtLeast(Reviewer)
}

// CanManageOrganization reports whether the role may administer the
// organization (exports, member management).
func (r Role) CanManageOrganization() bool {
	return r.AtLeast(Admin)
}

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

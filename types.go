package careauth

import "time"

// Role identifies a platform role by its fixed numeric identifier. The
// console only grants privileged access to RoleAdministrator and
// RoleContentProvider; the remaining values are explicit placeholders for the
// non-privileged roles the platform assigns.
type Role int

const (
	// RoleUnknown is the zero value; no profile carries it.
	RoleUnknown Role = 0
	// RoleAdministrator has full console access.
	RoleAdministrator Role = 1
	// RoleDoctor is a consulting physician account.
	RoleDoctor Role = 2
	// RoleElder is a cared-for platform member.
	RoleElder Role = 3
	// RoleRelative is a family member linked to an elder.
	RoleRelative Role = 4
	// RoleContentProvider manages the book/music/exercise libraries.
	RoleContentProvider Role = 5
)

// String returns the canonical role name, or "unknown" for unmapped ids.
func (r Role) String() string {
	switch r {
	case RoleAdministrator:
		return "administrator"
	case RoleDoctor:
		return "doctor"
	case RoleElder:
		return "elder"
	case RoleRelative:
		return "relative"
	case RoleContentProvider:
		return "content-provider"
	default:
		return "unknown"
	}
}

// IsAdmin reports whether the role is the administrator role.
func (r Role) IsAdmin() bool { return r == RoleAdministrator }

// IsContentProvider reports whether the role is the content provider role.
func (r Role) IsContentProvider() bool { return r == RoleContentProvider }

// AccountStatus is the account lifecycle state reported by the identity
// endpoint.
type AccountStatus string

const (
	// AccountActive marks an account in good standing.
	AccountActive AccountStatus = "Active"
	// AccountInactive marks a deactivated account.
	AccountInactive AccountStatus = "Inactive"
)

// UserProfile is the read-only identity resolved from the platform identity
// endpoint. Field names mirror the platform wire format.
type UserProfile struct {
	AccountID   int64         `json:"accountId"`
	RoleID      Role          `json:"roleId"`
	RoleName    string        `json:"roleName,omitempty"`
	Email       string        `json:"email"`
	FullName    string        `json:"fullName"`
	Avatar      string        `json:"avatar,omitempty"`
	Gender      string        `json:"gender,omitempty"`
	PhoneNumber string        `json:"phoneNumber,omitempty"`
	DateOfBirth string        `json:"dateOfBirth,omitempty"`
	Status      AccountStatus `json:"status"`
	IsVerified  bool          `json:"isVerified"`
}

// SessionState is the lifecycle stage of the managed session.
type SessionState uint8

const (
	// StateUninitialized is the state before Restore has run.
	StateUninitialized SessionState = iota
	// StateRestoring is the state while startup restoration is outstanding.
	StateRestoring
	// StateAuthenticated is the state with a resolved identity and a live
	// token pair.
	StateAuthenticated
	// StateAnonymous is the state with no session; a new Login is required.
	StateAnonymous
)

// String returns a short lowercase name for the state.
func (s SessionState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateRestoring:
		return "restoring"
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	default:
		return "invalid"
	}
}

// SessionSnapshot is a point-in-time copy of the observable session state,
// returned by [Manager.Snapshot].
type SessionSnapshot struct {
	State           SessionState
	Initialized     bool
	User            *UserProfile
	HasAccessToken  bool
	HasRefreshToken bool
	// AccessExpiresAt is the unverified expiry claim of the held access
	// token; zero when no token is held or the token carries no expiry.
	AccessExpiresAt time.Time
}

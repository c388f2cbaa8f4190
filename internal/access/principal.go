package access

import "errors"

// Role is an account's role.  Only two exist.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleAdmin
}

// Principal is the authenticated caller, passed explicitly into every
// service call instead of being read from ambient session state.
type Principal struct {
	UserID string
	Role   Role
}

var ErrUnauthenticated = errors.New("no authenticated principal")

// Require returns ErrUnauthenticated for an empty principal and false when
// the role does not match.
func (p Principal) Require(role Role) (bool, error) {
	if p.UserID == "" || !p.Role.Valid() {
		return false, ErrUnauthenticated
	}
	return p.Role == role, nil
}

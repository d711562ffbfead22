package domain

const (
	RoleAdmin   = "Admin"
	RoleManager = "Manager"
	RoleUser    = "User"

	// DefaultRole is assigned to every newly registered user regardless of
	// the role supplied by the caller.
	DefaultRole = RoleUser
)

// KnownRole reports whether role belongs to the closed role set.
func KnownRole(role string) bool {
	switch role {
	case RoleAdmin, RoleManager, RoleUser:
		return true
	}
	return false
}

// User is the internal representation of an account, password included.
// It must never cross the API boundary directly; outbound paths use
// ports.UserProfile, which has no password field at all.
//
// Credentials are matched in plaintext against the stored password; the
// schema predates hashing. TODO: hash passwords (bcrypt) and migrate the
// existing users collection.
type User struct {
	ID        int64
	Username  string
	Password  string
	FirstName string
	LastName  string
	Email     string
	Role      string
}

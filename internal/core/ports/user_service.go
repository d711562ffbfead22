package ports

import "context"

// UserProfile is the outbound view of a user. It has no password field at
// all, so omission is enforced by the type system rather than by stripping
// at each call site.
type UserProfile struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
}

// NewUserInput carries the caller-supplied fields for a registration.
// The id is server-assigned and the role is forced to the default.
type NewUserInput struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
	Email     string
	Role      string
}

// UpdateUserInput carries a full replacement payload for an existing user.
type UpdateUserInput struct {
	ID        int64
	Username  string
	Password  string
	FirstName string
	LastName  string
	Email     string
	Role      string
}

// UserService defines the identity use cases.
type UserService interface {
	GetAllUsers(ctx context.Context) ([]UserProfile, error)
	GetUserByID(ctx context.Context, id int64) (*UserProfile, error)
	// GetUserByUniqueKey resolves a single-field query {field: value}.
	// Multi-field or unknown-field queries are bad requests; an "id" key
	// delegates to GetUserByID.
	GetUserByUniqueKey(ctx context.Context, query map[string]string) (*UserProfile, error)
	Authenticate(ctx context.Context, username, password string) (*UserProfile, error)
	AddNewUser(ctx context.Context, in NewUserInput) (*UserProfile, error)
	UpdateUser(ctx context.Context, in UpdateUserInput) (bool, error)
	DeleteByID(ctx context.Context, id int64) (bool, error)
	IsUsernameAvailable(ctx context.Context, username string) (bool, error)
	IsEmailAvailable(ctx context.Context, email string) (bool, error)
}

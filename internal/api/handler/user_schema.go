package handler

import "github.com/ersuite/reimbursement-api/internal/core/ports"

// --- Request / Response types ---

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerRequest struct {
	Username  string `json:"username"   validate:"required"`
	Password  string `json:"password"   validate:"required"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name"  validate:"required"`
	Email     string `json:"email"      validate:"required,email"`
}

type authResponse struct {
	Token string             `json:"token,omitempty"`
	User  *ports.UserProfile `json:"user,omitempty"`
}

type createUserRequest struct {
	Username  string `json:"username"   validate:"required"`
	Password  string `json:"password"   validate:"required"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name"  validate:"required"`
	Email     string `json:"email"      validate:"required,email"`
	Role      string `json:"role"`
}

type updateUserRequest struct {
	ID        int64  `json:"id"         validate:"required"`
	Username  string `json:"username"   validate:"required"`
	Password  string `json:"password"   validate:"required"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name"  validate:"required"`
	Email     string `json:"email"      validate:"required,email"`
	Role      string `json:"role"       validate:"required"`
}

type updatedResponse struct {
	Updated bool `json:"updated"`
}

type deletedResponse struct {
	Deleted bool `json:"deleted"`
}

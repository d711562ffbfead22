package domain

import "net/http"

// StatusCoder is implemented by every domain error. The HTTP layer reads the
// code from the error itself and serializes the message unchanged, so the
// taxonomy below is the single source of truth for response codes.
type StatusCoder interface {
	error
	Status() int
}

// BadRequestError signals malformed input: an invalid id shape, a failed
// entity validation, or an unknown query field.
type BadRequestError struct {
	Message string
}

func NewBadRequest(msg string) *BadRequestError {
	if msg == "" {
		msg = "invalid request data"
	}
	return &BadRequestError{Message: msg}
}

func (e *BadRequestError) Error() string { return e.Message }
func (e *BadRequestError) Status() int   { return http.StatusBadRequest }

// AuthenticationError signals a credential lookup that matched no user.
type AuthenticationError struct {
	Message string
}

func NewAuthentication(msg string) *AuthenticationError {
	if msg == "" {
		msg = "authentication failed"
	}
	return &AuthenticationError{Message: msg}
}

func (e *AuthenticationError) Error() string { return e.Message }
func (e *AuthenticationError) Status() int   { return http.StatusUnauthorized }

// AuthorizationError signals an authenticated principal lacking the role
// required for an operation.
type AuthorizationError struct {
	Message string
}

func NewAuthorization(msg string) *AuthorizationError {
	if msg == "" {
		msg = "you do not have permission to access this resource"
	}
	return &AuthorizationError{Message: msg}
}

func (e *AuthorizationError) Error() string { return e.Message }
func (e *AuthorizationError) Status() int   { return http.StatusForbidden }

// ResourceNotFoundError signals a lookup that should have found something
// but returned nothing.
type ResourceNotFoundError struct {
	Message string
}

func NewResourceNotFound(msg string) *ResourceNotFoundError {
	if msg == "" {
		msg = "no resource found"
	}
	return &ResourceNotFoundError{Message: msg}
}

func (e *ResourceNotFoundError) Error() string { return e.Message }
func (e *ResourceNotFoundError) Status() int   { return http.StatusNotFound }

// ResourcePersistenceError signals a write that would violate a persistence
// invariant: a claimed username or email, or an illegal lifecycle change.
type ResourcePersistenceError struct {
	Message string
}

func NewResourcePersistence(msg string) *ResourcePersistenceError {
	if msg == "" {
		msg = "the resource could not be persisted"
	}
	return &ResourcePersistenceError{Message: msg}
}

func (e *ResourcePersistenceError) Error() string { return e.Message }
func (e *ResourcePersistenceError) Status() int   { return http.StatusConflict }

// InternalServerError signals an infrastructure fault surfaced by a
// repository. Services propagate it without reinterpretation.
type InternalServerError struct {
	Message string
}

func NewInternalServer(msg string) *InternalServerError {
	if msg == "" {
		msg = "an unexpected internal error occurred"
	}
	return &InternalServerError{Message: msg}
}

func (e *InternalServerError) Error() string { return e.Message }
func (e *InternalServerError) Status() int   { return http.StatusInternalServerError }

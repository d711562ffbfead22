package ports

import (
	"context"

	"github.com/ersuite/reimbursement-api/internal/core/domain"
)

// UserRepository defines persistence operations for users. Lookups that
// match nothing return ErrNoRecord; Save and Update return ErrDuplicateKey
// when a unique index on username or email rejects the write.
type UserRepository interface {
	GetAll(ctx context.Context) ([]domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	// GetByUniqueKey fetches the single user whose field equals value.
	// The field name has already been checked against the declared set.
	GetByUniqueKey(ctx context.Context, field, value string) (*domain.User, error)
	// GetByCredentials fetches by exact username/password match.
	GetByCredentials(ctx context.Context, username, password string) (*domain.User, error)
	// Save persists a new user and assigns its identity.
	Save(ctx context.Context, u *domain.User) (*domain.User, error)
	Update(ctx context.Context, u *domain.User) (bool, error)
	DeleteByID(ctx context.Context, id int64) (bool, error)
}

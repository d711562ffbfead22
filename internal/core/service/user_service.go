package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ersuite/reimbursement-api/internal/core/domain"
	"github.com/ersuite/reimbursement-api/internal/core/ports"
	"github.com/ersuite/reimbursement-api/internal/core/validation"
)

// UserService enforces the identity rules: id shapes, username/email
// uniqueness, credential authentication, and password omission on every
// outbound user.
type UserService struct {
	repo   ports.UserRepository
	rules  validation.Validator
	logger zerolog.Logger
}

func NewUserService(repo ports.UserRepository, rules validation.Validator, logger zerolog.Logger) *UserService {
	return &UserService{repo: repo, rules: rules, logger: logger}
}

var _ ports.UserService = (*UserService)(nil)

// GetAllUsers lists every user. An empty store is a not-found condition.
func (s *UserService) GetAllUsers(ctx context.Context) ([]ports.UserProfile, error) {
	users, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, domain.NewResourceNotFound("no users found")
	}

	profiles := make([]ports.UserProfile, 0, len(users))
	for i := range users {
		profiles = append(profiles, profileOf(&users[i]))
	}
	return profiles, nil
}

// GetUserByID fetches one user after checking the id shape. The check runs
// before any store access.
func (s *UserService) GetUserByID(ctx context.Context, id int64) (*ports.UserProfile, error) {
	if !s.rules.ValidID(id) {
		return nil, domain.NewBadRequest(fmt.Sprintf("invalid user id: %d", id))
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ports.ErrNoRecord) {
			return nil, domain.NewResourceNotFound(fmt.Sprintf("no user found with id %d", id))
		}
		return nil, err
	}

	p := profileOf(user)
	return &p, nil
}

// GetUserByUniqueKey resolves a single-field query. Only declared fields
// are accepted; an "id" key reuses the id path.
func (s *UserService) GetUserByUniqueKey(ctx context.Context, query map[string]string) (*ports.UserProfile, error) {
	if len(query) != 1 {
		return nil, domain.NewBadRequest("exactly one query field is required")
	}

	var field, value string
	for k, v := range query {
		field, value = k, v
	}

	if !s.rules.IsUserField(field) {
		return nil, domain.NewBadRequest(fmt.Sprintf("%q is not a queryable user field", field))
	}

	if field == "id" {
		id, err := validation.ParseID(value)
		if err != nil {
			return nil, domain.NewBadRequest(err.Error())
		}
		return s.GetUserByID(ctx, id)
	}

	if !s.rules.NonEmpty(value) {
		return nil, domain.NewBadRequest("query value must be a non-empty string")
	}

	user, err := s.repo.GetByUniqueKey(ctx, field, value)
	if err != nil {
		if errors.Is(err, ports.ErrNoRecord) {
			return nil, domain.NewResourceNotFound(fmt.Sprintf("no user found with %s %q", field, value))
		}
		return nil, err
	}

	p := profileOf(user)
	return &p, nil
}

// Authenticate fetches by exact credential match. Passwords are compared
// as stored; see the note on domain.User.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*ports.UserProfile, error) {
	if !s.rules.NonEmpty(username, password) {
		return nil, domain.NewBadRequest("username and password are required")
	}

	user, err := s.repo.GetByCredentials(ctx, username, password)
	if err != nil {
		if errors.Is(err, ports.ErrNoRecord) {
			s.logger.Info().Str("username", username).Msg("failed login attempt")
			return nil, domain.NewAuthentication("bad credentials provided")
		}
		return nil, err
	}

	p := profileOf(user)
	return &p, nil
}

// AddNewUser registers a user. The role is forced to the default regardless
// of input, and username/email must both be unclaimed.
//
// The availability checks below are a read before the write: two concurrent
// registrations can both observe "available". The unique indexes on the
// users collection are the backstop; a duplicate-key error from Save maps
// to the same ResourcePersistenceError.
func (s *UserService) AddNewUser(ctx context.Context, in ports.NewUserInput) (*ports.UserProfile, error) {
	candidate := domain.User{
		Username:  in.Username,
		Password:  in.Password,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Role:      in.Role,
	}
	if vs := s.rules.CheckUser(candidate, false); len(vs) != 0 {
		return nil, domain.NewBadRequest("invalid property values found in provided user: " + vs.String())
	}

	available, err := s.IsUsernameAvailable(ctx, in.Username)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, domain.NewResourcePersistence("the provided username is already taken")
	}

	available, err = s.IsEmailAvailable(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, domain.NewResourcePersistence("the provided email is already taken")
	}

	candidate.Role = domain.DefaultRole

	persisted, err := s.repo.Save(ctx, &candidate)
	if err != nil {
		if errors.Is(err, ports.ErrDuplicateKey) {
			return nil, domain.NewResourcePersistence("the provided username or email is already taken")
		}
		return nil, err
	}

	s.logger.Info().Int64("user_id", persisted.ID).Str("username", persisted.Username).Msg("user registered")

	p := profileOf(persisted)
	return &p, nil
}

// UpdateUser replaces an existing user. The availability re-check mirrors
// the create path exactly, which means an update that keeps its own
// username or email will find itself and fail. Known hazard; the boundary
// works around it by sending changed fields only.
func (s *UserService) UpdateUser(ctx context.Context, in ports.UpdateUserInput) (bool, error) {
	updated := domain.User{
		ID:        in.ID,
		Username:  in.Username,
		Password:  in.Password,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Role:      in.Role,
	}
	if vs := s.rules.CheckUser(updated, true); len(vs) != 0 {
		return false, domain.NewBadRequest("invalid user provided: " + vs.String())
	}

	available, err := s.IsUsernameAvailable(ctx, in.Username)
	if err != nil {
		return false, err
	}
	if !available {
		return false, domain.NewResourcePersistence("the provided username is already taken")
	}

	available, err = s.IsEmailAvailable(ctx, in.Email)
	if err != nil {
		return false, err
	}
	if !available {
		return false, domain.NewResourcePersistence("the provided email is already taken")
	}

	ok, err := s.repo.Update(ctx, &updated)
	if err != nil {
		if errors.Is(err, ports.ErrDuplicateKey) {
			return false, domain.NewResourcePersistence("the provided username or email is already taken")
		}
		if errors.Is(err, ports.ErrNoRecord) {
			return false, domain.NewResourceNotFound(fmt.Sprintf("no user found with id %d", in.ID))
		}
		return false, err
	}
	return ok, nil
}

// DeleteByID removes a user after checking the id shape.
func (s *UserService) DeleteByID(ctx context.Context, id int64) (bool, error) {
	if !s.rules.ValidID(id) {
		return false, domain.NewBadRequest(fmt.Sprintf("invalid user id: %d", id))
	}
	return s.repo.DeleteByID(ctx, id)
}

// IsUsernameAvailable interprets a not-found lookup as availability. Any
// other repository failure propagates; a found user means unavailable.
func (s *UserService) IsUsernameAvailable(ctx context.Context, username string) (bool, error) {
	return s.keyAvailable(ctx, "username", username)
}

// IsEmailAvailable is the email counterpart of IsUsernameAvailable.
func (s *UserService) IsEmailAvailable(ctx context.Context, email string) (bool, error) {
	return s.keyAvailable(ctx, "email", email)
}

func (s *UserService) keyAvailable(ctx context.Context, field, value string) (bool, error) {
	_, err := s.repo.GetByUniqueKey(ctx, field, value)
	if err != nil {
		if errors.Is(err, ports.ErrNoRecord) {
			return true, nil
		}
		return false, err
	}
	return false, nil
}

// profileOf converts an internal user into its outbound view. Because
// UserProfile has no password field, the copy is the redaction.
func profileOf(u *domain.User) ports.UserProfile {
	return ports.UserProfile{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Role:      u.Role,
	}
}

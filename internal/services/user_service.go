package services

import (
	"context"
	"errors"
	"strings"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"fleet_tracker/internal/apperr"
	"fleet_tracker/internal/models"
	"fleet_tracker/internal/repository"
)

// ErrInvalidCredentials is returned by Authenticate for an unknown user or a wrong password.
var ErrInvalidCredentials = errors.New("invalid username or password")

type UserInput struct {
	Name     string
	Email    string
	Mobile   string
	Username string
	Password string
	Roles    []string
}

type UserService struct {
	store repository.UserRepository
}

func NewUserService(store repository.UserRepository) *UserService {
	return &UserService{store: store}
}

func normalizeRoles(in []string) ([]string, error) {
	if len(in) == 0 {
		return []string{models.RoleDriver}, nil
	}
	seen := make(map[string]bool, len(in))
	roles := make([]string, 0, len(in))
	for _, r := range in {
		role := strings.ToUpper(strings.TrimSpace(r))
		switch role {
		case models.RoleAdmin, models.RoleDriver:
		default:
			return nil, apperr.Validation("invalid role %q", r)
		}
		if !seen[role] {
			seen[role] = true
			roles = append(roles, role)
		}
	}
	return roles, nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Create hashes the password and stores the user with normalised roles.
func (s *UserService) Create(ctx context.Context, in UserInput) (*models.User, error) {
	if err := required("username", in.Username); err != nil {
		return nil, err
	}
	if len(in.Password) < 6 {
		return nil, apperr.Validation("password must be at least 6 characters")
	}
	roles, err := normalizeRoles(in.Roles)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.FindUserByUsername(ctx, in.Username); err == nil {
		return nil, apperr.Conflict("username %q already exists", in.Username)
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	hashed, err := hashPassword(in.Password)
	if err != nil {
		return nil, apperr.Persistence("hash password", err)
	}
	user := &models.User{
		Name:     in.Name,
		Email:    in.Email,
		Mobile:   in.Mobile,
		Username: in.Username,
		Password: hashed,
		Roles:    pq.StringArray(roles),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, apperr.Persistence("create user", err)
	}
	logrus.WithFields(logrus.Fields{"username": user.Username, "roles": roles}).Info("User created.")
	return user, nil
}

// EnsureAdmin creates an ADMIN account unless the username is already taken.
// It reports whether an account was created.
func (s *UserService) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	_, err := s.Create(ctx, UserInput{
		Name:     username,
		Username: username,
		Password: password,
		Roles:    []string{models.RoleAdmin},
	})
	if errors.Is(err, apperr.ErrConflict) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Authenticate checks the password against the stored bcrypt hash.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.store.FindUserByUsername(ctx, username)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	return s.store.FindUserByID(ctx, id)
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.store.ListUsers(ctx, "")
}

// Drivers lists users holding the DRIVER role.
func (s *UserService) Drivers(ctx context.Context) ([]models.User, error) {
	return s.store.ListUsers(ctx, models.RoleDriver)
}

// UserUpdate carries the editable fields of an account. An empty Password keeps
// the current one; Roles are applied only when the caller may change them.
type UserUpdate struct {
	Name     string
	Email    string
	Mobile   string
	Username string
	Password string
	Roles    []string
}

// Update edits user id. withRoles is false for self-service edits, which keep
// the stored roles and username whatever the input says.
func (s *UserService) Update(ctx context.Context, id uint, in UserUpdate, withRoles bool) (*models.User, error) {
	user, err := s.store.FindUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Name = in.Name
	user.Email = in.Email
	user.Mobile = in.Mobile
	if withRoles {
		if username := strings.TrimSpace(in.Username); username != "" && username != user.Username {
			if _, err := s.store.FindUserByUsername(ctx, username); err == nil {
				return nil, apperr.Conflict("username %q already exists", username)
			} else if !errors.Is(err, apperr.ErrNotFound) {
				return nil, err
			}
			user.Username = username
		}
		if len(in.Roles) > 0 {
			roles, err := normalizeRoles(in.Roles)
			if err != nil {
				return nil, err
			}
			user.Roles = pq.StringArray(roles)
		}
	}
	if in.Password != "" {
		if len(in.Password) < 6 {
			return nil, apperr.Validation("password must be at least 6 characters")
		}
		if user.Password, err = hashPassword(in.Password); err != nil {
			return nil, apperr.Persistence("hash password", err)
		}
	}

	if err := s.store.SaveUser(ctx, user); err != nil {
		return nil, apperr.Persistence("update user", err)
	}
	logrus.WithFields(logrus.Fields{"user_id": user.ID, "username": user.Username}).Info("User updated.")
	return user, nil
}

// ChangePassword replaces the password of user id. When oldPassword is given it
// must match the stored hash; self-service callers always pass it.
func (s *UserService) ChangePassword(ctx context.Context, id uint, oldPassword, newPassword string) error {
	if strings.TrimSpace(newPassword) == "" {
		return apperr.Validation("new password cannot be empty")
	}
	if len(newPassword) < 6 {
		return apperr.Validation("password must be at least 6 characters")
	}
	user, err := s.store.FindUserByID(ctx, id)
	if err != nil {
		return err
	}
	if oldPassword != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)); err != nil {
			return apperr.Validation("old password is incorrect")
		}
	}
	if user.Password, err = hashPassword(newPassword); err != nil {
		return apperr.Persistence("hash password", err)
	}
	if err := s.store.SaveUser(ctx, user); err != nil {
		return apperr.Persistence("change password", err)
	}
	logrus.WithField("username", user.Username).Info("Password changed.")
	return nil
}

func (s *UserService) ByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.store.FindUserByUsername(ctx, username)
}

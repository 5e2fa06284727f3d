package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Skotchmaster/maumeum/internal/models"
	"github.com/Skotchmaster/maumeum/internal/mykafka"
	"github.com/Skotchmaster/maumeum/internal/repo"
	"github.com/Skotchmaster/maumeum/internal/transport"
	"github.com/Skotchmaster/maumeum/pkg/hash"
	"github.com/Skotchmaster/maumeum/pkg/logging"
	"github.com/Skotchmaster/maumeum/pkg/roles"
)

type UserService struct {
	Repo   *repo.GormRepo
	Hasher hash.Hasher
	Events EventPublisher
	Now    func() time.Time
}

// ReportStanding is what moderators see about an identity's report history.
type ReportStanding struct {
	UserID        string     `json:"userId"`
	ReportedTimes int        `json:"reportedTimes"`
	Role          roles.Role `json:"role"`
}

func (s *UserService) now() time.Time {
	return nowOr(s.Now)
}

func (s *UserService) Register(ctx context.Context, req transport.RegisterRequest) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "user.register")

	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		l.Warn("register_error", "status", 400, "reason", "email and password are required")
		return nil, fmt.Errorf("%w: email and password are required", ErrArgument)
	}

	pwHash, err := s.Hasher.Hash(req.Password)
	if err != nil {
		if hash.InvalidPassword(err) {
			l.Warn("register_error", "status", 400, "reason", err.Error())
			return nil, fmt.Errorf("%w: %v", ErrArgument, err)
		}
		l.Error("register_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	user := &models.User{
		Nickname:     strings.TrimSpace(req.Nickname),
		Email:        email,
		Phone:        strings.TrimSpace(req.Phone),
		PasswordHash: pwHash,
		Role:         roles.User,
	}
	if err := s.Repo.CreateUserIfNotExists(ctx, user); err != nil {
		if errors.Is(err, repo.ErrUserAlreadyExist) {
			l.Warn("register_error", "status", 409, "reason", "user already exist")
			return nil, ErrConflict
		}
		l.Error("register_error", "status", 500, "reason", "cannot create user", "error", err)
		return nil, err
	}

	publish(ctx, s.Events, s.now(), mykafka.TopicUserEvents, user.ID, "user_registered", map[string]any{
		"userID": user.ID,
		"email":  user.Email,
	})
	l.Info("register_successful", "user_id", user.ID)
	return user, nil
}

// CheckEmail returns ErrConflict when the address is already registered.
func (s *UserService) CheckEmail(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("%w: email is required", ErrArgument)
	}
	exists, err := s.Repo.EmailExists(ctx, email)
	if err != nil {
		return err
	}
	if exists {
		return ErrConflict
	}
	return nil
}

func (s *UserService) Profile(ctx context.Context, id string) (*models.User, error) {
	user, err := s.Repo.FindUserByID(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrResourceNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, id string, req transport.PatchUserRequest) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "user.update", "user_id", id)

	fields := map[string]any{}
	if req.Nickname != nil {
		fields["nickname"] = strings.TrimSpace(*req.Nickname)
	}
	if req.Phone != nil {
		fields["phone"] = strings.TrimSpace(*req.Phone)
	}
	if req.Introduction != nil {
		fields["introduction"] = *req.Introduction
	}
	if req.Password != nil {
		pwHash, err := s.Hasher.Hash(*req.Password)
		if err != nil {
			if hash.InvalidPassword(err) {
				return nil, fmt.Errorf("%w: %v", ErrArgument, err)
			}
			l.Error("update_error", "status", 500, "reason", "cannot hash the password", "error", err)
			return nil, err
		}
		fields["password_hash"] = pwHash
	}

	user, err := s.Repo.UpdateUser(ctx, id, fields)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrResourceNotFound
		}
		l.Error("update_error", "status", 500, "error", err)
		return nil, err
	}
	return user, nil
}

// CheckPassword returns ErrAuthorization when password does not match.
func (s *UserService) CheckPassword(ctx context.Context, id, password string) error {
	user, err := s.Profile(ctx, id)
	if err != nil {
		return err
	}
	if !s.Hasher.Verify(password, user.PasswordHash) {
		return ErrAuthorization
	}
	return nil
}

// Disable soft-deletes the caller's account. The same credential checks as
// login apply, and the stored session is dropped.
func (s *UserService) Disable(ctx context.Context, id, email, password string) error {
	l := logging.FromContext(ctx).With("svc", "user.disable", "user_id", id)

	user, err := s.Repo.FindUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if repo.IsNotFound(err) {
			l.Warn("disable_failed", "status", 400, "reason", "no such identity")
			return ErrAuthentication
		}
		return err
	}
	if user.ID != id || user.Role == roles.Disabled || !s.Hasher.Verify(password, user.PasswordHash) {
		l.Warn("disable_failed", "status", 403, "reason", "credentials rejected")
		return ErrAuthorization
	}

	if _, err := s.Repo.UpdateUser(ctx, id, map[string]any{
		"role":          roles.Disabled,
		"refresh_token": nil,
	}); err != nil {
		l.Error("disable_failed", "status", 500, "error", err)
		return err
	}

	publish(ctx, s.Events, s.now(), mykafka.TopicUserEvents, id, "user_disabled", map[string]any{
		"userID": id,
	})
	l.Info("disable_successful")
	return nil
}

func (s *UserService) ListDisabled(ctx context.Context) ([]models.User, error) {
	return s.Repo.ListUsersByRole(ctx, roles.Disabled)
}

func (s *UserService) SetRole(ctx context.Context, id, role string) error {
	r := roles.Role(role)
	if !r.Valid() {
		return fmt.Errorf("%w: unknown role %q", ErrArgument, role)
	}
	if err := s.Repo.UpdateRole(ctx, id, r); err != nil {
		if repo.IsNotFound(err) {
			return ErrResourceNotFound
		}
		return err
	}
	logging.FromContext(ctx).Info("role_changed", "svc", "user.set_role", "user_id", id, "role", r)
	return nil
}

func (s *UserService) ReportStanding(ctx context.Context, id string) (*ReportStanding, error) {
	user, err := s.Profile(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ReportStanding{UserID: user.ID, ReportedTimes: user.ReportedTimes, Role: user.Role}, nil
}

// SetReportedTimes overrides the report counter, e.g. to pardon an identity.
func (s *UserService) SetReportedTimes(ctx context.Context, id string, times int) (*ReportStanding, error) {
	if times < 0 {
		return nil, fmt.Errorf("%w: reportedTimes must not be negative", ErrArgument)
	}
	user, err := s.Repo.UpdateUser(ctx, id, map[string]any{"reported_times": times})
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrResourceNotFound
		}
		return nil, err
	}
	logging.FromContext(ctx).Info("reported_times_changed", "svc", "user.set_reported_times", "user_id", id, "reported_times", times)
	return &ReportStanding{UserID: user.ID, ReportedTimes: user.ReportedTimes, Role: user.Role}, nil
}

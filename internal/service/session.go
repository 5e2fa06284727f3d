package service

import (
	"context"
	"time"

	"github.com/Skotchmaster/maumeum/internal/models"
	"github.com/Skotchmaster/maumeum/internal/mykafka"
	"github.com/Skotchmaster/maumeum/internal/repo"
	"github.com/Skotchmaster/maumeum/pkg/hash"
	"github.com/Skotchmaster/maumeum/pkg/logging"
	"github.com/Skotchmaster/maumeum/pkg/roles"
	"github.com/Skotchmaster/maumeum/pkg/tokens"
)

// SessionService is the only component that mints tokens and the only writer
// of the stored refresh token.
type SessionService struct {
	Repo   *repo.GormRepo
	Issuer *tokens.Issuer
	Hasher hash.Hasher
	Events EventPublisher

	// RevokeOnLogout clears the stored refresh token on logout. Off by
	// default: logout then only drops the client's cookies.
	RevokeOnLogout bool

	Now func() time.Time
}

type LoginResult struct {
	UserID       string
	Role         roles.Role
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
	RefreshExp   time.Time
}

type RefreshResult struct {
	UserID      string
	Role        roles.Role
	AccessToken string
	AccessExp   time.Time
}

func NewSessionService(r *repo.GormRepo, issuer *tokens.Issuer, hasher hash.Hasher, events EventPublisher) *SessionService {
	return &SessionService{
		Repo:   r,
		Issuer: issuer,
		Hasher: hasher,
		Events: events,
		Now:    time.Now,
	}
}

func (s *SessionService) now() time.Time {
	return nowOr(s.Now)
}

func (s *SessionService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "session.login")

	user, err := s.Repo.FindUserByEmail(ctx, email)
	if err != nil {
		if repo.IsNotFound(err) {
			l.Warn("login_failed", "status", 400, "reason", "no such identity")
			return nil, ErrAuthentication
		}
		l.Error("login_failed", "status", 500, "reason", "cannot load identity", "error", err)
		return nil, err
	}

	if user.Role == roles.Disabled {
		l.Warn("login_failed", "status", 403, "reason", "identity disabled", "user_id", user.ID)
		return nil, ErrAuthorization
	}
	if !s.Hasher.Verify(password, user.PasswordHash) {
		l.Warn("login_failed", "status", 403, "reason", "password mismatch", "user_id", user.ID)
		return nil, ErrAuthorization
	}

	res, err := s.issuePair(ctx, user)
	if err != nil {
		l.Error("login_failed", "status", 500, "reason", "cannot issue tokens", "error", err)
		return nil, err
	}

	publish(ctx, s.Events, s.now(), mykafka.TopicUserEvents, user.ID, "user_logged_in", map[string]any{
		"userID": user.ID,
	})
	l.Info("login_successful", "user_id", user.ID, "role", user.Role)
	return res, nil
}

func (s *SessionService) issuePair(ctx context.Context, user *models.User) (*LoginResult, error) {
	access, accessExp, err := s.Issuer.IssueAccess(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	refresh, refreshExp, err := s.Issuer.IssueRefresh(user.ID)
	if err != nil {
		return nil, err
	}
	// overwrites any previous session of this identity
	if err := s.Repo.SetRefreshToken(ctx, user.ID, refresh); err != nil {
		return nil, err
	}

	return &LoginResult{
		UserID:       user.ID,
		Role:         user.Role,
		AccessToken:  access,
		RefreshToken: refresh,
		AccessExp:    accessExp,
		RefreshExp:   refreshExp,
	}, nil
}

// Refresh issues a new access token for the holder of refreshToken. The
// refresh token itself is not rotated.
func (s *SessionService) Refresh(ctx context.Context, refreshToken string) (*RefreshResult, error) {
	l := logging.FromContext(ctx).With("svc", "session.refresh")
	now := s.now()

	holder, err := s.Repo.FindUserByRefreshToken(ctx, refreshToken)
	if err != nil && !repo.IsNotFound(err) {
		l.Error("refresh_failed", "status", 500, "reason", "cannot load identity", "error", err)
		return nil, err
	}

	res := tokens.ValidateRefresh(refreshToken, s.Issuer.RefreshSecret, now)
	if !res.OK() {
		l.Warn("refresh_failed", "status", 403, "reason", res.Failure.String(), "error", res.Err)
		return nil, ErrSessionExpired
	}
	claims := res.Claims
	if !claims.ExpiresAt.Time.After(now) {
		l.Warn("refresh_failed", "status", 403, "reason", "expired")
		return nil, ErrSessionExpired
	}

	if holder == nil || holder.ID != claims.Subject {
		l.Warn("refresh_failed", "status", 401, "reason", "token superseded", "sub", claims.Subject)
		return nil, ErrAuthentication
	}
	if holder.Role == roles.Disabled {
		l.Warn("refresh_failed", "status", 403, "reason", "identity disabled", "user_id", holder.ID)
		return nil, ErrAuthorization
	}

	access, accessExp, err := s.Issuer.IssueAccess(holder.ID, holder.Role)
	if err != nil {
		l.Error("refresh_failed", "status", 500, "reason", "cannot issue token", "error", err)
		return nil, err
	}

	l.Info("refresh_successful", "user_id", holder.ID)
	return &RefreshResult{
		UserID:      holder.ID,
		Role:        holder.Role,
		AccessToken: access,
		AccessExp:   accessExp,
	}, nil
}

// Logout revokes the stored refresh token only when RevokeOnLogout is set.
// The transport layer always clears the cookies.
func (s *SessionService) Logout(ctx context.Context, refreshToken string) error {
	if !s.RevokeOnLogout || refreshToken == "" {
		return nil
	}
	if err := s.Repo.ClearRefreshToken(ctx, refreshToken); err != nil {
		logging.FromContext(ctx).Error("logout_failed", "reason", "cannot revoke refresh token", "error", err)
		return err
	}
	return nil
}

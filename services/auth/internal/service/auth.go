package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/Skotchmaster/pokedex/pkg/apperr"
	"github.com/Skotchmaster/pokedex/pkg/events"
	pkg_hash "github.com/Skotchmaster/pokedex/pkg/hash"
	"github.com/Skotchmaster/pokedex/pkg/logging"
	"github.com/Skotchmaster/pokedex/pkg/tokens"
	"github.com/Skotchmaster/pokedex/services/auth/internal/models"
	"github.com/Skotchmaster/pokedex/services/auth/internal/repo"
	"github.com/Skotchmaster/pokedex/services/auth/internal/transport"
)

var (
	ErrValidation          = errors.New("validation failed")
	ErrDuplicateUser       = errors.New("user already exists")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrNoToken             = errors.New("no token")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
)

const (
	MsgInvalidCredentials = "invalid username or password"
	MsgNoToken            = "No Token: Please provide a token."
	MsgInvalidToken       = "Invalid Token: Please provide a valid token."
)

const (
	minUsernameLen = 3
	maxUsernameLen = 20
)

type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	UserExists(ctx context.Context, username, email string) (bool, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByRefreshToken(ctx context.Context, refreshToken string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	SetTokens(ctx context.Context, userID, access, refresh string) error
	ClearTokens(ctx context.Context, userID string) error
	SetAccessTokenForRefresh(ctx context.Context, refresh, access string) (bool, error)
	ClearTokensByRefresh(ctx context.Context, refresh string) (bool, error)
}

// AuthService owns the session lifecycle. A refresh token is valid only
// while it equals the user's stored last_refresh_token.
type AuthService struct {
	Repo             UserStore
	Tokens           *tokens.Service
	Events           events.Publisher
	AllowAdminSignup bool
}

func validationErr(msg string) error {
	return apperr.Validation(msg, fmt.Errorf("%w: %s", ErrValidation, msg))
}

func credentialsErr(reason string) error {
	return apperr.Auth(MsgInvalidCredentials, fmt.Errorf("%w: %s", ErrInvalidCredentials, reason))
}

func refreshErr(reason string) error {
	return apperr.Auth(MsgInvalidToken, fmt.Errorf("%w: %s", ErrInvalidRefreshToken, reason))
}

func normalizeRegistration(req transport.RegisterRequest) (transport.RegisterRequest, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	req.Role = strings.ToLower(strings.TrimSpace(req.Role))

	if n := len([]rune(req.Username)); n < minUsernameLen || n > maxUsernameLen {
		return req, validationErr("username must be 3 to 20 characters")
	}
	if req.Password == "" {
		return req, validationErr("password is required")
	}
	if req.Email == "" {
		return req, validationErr("email is required")
	}
	addr, err := mail.ParseAddress(req.Email)
	if err != nil || addr.Address != req.Email {
		return req, validationErr("email is malformed")
	}
	switch req.Role {
	case "":
		req.Role = tokens.RoleUser
	case tokens.RoleUser, tokens.RoleAdmin:
	default:
		return req, validationErr("role must be user or admin")
	}
	return req, nil
}

func (s *AuthService) Register(ctx context.Context, req transport.RegisterRequest) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	req, err := normalizeRegistration(req)
	if err != nil {
		l.Warn("register_error", "status", 400, "reason", err.Error())
		return nil, err
	}
	if req.Role == tokens.RoleAdmin && !s.AllowAdminSignup {
		l.Warn("register_error", "status", 400, "reason", "admin signup disabled", "username", req.Username)
		return nil, validationErr("role must be user")
	}

	user, err := s.createUser(ctx, req)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{Type: events.UserRegistered, Key: user.ID, Payload: map[string]any{
		"user_id":  user.ID,
		"username": user.Username,
		"role":     user.Role,
	}})
	l.Info("register_successful", "user_id", user.ID, "role", user.Role)
	return user, nil
}

func (s *AuthService) createUser(ctx context.Context, req transport.RegisterRequest) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.create_user")

	exists, err := s.Repo.UserExists(ctx, req.Username, req.Email)
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot check user", "error", err)
		return nil, apperr.Store(err)
	}
	if exists {
		l.Warn("register_error", "status", 400, "reason", "user already exist", "username", req.Username)
		return nil, apperr.Validation("user already exists", ErrDuplicateUser)
	}

	pwHash, err := pkg_hash.HashPassword(req.Password)
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, apperr.New(apperr.KindInternal, "cannot hash password", err)
	}

	user := &models.User{
		Username:     req.Username,
		PasswordHash: pwHash,
		Email:        req.Email,
		Role:         req.Role,
	}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repo.ErrUserAlreadyExist) {
			l.Warn("register_error", "status", 400, "reason", "user already exist", "username", req.Username)
			return nil, apperr.Validation("user already exists", ErrDuplicateUser)
		}
		l.Error("register_error", "status", 500, "reason", "cannot create user", "error", err)
		return nil, apperr.Store(err)
	}
	return user, nil
}

// EnsureUser creates the account unless the username is already taken. It
// bypasses the admin signup switch and is meant for startup seeding.
func (s *AuthService) EnsureUser(ctx context.Context, req transport.RegisterRequest) (*models.User, bool, error) {
	existing, err := s.Repo.FindByUsername(ctx, strings.TrimSpace(req.Username))
	switch {
	case err == nil:
		return existing, false, nil
	case !errors.Is(err, repo.ErrUserNotFound):
		return nil, false, apperr.Store(err)
	}

	req, err = normalizeRegistration(req)
	if err != nil {
		return nil, false, err
	}
	user, err := s.createUser(ctx, req)
	if err != nil {
		return nil, false, err
	}
	return user, true, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*transport.LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login", "username", username)

	if strings.TrimSpace(username) == "" || password == "" {
		l.Warn("login_failed", "status", 401, "reason", "missing credentials")
		return nil, credentialsErr("missing credentials")
	}

	user, err := s.Repo.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			l.Warn("login_failed", "status", 401, "reason", "User not found")
			return nil, credentialsErr("User not found")
		}
		l.Error("login_failed", "status", 500, "error", err)
		return nil, apperr.Store(err)
	}

	// any previous session ends here, even if the password turns out wrong
	if err := s.Repo.ClearTokens(ctx, user.ID); err != nil {
		l.Error("login_failed", "status", 500, "reason", "cannot clear tokens", "error", err)
		return nil, apperr.Store(err)
	}

	if !pkg_hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login_failed", "status", 401, "reason", "Password is incorrect", "user_id", user.ID)
		return nil, credentialsErr("Password is incorrect")
	}

	id := user.Identity()
	accessToken, accessExp, err := s.Tokens.IssueAccessToken(id)
	if err != nil {
		l.Error("login_failed", "status", 500, "reason", "cannot sign access token", "error", err)
		return nil, apperr.New(apperr.KindInternal, "cannot sign token", err)
	}
	refreshToken, err := s.Tokens.IssueRefreshToken(id)
	if err != nil {
		l.Error("login_failed", "status", 500, "reason", "cannot sign refresh token", "error", err)
		return nil, apperr.New(apperr.KindInternal, "cannot sign token", err)
	}

	if err := s.Repo.SetTokens(ctx, user.ID, accessToken, refreshToken); err != nil {
		l.Error("login_failed", "status", 500, "reason", "cannot store tokens", "error", err)
		return nil, apperr.Store(err)
	}
	user.LastAccessToken = &accessToken
	user.LastRefreshToken = &refreshToken

	s.publish(ctx, events.Event{Type: events.UserLoggedIn, Key: user.ID, Payload: map[string]any{"user_id": user.ID}})
	l.Info("login_successful", "user_id", user.ID)

	return &transport.LoginResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		AccessExp:    accessExp,
		User:         user,
	}, nil
}

// checkRefresh resolves the user holding refreshToken and verifies the token.
func (s *AuthService) checkRefresh(ctx context.Context, refreshToken string) (*models.User, *tokens.Claims, error) {
	l := logging.FromContext(ctx)

	if refreshToken == "" {
		l.Warn("refresh_rejected", "status", 401, "reason", "no token")
		return nil, nil, apperr.Auth(MsgNoToken, ErrNoToken)
	}

	user, err := s.Repo.FindByRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			l.Warn("refresh_rejected", "status", 401, "reason", "refresh token not on record")
			return nil, nil, refreshErr("not on record")
		}
		l.Error("refresh_rejected", "status", 500, "error", err)
		return nil, nil, apperr.Store(err)
	}

	claims, err := s.Tokens.VerifyRefresh(refreshToken)
	if err != nil {
		l.Warn("refresh_rejected", "status", 401, "reason", "verification failed", "user_id", user.ID, "error", err)
		return nil, nil, refreshErr(err.Error())
	}
	if claims.User.ID != user.ID {
		l.Warn("refresh_rejected", "status", 401, "reason", "subject mismatch", "user_id", user.ID)
		return nil, nil, refreshErr("subject mismatch")
	}
	return user, claims, nil
}

// Refresh issues a new access token from the stored user, so role changes
// made since login take effect here. The refresh token itself is not rotated.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*transport.RefreshResult, *models.User, error) {
	ctx = logging.IntoContext(ctx, logging.FromContext(ctx).With("svc", "auth.refresh"))
	l := logging.FromContext(ctx)

	user, _, err := s.checkRefresh(ctx, refreshToken)
	if err != nil {
		return nil, nil, err
	}

	accessToken, accessExp, err := s.Tokens.IssueAccessToken(user.Identity())
	if err != nil {
		l.Error("refresh_failed", "status", 500, "reason", "cannot sign access token", "error", err)
		return nil, nil, apperr.New(apperr.KindInternal, "cannot sign token", err)
	}

	ok, err := s.Repo.SetAccessTokenForRefresh(ctx, refreshToken, accessToken)
	if err != nil {
		l.Error("refresh_failed", "status", 500, "reason", "cannot store access token", "error", err)
		return nil, nil, apperr.Store(err)
	}
	if !ok {
		l.Warn("refresh_rejected", "status", 401, "reason", "session ended concurrently", "user_id", user.ID)
		return nil, nil, refreshErr("session ended")
	}

	l.Info("refresh_successful", "user_id", user.ID)
	return &transport.RefreshResult{AccessToken: accessToken, AccessExp: accessExp}, user, nil
}

func (s *AuthService) LogOut(ctx context.Context, refreshToken string) (*models.User, error) {
	ctx = logging.IntoContext(ctx, logging.FromContext(ctx).With("svc", "auth.logout"))
	l := logging.FromContext(ctx)

	user, _, err := s.checkRefresh(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	ok, err := s.Repo.ClearTokensByRefresh(ctx, refreshToken)
	if err != nil {
		l.Error("logout_failed", "status", 500, "reason", "cannot revoke refresh token", "error", err)
		return nil, apperr.Store(err)
	}
	if !ok {
		l.Warn("logout_rejected", "status", 401, "reason", "session ended concurrently", "user_id", user.ID)
		return nil, refreshErr("session ended")
	}

	s.publish(ctx, events.Event{Type: events.UserLoggedOut, Key: user.ID, Payload: map[string]any{"user_id": user.ID}})
	l.Info("successful_logout", "user_id", user.ID)
	return user, nil
}

func (s *AuthService) Me(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.Repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			return nil, apperr.NotFound("user not found", err)
		}
		return nil, apperr.Store(err)
	}
	return user, nil
}

func (s *AuthService) publish(ctx context.Context, ev events.Event) {
	if s.Events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.Events.Publish(ctx, events.TopicUserEvents, ev); err != nil {
		logging.FromContext(ctx).Error("publish_failed", "topic", events.TopicUserEvents, "type", ev.Type, "error", err)
	}
}

package service

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"

	"contacthub/internal/common"
	"contacthub/internal/common/security"
	"contacthub/internal/domain/model"
	"contacthub/internal/domain/repository"
	"contacthub/internal/platform/mail"
	"contacthub/internal/platform/metrics"
)

// Mailer hands a message off for delivery. Implementations are
// best-effort; auth flows log failures and never propagate them.
type Mailer interface {
	Send(ctx context.Context, recipient, templateID string, vars map[string]string) error
}

type AuthService struct {
	users   repository.UserRepository
	cache   *IdentityCache
	codec   *security.TokenCodec
	mailer  Mailer
	baseURL string
}

func NewAuthService(users repository.UserRepository, cache *IdentityCache, codec *security.TokenCodec, mailer Mailer, baseURL string) *AuthService {
	return &AuthService{
		users:   users,
		cache:   cache,
		codec:   codec,
		mailer:  mailer,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

type RegisterRequest struct {
	Username string     `json:"username"`
	Email    string     `json:"email"`
	Password string     `json:"password"`
	Role     model.Role `json:"role"`
}

// credentialsError is the single Unauthorized variant produced by Resolve.
// Bad signature, expired token, missing subject, and unknown user are
// deliberately indistinguishable to the caller.
func credentialsError() error {
	return common.NewError(common.ErrUnauthorized, "Could not validate credentials")
}

// RequireRole gates a resolved principal on an exact role match.
func RequireRole(user *model.User, role model.Role) (*model.User, error) {
	if user == nil || user.Role != role {
		return nil, common.NewError(common.ErrForbidden, "Permission Denied")
	}
	return user, nil
}

func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*model.User, error) {
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return nil, common.NewError(common.ErrBadRequest, "username, email and password are required")
	}
	if req.Role == "" {
		req.Role = model.RoleUser
	}
	if !req.Role.Valid() {
		return nil, common.NewError(common.ErrBadRequest, "invalid role")
	}

	if _, err := s.users.FindByEmail(ctx, req.Email); err == nil {
		return nil, common.NewError(common.ErrConflict, "Cannot create user, email already in use.")
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if _, err := s.users.FindByUsername(ctx, req.Username); err == nil {
		return nil, common.NewError(common.ErrConflict, "Cannot create user, username already exists.")
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	hashed, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.users.Create(ctx, &model.User{
		Username:       req.Username,
		Email:          req.Email,
		HashedPassword: hashed,
		Avatar:         gravatarURL(req.Email),
		Role:           req.Role,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.sendVerificationMail(ctx, user)
	return user, nil
}

// Login verifies credentials, refreshes the cache entry, and mints an
// access token bound to the username. Unknown user and wrong password
// produce the same message so accounts cannot be enumerated.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return "", common.NewError(common.ErrUnauthorized, "Incorrect login or/and password.")
		}
		return "", fmt.Errorf("failed to find user: %w", err)
	}

	if !user.Confirmed {
		return "", common.NewError(common.ErrUnauthorized, "User is not confirmed.")
	}

	if !security.CheckPasswordHash(password, user.HashedPassword) {
		return "", common.NewError(common.ErrUnauthorized, "Incorrect login or/and password.")
	}

	if err := s.cache.Put(ctx, user); err != nil {
		log.Printf("WARN: failed to cache principal %q after login: %v", user.Username, err)
	}

	token, err := s.codec.IssueAccessToken(user.Username, 0)
	if err != nil {
		return "", fmt.Errorf("failed to issue access token: %w", err)
	}
	return token, nil
}

// Resolve turns a bearer token into an authenticated principal. The cache
// is consulted first; a hit short-circuits the user store entirely, so a
// snapshot can be stale for up to the cache TTL.
func (s *AuthService) Resolve(ctx context.Context, tokenString string) (*model.User, error) {
	claims, err := s.codec.Decode(tokenString, security.PurposeAccess)
	if err != nil {
		return nil, credentialsError()
	}
	username := claims.Subject
	if username == "" {
		return nil, credentialsError()
	}

	if cached := s.cache.Get(ctx, username); cached != nil {
		metrics.ObserveCacheHit()
		return cached, nil
	}
	metrics.ObserveCacheMiss()

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, credentialsError()
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := s.cache.Put(ctx, user); err != nil {
		log.Printf("WARN: failed to cache principal %q: %v", user.Username, err)
	}
	return user, nil
}

// VerifyEmail confirms the account named by an emailed action token. It
// reports alreadyConfirmed without touching the store or the cache.
func (s *AuthService) VerifyEmail(ctx context.Context, tokenString string) (alreadyConfirmed bool, err error) {
	claims, err := s.codec.Decode(tokenString, security.PurposeVerifyEmail)
	if err != nil {
		return false, common.NewError(common.ErrBadRequest, "Invalid or expired token")
	}

	user, err := s.users.FindByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return false, common.NewError(common.ErrBadRequest, "Verification error")
		}
		return false, fmt.Errorf("failed to find user: %w", err)
	}

	if user.Confirmed {
		return true, nil
	}

	updated, err := s.users.SetConfirmed(ctx, user.Email)
	if err != nil {
		return false, fmt.Errorf("failed to confirm user: %w", err)
	}
	if err := s.cache.Put(ctx, updated); err != nil {
		log.Printf("WARN: failed to refresh cached principal %q: %v", updated.Username, err)
	}
	log.Printf("Email address %s verified.", updated.Email)
	return false, nil
}

// RequestPasswordReset mails a reset token to a known address. The cache
// is left alone here: nothing a reset request touches is cached.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	if _, err := s.users.FindByEmail(ctx, email); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.NewError(common.ErrUnauthorized, "Unauthorized")
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	token, err := s.codec.IssueActionToken(email, security.PurposeResetPassword)
	if err != nil {
		return fmt.Errorf("failed to issue reset token: %w", err)
	}

	if err := s.mailer.Send(ctx, email, mail.TemplateResetPassword, map[string]string{
		"token": token,
	}); err != nil {
		log.Printf("WARN: failed to send reset email to %q: %v", email, err)
	}
	return nil
}

// ConfirmPasswordReset validates the reset token and persists the new hash.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, tokenString, password string) error {
	claims, err := s.codec.Decode(tokenString, security.PurposeResetPassword)
	if err != nil {
		return common.NewError(common.ErrBadRequest, "Invalid or expired token")
	}

	user, err := s.users.FindByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.NewError(common.ErrBadRequest, "Invalid or expired token")
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	hashed, err := security.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if _, err := s.users.SetPasswordHash(ctx, user.Email, hashed); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	log.Printf("Password updated for a user with email %q.", user.Email)
	return nil
}

func (s *AuthService) sendVerificationMail(ctx context.Context, user *model.User) {
	token, err := s.codec.IssueActionToken(user.Email, security.PurposeVerifyEmail)
	if err != nil {
		log.Printf("WARN: failed to issue verification token for %q: %v", user.Email, err)
		return
	}
	if err := s.mailer.Send(ctx, user.Email, mail.TemplateVerifyEmail, map[string]string{
		"username": user.Username,
		"link":     s.baseURL + "/api/auth/verify_email/" + token,
	}); err != nil {
		log.Printf("WARN: failed to send verification email to %q: %v", user.Email, err)
		return
	}
	log.Printf("Verification email sent for %q.", user.Username)
}

// gravatarURL derives a default avatar from the email address.
func gravatarURL(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return "https://www.gravatar.com/avatar/" + hex.EncodeToString(sum[:]) + "?d=identicon"
}

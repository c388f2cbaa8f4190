package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/BrandonDHaskell/accesshub/internal/access"
	"github.com/BrandonDHaskell/accesshub/internal/accesshub/store"
	"github.com/BrandonDHaskell/accesshub/internal/accesshub/types"
	"github.com/BrandonDHaskell/accesshub/internal/auth"
)

const (
	maxEmailLen         = 50
	minLoginPasswordLen = 8
	maxLoginPasswordLen = 50
	minResetPasswordLen = 6
	maxResetPasswordLen = 100

	resetTokenBytes  = 32
	minResetTokenLen = 32

	DefaultResetPasswordTTL = 6 * time.Hour
)

type AuthConfig struct {
	ResetPasswordTTL time.Duration

	// PublicBaseURL prefixes reset links, e.g. "https://hub.example.com".
	PublicBaseURL string
}

type AuthService struct {
	d      Deps
	tokens *auth.TokenIssuer
	cfg    AuthConfig
}

func NewAuthService(d Deps, tokens *auth.TokenIssuer, cfg AuthConfig) *AuthService {
	if cfg.ResetPasswordTTL <= 0 {
		cfg.ResetPasswordTTL = DefaultResetPasswordTTL
	}
	cfg.PublicBaseURL = strings.TrimRight(cfg.PublicBaseURL, "/")
	return &AuthService{d: d, tokens: tokens, cfg: cfg}
}

func normalizeEmail(v *ValidationError, email string) string {
	email = strings.ToLower(strings.TrimSpace(email))
	if len(email) > maxEmailLen {
		v.Field("email", fmt.Sprintf("must contain at most %d character(s)", maxEmailLen))
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		v.Field("email", "invalid email")
	}
	return email
}

// Login checks the password and issues a session token.  Unknown email and
// wrong password are indistinguishable.
func (s *AuthService) Login(ctx context.Context, email, password string) (types.LoginResponse, error) {
	v := &ValidationError{}
	email = normalizeEmail(v, email)
	v.length("password", password, minLoginPasswordLen, maxLoginPasswordLen)
	if err := v.Err(); err != nil {
		return types.LoginResponse{}, err
	}

	u, err := s.d.Stores.Users.GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return types.LoginResponse{}, auth.ErrInvalidCredentials
	}
	if err != nil {
		return types.LoginResponse{}, err
	}
	if err := auth.CheckPassword(u.PasswordHash, password); err != nil {
		return types.LoginResponse{}, err
	}

	p := access.Principal{UserID: u.ID, Role: u.Role}
	token, exp, err := s.tokens.Issue(p)
	if err != nil {
		return types.LoginResponse{}, err
	}
	s.d.logger().Printf("login user=%s role=%s", u.ID, u.Role)
	return types.LoginResponse{Token: token, ExpiresAt: exp, UserID: u.ID, Role: u.Role}, nil
}

// Authenticate resolves a session token to a principal.  The user must
// still exist and hold the role the token was issued for.
func (s *AuthService) Authenticate(ctx context.Context, token string) (access.Principal, error) {
	p, err := s.tokens.Parse(token)
	if err != nil {
		return access.Principal{}, access.ErrUnauthenticated
	}
	u, err := s.d.Stores.Users.GetUser(ctx, p.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return access.Principal{}, access.ErrUnauthenticated
	}
	if err != nil {
		return access.Principal{}, err
	}
	if u.Role != p.Role {
		return access.Principal{}, access.ErrUnauthenticated
	}
	return p, nil
}

// IssuePasswordReset creates a single-use reset link for a customer.  The
// raw token only ever appears in the returned href.
func (s *AuthService) IssuePasswordReset(ctx context.Context, admin access.Principal, customerID string) (types.PasswordReset, error) {
	if err := requireRole(admin, access.RoleAdmin); err != nil {
		return types.PasswordReset{}, err
	}
	u, err := s.d.Stores.Users.GetUser(ctx, customerID)
	if err != nil {
		return types.PasswordReset{}, err
	}
	if u.Role != access.RoleCustomer {
		return types.PasswordReset{}, store.ErrNotFound
	}

	token, err := auth.NewSecret(resetTokenBytes)
	if err != nil {
		return types.PasswordReset{}, err
	}
	exp := s.d.now().Add(s.cfg.ResetPasswordTTL)
	if err := s.d.Stores.Users.SetPasswordReset(ctx, u.ID, auth.HashSecret(token), exp); err != nil {
		return types.PasswordReset{}, fmt.Errorf("set password reset: %w", err)
	}

	q := url.Values{}
	q.Set("email", u.Email)
	q.Set("token", token)
	s.d.logger().Printf("password reset issued user=%s by=%s expires=%s", u.ID, admin.UserID, exp.Format(time.RFC3339))
	return types.PasswordReset{
		Href:      s.cfg.PublicBaseURL + "/resetpassword?" + q.Encode(),
		ExpiresAt: exp,
	}, nil
}

// ResetPassword consumes a reset token.  A wrong email, wrong token or
// expired token all return ErrInvalidResetToken.
func (s *AuthService) ResetPassword(ctx context.Context, email, token, password string) error {
	v := &ValidationError{}
	email = normalizeEmail(v, email)
	if len(token) < minResetTokenLen {
		v.Form("invalid reset link")
	}
	v.length("password", password, minResetPasswordLen, maxResetPasswordLen)
	if len(password) > auth.MaxPasswordBytes {
		v.Field("password", fmt.Sprintf("must be at most %d bytes", auth.MaxPasswordBytes))
	}
	if err := v.Err(); err != nil {
		return err
	}

	u, err := s.d.Stores.Users.GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return ErrInvalidResetToken
	}
	if err != nil {
		return err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	err = s.d.Stores.Users.ResetPassword(ctx, u.ID, auth.HashSecret(token), hash, s.d.now())
	if errors.Is(err, store.ErrNotFound) {
		return ErrInvalidResetToken
	}
	if err != nil {
		return err
	}
	s.d.logger().Printf("password reset user=%s", u.ID)
	return nil
}

// Copyright (c) 2026 Souqly. All rights reserved.
// Author: dev@souqly.app

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/souqly/souqly-api/internal/platform/apperr"
	"github.com/souqly/souqly-api/internal/platform/constants"
	"github.com/souqly/souqly-api/internal/platform/sec"
	"github.com/souqly/souqly-api/internal/platform/validate"
	"github.com/souqly/souqly-api/pkg/pointer"
	"github.com/souqly/souqly-api/pkg/uuidv7"
)

// TokenProvider is the contract for minting signed access tokens.
type TokenProvider interface {
	GenerateAccessToken(userID, tenantID, role string, timeToLive time.Duration) (string, error)
}

type Service struct {
	accounts AccountRepository
	sessions SessionRepository
	tokens   TokenProvider
}

func NewService(accounts AccountRepository, sessions SessionRepository, tokens TokenProvider) *Service {
	return &Service{
		accounts: accounts,
		sessions: sessions,
		tokens:   tokens,
	}
}

// RegisterInput holds the data to enroll a new account.
type RegisterInput struct {
	Email       string  `json:"email"`
	Password    string  `json:"password"`
	DisplayName string  `json:"display_name"`
	Role        string  `json:"role"`
	TenantID    *string `json:"tenant_id,omitempty"`
}

// Register creates an account. Only admins reach this endpoint; the role
// and tenant binding are assigned, not self-selected by the new user.
func (service *Service) Register(context context.Context, input RegisterInput) (*Account, error) {
	if input.Role == "" {
		input.Role = string(sec.RoleMember)
	}

	v := &validate.Validator{}
	v.Required("email", input.Email).Email("email", input.Email)
	v.Required("password", input.Password).MinLen("password", input.Password, 10)
	v.Required("display_name", input.DisplayName).MaxLen("display_name", input.DisplayName, 100)
	v.OneOf("role", input.Role, string(sec.RoleAdmin), string(sec.RoleOperator), string(sec.RoleMember))
	if input.TenantID != nil {
		v.UUID("tenant_id", *input.TenantID)
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	if _, err := service.accounts.FindByEmail(context, input.Email); err == nil {
		return nil, apperr.Conflict("Email is already registered")
	} else if !apperr.IsNotFound(err) {
		return nil, err
	}

	hashed, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	account := &Account{
		ID:          uuidv7.New(),
		Email:       input.Email,
		Password:    hashed,
		DisplayName: input.DisplayName,
		Role:        sec.UserRole(input.Role),
		TenantID:    input.TenantID,
		IsActive:    true,
	}

	if err := service.accounts.Create(context, account); err != nil {
		return nil, err
	}
	return account, nil
}

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Session is a successfully established login.
type Session struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	Account               *Account  `json:"account"`
}

// Login verifies credentials and issues an access/refresh token pair.
//
// Unknown email, wrong password, and deactivated account all return the
// same generic message so the endpoint cannot be used for enumeration.
func (service *Service) Login(context context.Context, input LoginInput) (*Session, error) {
	account, err := service.accounts.FindByEmail(context, input.Email)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}
	if !sec.CheckPasswordHash(input.Password, account.Password) {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}
	if !account.IsActive {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	return service.issueSession(context, account)
}

// Refresh rotates a refresh token: the presented token is revoked before
// the replacement is issued, so a replayed token always fails.
func (service *Service) Refresh(context context.Context, refreshToken string) (*Session, error) {
	tokenHash := sec.HashToken(refreshToken)

	userID, err := service.sessions.Get(context, tokenHash)
	if err != nil {
		return nil, err
	}
	if err := service.sessions.Delete(context, tokenHash); err != nil {
		return nil, fmt.Errorf("auth_service_rotate_failed: %w", err)
	}

	account, err := service.accounts.FindByID(context, userID)
	if err != nil || !account.IsActive {
		return nil, apperr.Unauthorized("Account not found or suspended")
	}

	return service.issueSession(context, account)
}

// Logout revokes the presented refresh token. Revoking an already-invalid
// token is a successful no-op.
func (service *Service) Logout(context context.Context, refreshToken string) error {
	return service.sessions.Delete(context, sec.HashToken(refreshToken))
}

// Me returns the account behind an authenticated request.
func (service *Service) Me(context context.Context, userID string) (*Account, error) {
	return service.accounts.FindByID(context, userID)
}

// issueSession mints the access token and persists a fresh refresh session.
func (service *Service) issueSession(context context.Context, account *Account) (*Session, error) {
	tenantID := pointer.Fallback(account.TenantID, "")

	accessToken, err := service.tokens.GenerateAccessToken(
		account.ID, tenantID, string(account.Role), constants.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}

	refreshToken, err := sec.GenerateSecureToken(refreshTokenBytes)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_token_failed: %w", err)
	}

	expiresAt := time.Now().Add(RefreshTokenTTL)
	if err := service.sessions.Set(context, sec.HashToken(refreshToken), account.ID, RefreshTokenTTL); err != nil {
		return nil, fmt.Errorf("auth_service_session_creation_failed: %w", err)
	}

	return &Session{
		AccessToken:           accessToken,
		RefreshToken:          refreshToken,
		RefreshTokenExpiresAt: expiresAt,
		Account:               account,
	}, nil
}

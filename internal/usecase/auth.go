package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"jobscout/internal/domain/user"
	"jobscout/internal/pkg/jwt"
	"jobscout/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// TokenPair is what every successful authentication returns.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type AuthUsecase struct {
	users  user.Repository
	tokens jwt.Service
}

func NewAuthUsecase(users user.Repository, tokens jwt.Service) *AuthUsecase {
	return &AuthUsecase{users: users, tokens: tokens}
}

func (u *AuthUsecase) Register(ctx context.Context, name, email, password string) (user.User, TokenPair, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || len(password) < 8 {
		return user.User{}, TokenPair{}, ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return user.User{}, TokenPair{}, fmt.Errorf("hash password: %w", err)
	}

	created, err := u.users.Create(ctx, user.User{
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
	})
	if err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return user.User{}, TokenPair{}, ErrEmailTaken
		}
		return user.User{}, TokenPair{}, err
	}

	pair, err := u.issueTokens(created)
	if err != nil {
		return user.User{}, TokenPair{}, err
	}
	return created, pair, nil
}

func (u *AuthUsecase) Login(ctx context.Context, email, password string) (user.User, TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	found, err := u.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return user.User{}, TokenPair{}, ErrInvalidCredentials
		}
		return user.User{}, TokenPair{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(found.PasswordHash), []byte(password)) != nil {
		return user.User{}, TokenPair{}, ErrInvalidCredentials
	}

	pair, err := u.issueTokens(found)
	if err != nil {
		return user.User{}, TokenPair{}, err
	}
	return found, pair, nil
}

// Refresh exchanges a valid refresh token for a fresh pair.
func (u *AuthUsecase) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	claims, err := u.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return TokenPair{}, ErrInvalidCredentials
	}

	found, err := u.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return TokenPair{}, ErrInvalidCredentials
		}
		return TokenPair{}, err
	}

	return u.issueTokens(found)
}

func (u *AuthUsecase) issueTokens(usr user.User) (TokenPair, error) {
	access, err := u.tokens.GenerateAccessToken(usr.ID, usr.Email)
	if err != nil {
		return TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := u.tokens.GenerateRefreshToken(usr.ID)
	if err != nil {
		return TokenPair{}, fmt.Errorf("sign refresh token: %w", err)
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

package service

import (
	"context"
	"errors"
	"fmt"

	"vidshare/model"
	"vidshare/security"

	"go.uber.org/zap"
)

type Profile struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

type Accounts struct {
	store  Store
	hasher security.Hasher
	tokens TokenIssuer
}

func NewAccounts(store Store, hasher security.Hasher, tokens TokenIssuer) *Accounts {
	return &Accounts{
		store:  store,
		hasher: hasher,
		tokens: tokens,
	}
}

// Register creates a user. Email uniqueness is left to the database, a
// duplicate surfaces as ErrConflict.
func (a *Accounts) Register(ctx context.Context, nickname, email, password string) error {
	if nickname == "" || email == "" || password == "" {
		return newError(ErrValidation, "Invalid data", nil)
	}

	hash, err := a.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("failed to hash password, %w", err)
	}

	err = a.store.CreateUser(ctx, &model.User{
		Username: nickname,
		Email:    email,
		Password: hash,
	})
	if err != nil {
		if errors.Is(err, model.ErrDuplicate) {
			return newError(ErrConflict, "User already exists", err)
		}

		return fmt.Errorf("failed to create user, %w", err)
	}

	zap.L().Debug("User registered", zap.String("email", email))
	return nil
}

// Login checks the credentials and returns a signed access token
func (a *Accounts) Login(ctx context.Context, email, password string) (string, error) {
	if email == "" || password == "" {
		return "", newError(ErrValidation, "Invalid email or password", nil)
	}

	user, err := a.store.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return "", newError(ErrUnauthorized, "Invalid email or password", nil)
		}

		return "", fmt.Errorf("failed to look up user, %w", err)
	}

	ok, err := a.hasher.Verify(password, user.Password)
	if err != nil {
		return "", fmt.Errorf("failed to verify password, %w", err)
	}

	if !ok {
		return "", newError(ErrUnauthorized, "Invalid email or password", nil)
	}

	token, err := a.tokens.Issue(security.Identity{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
	})
	if err != nil {
		return "", fmt.Errorf("failed to issue token, %w", err)
	}

	return token, nil
}

func (a *Accounts) Profile(ctx context.Context, id security.Identity) (*Profile, error) {
	user, err := a.store.UserByID(ctx, id.ID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, newError(ErrNotFound, "User not found", err)
		}

		return nil, fmt.Errorf("failed to fetch user, %w", err)
	}

	return &Profile{
		Username: user.Username,
		Email:    user.Email,
	}, nil
}

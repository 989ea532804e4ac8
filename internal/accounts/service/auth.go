package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tabtrack/accounts/internal/accounts/domain"
	"github.com/tabtrack/accounts/internal/accounts/store"
	"github.com/tabtrack/accounts/pkg/cryptox"
	"github.com/tabtrack/accounts/pkg/idx"
	"github.com/tabtrack/accounts/pkg/slogx"
)

var (
	ErrEmailTaken    = errors.New("email already exists")
	ErrUsernameTaken = errors.New("username already exists")
)

// AuthService owns the business rules for account creation and credential
// verification. It is stateless: every call consults the store fresh.
type AuthService struct {
	Store store.Store

	// EmailIdentity selects the two-field variant: email is tracked as a
	// second unique key and becomes the login identity. When false the
	// service ignores emails entirely and users log in by username.
	EmailIdentity bool
}

// Signup creates a new account after checking that no existing record claims
// the same identity. Email is checked before username so a request colliding
// on both reports the email. The checks and the insert run in one
// transaction, and the unique indexes back them up, so concurrent signups
// with the same identity resolve to at most one success.
func (s *AuthService) Signup(
	ctx context.Context,
	email, username, rawPassword string,
) (domain.User, error) {
	l := slogx.FromContext(ctx)

	passHash, err := cryptox.HashPassword(rawPassword)
	if err != nil {
		l.Error("failed to hash password", slog.Any("error", err))
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := domain.User{
		ID:           idx.New().String(),
		Username:     username,
		PasswordHash: passHash,
	}
	if s.EmailIdentity {
		user.Email = &email
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if s.EmailIdentity {
			if _, err := tx.Users().GetUserByEmail(ctx, email); err == nil {
				return ErrEmailTaken
			} else if !errors.Is(err, store.ErrNotFound) {
				return err
			}
		}

		if _, err := tx.Users().GetUserByUsername(ctx, username); err == nil {
			return ErrUsernameTaken
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		return tx.Users().CreateUser(ctx, user)
	})
	if err != nil {
		// A concurrent signup can slip past the pre-checks and lose on the
		// unique index instead; attribute the collision to a field so the
		// caller sees the same error either way.
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, s.attributeCollision(ctx, email)
		}
		return domain.User{}, err
	}

	l.Info("user created", slog.String("user_id", user.ID), slog.String("username", username))
	return user, nil
}

// Login verifies rawPassword against the stored hash for the given identity.
// An unknown identity and a wrong password both return (false, nil); only
// store failures produce a non-nil error.
func (s *AuthService) Login(ctx context.Context, identity, rawPassword string) (bool, error) {
	user, err := s.GetUserByIdentity(ctx, identity)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := cryptox.VerifyPassword(rawPassword, user.PasswordHash); err != nil {
		return false, nil
	}
	return true, nil
}

// GetUserByIdentity looks up a user by their login identity: email in the
// two-field variant, username otherwise. Returns store.ErrNotFound when the
// record does not exist.
func (s *AuthService) GetUserByIdentity(ctx context.Context, identity string) (domain.User, error) {
	if s.EmailIdentity {
		return s.Store.Users().GetUserByEmail(ctx, identity)
	}
	return s.Store.Users().GetUserByUsername(ctx, identity)
}

// attributeCollision decides which identity field a constraint violation
// belongs to, mirroring the check order of Signup.
func (s *AuthService) attributeCollision(ctx context.Context, email string) error {
	if s.EmailIdentity {
		if _, err := s.Store.Users().GetUserByEmail(ctx, email); err == nil {
			return ErrEmailTaken
		}
	}
	return ErrUsernameTaken
}

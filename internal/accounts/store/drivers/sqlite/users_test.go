package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/tabtrack/accounts/internal/accounts/domain"
	"github.com/tabtrack/accounts/internal/accounts/store"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	st, err := NewStore(filepath.Join(t.TempDir(), "accounts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func strPtr(s string) *string { return &s }

func TestUsersCreateAndGet(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	u := domain.User{
		ID:           "01ARZ3NDEKTSV4RRFFQ69G5FAV",
		Username:     "alice",
		Email:        strPtr("alice@example.com"),
		PasswordHash: "$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA",
	}
	require.NoError(t, st.Users().CreateUser(ctx, u))

	byID, err := st.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "alice", byID.Username)
	require.False(t, byID.CreatedAt.IsZero())

	byName, err := st.Users().GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, u.ID, byName.ID)

	byEmail, err := st.Users().GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.Equal(t, u.ID, byEmail.ID)
	require.NotNil(t, byEmail.Email)
	require.Equal(t, "alice@example.com", *byEmail.Email)
}

func TestUsersGetMissing(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	_, err := st.Users().GetUserByUsername(ctx, "ghost")
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = st.Users().GetUserByEmail(ctx, "ghost@example.com")
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = st.Users().GetUserByID(ctx, "missing-id")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestUsersUniqueConstraints(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	base := domain.User{
		ID:           "01ARZ3NDEKTSV4RRFFQ69G5FAV",
		Username:     "bob",
		Email:        strPtr("bob@example.com"),
		PasswordHash: "hash",
	}
	require.NoError(t, st.Users().CreateUser(ctx, base))

	t.Run("duplicate username", func(t *testing.T) {
		dup := base
		dup.ID = "01ARZ3NDEKTSV4RRFFQ69G5FB0"
		dup.Email = strPtr("other@example.com")
		err := st.Users().CreateUser(ctx, dup)
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("duplicate email", func(t *testing.T) {
		dup := base
		dup.ID = "01ARZ3NDEKTSV4RRFFQ69G5FB1"
		dup.Username = "bob2"
		err := st.Users().CreateUser(ctx, dup)
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("null emails do not collide", func(t *testing.T) {
		a := domain.User{ID: "01ARZ3NDEKTSV4RRFFQ69G5FB2", Username: "carol", PasswordHash: "hash"}
		b := domain.User{ID: "01ARZ3NDEKTSV4RRFFQ69G5FB3", Username: "dave", PasswordHash: "hash"}
		require.NoError(t, st.Users().CreateUser(ctx, a))
		require.NoError(t, st.Users().CreateUser(ctx, b))
	})
}

func TestWithTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	boom := errors.New("boom")
	err := st.WithTx(ctx, func(tx store.Tx) error {
		u := domain.User{ID: "01ARZ3NDEKTSV4RRFFQ69G5FAV", Username: "erin", PasswordHash: "hash"}
		if err := tx.Users().CreateUser(ctx, u); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	count, err := st.Users().Count(ctx)
	require.NoError(t, err)
	require.Zero(t, count, "rolled back insert must not persist")
}

func TestWithTxCommits(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	err := st.WithTx(ctx, func(tx store.Tx) error {
		return tx.Users().CreateUser(ctx, domain.User{
			ID:           "01ARZ3NDEKTSV4RRFFQ69G5FAV",
			Username:     "frank",
			PasswordHash: "hash",
		})
	})
	require.NoError(t, err)

	count, err := st.Users().Count(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
}

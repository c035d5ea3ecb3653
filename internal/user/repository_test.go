package user_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/oauthgate/internal/user"
)

type mockDB struct {
	mock.Mock
}

func (m *mockDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	called := m.Called(ctx, sql, args)
	return called.Get(0).(pgx.Row)
}

// row scans fixed values into the destinations or returns err.
type row struct {
	err    error
	values []any
}

func (r row) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *string:
			*p = r.values[i].(string)
		case **string:
			v, _ := r.values[i].(*string)
			*p = v
		case *time.Time:
			*p = r.values[i].(time.Time)
		default:
			return errors.New("unexpected scan destination")
		}
	}
	return nil
}

func ptr(s string) *string { return &s }

func TestRepository_Create(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("inserts with generated id", func(t *testing.T) {
		t.Parallel()

		db := &mockDB{}
		db.On("QueryRow", ctx, mock.Anything, []any{"id-1", "a@b.com", ptr("Ann"), "tok"}).
			Return(row{values: []any{"id-1", "a@b.com", ptr("Ann"), "tok", created}}).Once()

		repo := user.NewRepository(db, user.WithIDGenerator(func() (string, error) { return "id-1", nil }))
		u, err := repo.Create(ctx, user.NewUser{Email: "a@b.com", Name: ptr("Ann"), AccessToken: "tok"})
		require.NoError(t, err)
		require.Equal(t, "id-1", u.ID)
		require.Equal(t, "a@b.com", u.Email)
		require.Equal(t, "Ann", u.DisplayName())
		require.Equal(t, created, u.CreatedAt)
		db.AssertExpectations(t)
	})

	t.Run("default generator yields distinct uuids", func(t *testing.T) {
		t.Parallel()

		var ids []string
		db := &mockDB{}
		db.On("QueryRow", ctx, mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				ids = append(ids, args.Get(2).([]any)[0].(string))
			}).
			Return(row{values: []any{"x", "a@b.com", (*string)(nil), "tok", created}}).Twice()

		repo := user.NewRepository(db)
		_, err := repo.Create(ctx, user.NewUser{Email: "a@b.com", AccessToken: "tok"})
		require.NoError(t, err)
		_, err = repo.Create(ctx, user.NewUser{Email: "a@b.com", AccessToken: "tok"})
		require.NoError(t, err)

		require.Len(t, ids, 2)
		require.Len(t, ids[0], 36)
		require.NotEqual(t, ids[0], ids[1])
	})

	t.Run("missing email rejected without query", func(t *testing.T) {
		t.Parallel()

		db := &mockDB{}
		repo := user.NewRepository(db)
		_, err := repo.Create(ctx, user.NewUser{Email: " ", AccessToken: "tok"})
		require.ErrorIs(t, err, user.ErrCreateFailed)
		require.ErrorIs(t, err, user.ErrInvalidInput)
		db.AssertNotCalled(t, "QueryRow", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("id generation failure", func(t *testing.T) {
		t.Parallel()

		repo := user.NewRepository(&mockDB{}, user.WithIDGenerator(func() (string, error) {
			return "", errors.New("entropy")
		}))
		_, err := repo.Create(ctx, user.NewUser{Email: "a@b.com", AccessToken: "tok"})
		require.ErrorIs(t, err, user.ErrCreateFailed)
	})

	t.Run("insert failure", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("unique violation")
		db := &mockDB{}
		db.On("QueryRow", ctx, mock.Anything, mock.Anything).Return(row{err: boom})

		repo := user.NewRepository(db)
		_, err := repo.Create(ctx, user.NewUser{Email: "a@b.com", AccessToken: "tok"})
		require.ErrorIs(t, err, user.ErrCreateFailed)
		require.ErrorIs(t, err, boom)
	})
}

func TestRepository_FindByID(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		t.Parallel()

		db := &mockDB{}
		db.On("QueryRow", ctx, mock.Anything, []any{"id-1"}).
			Return(row{values: []any{"id-1", "a@b.com", (*string)(nil), "tok", time.Now()}})

		u, ok, err := user.NewRepository(db).FindByID(ctx, "id-1")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "id-1", u.ID)
		require.Nil(t, u.Name)
	})

	t.Run("missing is not an error", func(t *testing.T) {
		t.Parallel()

		db := &mockDB{}
		db.On("QueryRow", ctx, mock.Anything, mock.Anything).Return(row{err: pgx.ErrNoRows})

		u, ok, err := user.NewRepository(db).FindByID(ctx, "nope")
		require.NoError(t, err)
		require.False(t, ok)
		require.Nil(t, u)
	})

	t.Run("empty id short-circuits", func(t *testing.T) {
		t.Parallel()

		db := &mockDB{}
		u, ok, err := user.NewRepository(db).FindByID(ctx, "")
		require.NoError(t, err)
		require.False(t, ok)
		require.Nil(t, u)
		db.AssertNotCalled(t, "QueryRow", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("query failure", func(t *testing.T) {
		t.Parallel()

		db := &mockDB{}
		db.On("QueryRow", ctx, mock.Anything, mock.Anything).Return(row{err: errors.New("conn reset")})

		_, ok, err := user.NewRepository(db).FindByID(ctx, "id-1")
		require.False(t, ok)
		require.ErrorIs(t, err, user.ErrQueryFailed)
	})
}

func TestUser_SessionAuthHash(t *testing.T) {
	t.Parallel()

	a := &user.User{ID: "1", AccessToken: "token-a"}
	b := &user.User{ID: "1", AccessToken: "token-b"}

	require.Len(t, a.SessionAuthHash(), 64)
	require.Equal(t, a.SessionAuthHash(), (&user.User{AccessToken: "token-a"}).SessionAuthHash())
	require.NotEqual(t, a.SessionAuthHash(), b.SessionAuthHash())
}

func TestUser_LogValueHidesToken(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))
	log.Info("signed in", slog.Any("user", &user.User{ID: "1", Email: "a@b.com", AccessToken: "secret-token"}))

	require.Contains(t, buf.String(), "a@b.com")
	require.NotContains(t, buf.String(), "secret-token")
}

package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// DB is the subset of pgxpool.Pool the repository needs.
// A pool blocks callers until a connection frees up instead of failing.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// IDGenerator returns a new unique user ID.
type IDGenerator func() (string, error)

// Option configures a Repository.
type Option func(*Repository)

// WithIDGenerator replaces the default UUIDv7 generator.
func WithIDGenerator(gen IDGenerator) Option {
	return func(r *Repository) {
		if gen != nil {
			r.newID = gen
		}
	}
}

// Repository persists users in PostgreSQL.
type Repository struct {
	db    DB
	newID IDGenerator
}

// NewRepository creates a Repository on top of db.
func NewRepository(db DB, opts ...Option) *Repository {
	r := &Repository{db: db, newID: uuidV7}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

const createUserQuery = `
INSERT INTO users (id, email, name, access_token)
VALUES ($1, $2, $3, $4)
RETURNING id, email, name, access_token, created_at`

// Create inserts a new user with a freshly generated ID.
// Every call inserts a new row; repeated sign-ins with the same email are
// stored as separate users.
func (r *Repository) Create(ctx context.Context, in NewUser) (*User, error) {
	if strings.TrimSpace(in.Email) == "" {
		return nil, errors.Join(ErrCreateFailed, ErrInvalidInput, errors.New("email is required"))
	}
	if in.AccessToken == "" {
		return nil, errors.Join(ErrCreateFailed, ErrInvalidInput, errors.New("access token is required"))
	}

	id, err := r.newID()
	if err != nil {
		return nil, errors.Join(ErrCreateFailed, fmt.Errorf("generate id: %w", err))
	}

	var u User
	err = r.db.QueryRow(ctx, createUserQuery, id, in.Email, in.Name, in.AccessToken).
		Scan(&u.ID, &u.Email, &u.Name, &u.AccessToken, &u.CreatedAt)
	if err != nil {
		return nil, errors.Join(ErrCreateFailed, err)
	}
	return &u, nil
}

const findUserByIDQuery = `
SELECT id, email, name, access_token, created_at
FROM users
WHERE id = $1`

// FindByID returns the user with the given ID.
// A missing user is reported as (nil, false, nil).
func (r *Repository) FindByID(ctx context.Context, id string) (*User, bool, error) {
	if id == "" {
		return nil, false, nil
	}

	var u User
	err := r.db.QueryRow(ctx, findUserByIDQuery, id).
		Scan(&u.ID, &u.Email, &u.Name, &u.AccessToken, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, errors.Join(ErrQueryFailed, err)
	}
	return &u, true, nil
}

func uuidV7() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

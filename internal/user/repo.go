package user

import "context"

type Store interface {
	// Create inserts the user; a duplicate email yields a Conflict.
	Create(ctx context.Context, u User, passwordHash string) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
	// GetByEmail also returns the stored bcrypt hash for login checks.
	GetByEmail(ctx context.Context, email string) (User, string, error)
	List(ctx context.Context, opts ListOpts) ([]User, int, error)
	Update(ctx context.Context, id string, upd Update) (User, error)
	Delete(ctx context.Context, id string) error

	GetPasswordHash(ctx context.Context, id string) (string, error)
	SetPasswordHash(ctx context.Context, id, hash string) error
	CountByRole(ctx context.Context, role string) (int, error)
}

package user

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lingua-school/lingua-lms/internal/db"
	"github.com/lingua-school/lingua-lms/internal/httperr"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(d *sql.DB) *SQLStore { return &SQLStore{db: d} }

const userCols = `id, email, first_name, last_name, role, is_active, avatar, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.Role, &u.IsActive, &u.Avatar, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (s *SQLStore) Create(ctx context.Context, u User, passwordHash string) (User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := time.Now().Unix()
	u.CreatedAt, u.UpdatedAt = now, now
	u.Email = strings.ToLower(u.Email)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, first_name, last_name, role, is_active, avatar, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		u.ID, u.Email, passwordHash, u.FirstName, u.LastName, u.Role, u.IsActive, u.Avatar, u.CreatedAt, u.UpdatedAt)
	if db.IsUniqueViolation(err) {
		return User{}, httperr.Conflict("user with this email already exists")
	}
	if err != nil {
		return User{}, err
	}
	return u, nil
}

func (s *SQLStore) GetByID(ctx context.Context, id string) (User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+userCols+` FROM users WHERE id=$1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, httperr.NotFound("user not found")
	}
	return u, err
}

func (s *SQLStore) GetByEmail(ctx context.Context, email string) (User, string, error) {
	var u User
	var hash string
	err := s.db.QueryRowContext(ctx,
		`SELECT `+userCols+`, password_hash FROM users WHERE email=$1`, strings.ToLower(email)).
		Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.Role, &u.IsActive, &u.Avatar, &u.CreatedAt, &u.UpdatedAt, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, "", httperr.NotFound("user not found")
	}
	return u, hash, err
}

func (s *SQLStore) List(ctx context.Context, opts ListOpts) ([]User, int, error) {
	if opts.Limit <= 0 || opts.Limit > 100 {
		opts.Limit = 10
	}

	where := ` WHERE 1=1`
	var args []any
	if opts.Role != "" {
		args = append(args, opts.Role)
		where += ` AND role=$` + strconv.Itoa(len(args))
	}
	if opts.Active != nil {
		args = append(args, *opts.Active)
		where += ` AND is_active=$` + strconv.Itoa(len(args))
	}
	if opts.Search != "" {
		args = append(args, "%"+strings.ToLower(opts.Search)+"%")
		n := strconv.Itoa(len(args))
		where += ` AND (LOWER(first_name) LIKE $` + n + ` OR LOWER(last_name) LIKE $` + n + ` OR LOWER(email) LIKE $` + n + `)`
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM users`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, opts.Limit, opts.Offset)
	sqlStr := `SELECT ` + userCols + ` FROM users` + where +
		` ORDER BY created_at DESC LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))
	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, u)
	}
	return out, total, rows.Err()
}

func (s *SQLStore) Update(ctx context.Context, id string, upd Update) (User, error) {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if upd.FirstName != nil {
		u.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		u.LastName = *upd.LastName
	}
	if upd.Avatar != nil {
		u.Avatar = *upd.Avatar
	}
	if upd.Role != nil {
		u.Role = *upd.Role
	}
	if upd.IsActive != nil {
		u.IsActive = *upd.IsActive
	}
	u.UpdatedAt = time.Now().Unix()
	_, err = s.db.ExecContext(ctx,
		`UPDATE users SET first_name=$1, last_name=$2, avatar=$3, role=$4, is_active=$5, updated_at=$6 WHERE id=$7`,
		u.FirstName, u.LastName, u.Avatar, u.Role, u.IsActive, u.UpdatedAt, id)
	return u, err
}

func (s *SQLStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return httperr.NotFound("user not found")
	}
	return nil
}

func (s *SQLStore) GetPasswordHash(ctx context.Context, id string) (string, error) {
	var hash string
	err := s.db.QueryRowContext(ctx, `SELECT password_hash FROM users WHERE id=$1`, id).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", httperr.NotFound("user not found")
	}
	return hash, err
}

func (s *SQLStore) SetPasswordHash(ctx context.Context, id, hash string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE users SET password_hash=$1, updated_at=$2 WHERE id=$3`,
		hash, time.Now().Unix(), id)
	return err
}

func (s *SQLStore) CountByRole(ctx context.Context, role string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM users WHERE role=$1`, role).Scan(&n)
	return n, err
}

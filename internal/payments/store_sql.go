package payments

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/lingua-school/lingua-lms/internal/httperr"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(database *sql.DB) *SQLStore { return &SQLStore{db: database} }

func (s *SQLStore) Create(ctx context.Context, p *Payment) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt == 0 {
		p.CreatedAt = time.Now().Unix()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO payments (id, user_id, course_id, amount, currency, status, provider, provider_ref, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		p.ID, p.UserID, p.CourseID, p.Amount, p.Currency, p.Status, p.Provider, p.ProviderRef, p.CreatedAt)
	if err != nil {
		return httperr.Wrap("create payment", err)
	}
	return nil
}

func (s *SQLStore) Get(ctx context.Context, id string) (*Payment, error) {
	var p Payment
	err := s.db.QueryRowContext(ctx,
		`SELECT p.id, p.user_id, p.course_id, c.title, p.amount, p.currency, p.status, p.provider, p.provider_ref, p.created_at
		   FROM payments p JOIN courses c ON c.id = p.course_id
		  WHERE p.id = $1`, id).
		Scan(&p.ID, &p.UserID, &p.CourseID, &p.CourseTitle, &p.Amount, &p.Currency, &p.Status, &p.Provider, &p.ProviderRef, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, httperr.NotFound("payment %s not found", id)
	}
	if err != nil {
		return nil, httperr.Wrap("get payment", err)
	}
	return &p, nil
}

func (s *SQLStore) SetStatus(ctx context.Context, id, status string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE payments SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return httperr.Wrap("update payment", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return httperr.NotFound("payment %s not found", id)
	}
	return nil
}

// List returns one user's payments, or every payment when userID is
// empty (admin view).
func (s *SQLStore) List(ctx context.Context, userID string) ([]Payment, error) {
	q := `SELECT p.id, p.user_id, p.course_id, c.title, p.amount, p.currency, p.status, p.provider, p.provider_ref, p.created_at
	        FROM payments p JOIN courses c ON c.id = p.course_id`
	var args []any
	if userID != "" {
		q += ` WHERE p.user_id = $1`
		args = append(args, userID)
	}
	q += ` ORDER BY p.created_at DESC`
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, httperr.Wrap("list payments", err)
	}
	defer rows.Close()
	var out []Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.UserID, &p.CourseID, &p.CourseTitle, &p.Amount, &p.Currency, &p.Status, &p.Provider, &p.ProviderRef, &p.CreatedAt); err != nil {
			return nil, httperr.Wrap("scan payment", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

package catalog

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

const productCols = `id, name, description, price, category, discount, discount_type, is_active, created_at, updated_at`

func scanProduct(row interface{ Scan(...any) error }) (*Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Category,
		&p.Discount, &p.DiscountType, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.FinalPrice = FinalPrice(p.Price, p.Discount, p.DiscountType)
	return &p, nil
}

func (s *SQLStore) CreateProduct(ctx context.Context, p *Product) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().Unix()
	p.CreatedAt, p.UpdatedAt = now, now
	p.FinalPrice = FinalPrice(p.Price, p.Discount, p.DiscountType)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO products (`+productCols+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		p.ID, p.Name, p.Description, p.Price, p.Category,
		p.Discount, p.DiscountType, p.IsActive, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return httperr.Wrap("create product", err)
	}
	return nil
}

func (s *SQLStore) GetProduct(ctx context.Context, id string) (*Product, error) {
	p, err := scanProduct(s.db.QueryRowContext(ctx,
		`SELECT `+productCols+` FROM products WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, httperr.NotFound("product %s not found", id)
	}
	if err != nil {
		return nil, httperr.Wrap("get product", err)
	}
	return p, nil
}

func (s *SQLStore) ListProducts(ctx context.Context, activeOnly bool) ([]Product, error) {
	q := `SELECT ` + productCols + ` FROM products`
	if activeOnly {
		q += ` WHERE is_active`
	}
	q += ` ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, httperr.Wrap("list products", err)
	}
	defer rows.Close()
	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, httperr.Wrap("scan product", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (s *SQLStore) UpdateProduct(ctx context.Context, id string, upd ProductUpdate) (*Product, error) {
	p, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if upd.Name != nil {
		p.Name = *upd.Name
	}
	if upd.Description != nil {
		p.Description = *upd.Description
	}
	if upd.Price != nil {
		p.Price = *upd.Price
	}
	if upd.Category != nil {
		p.Category = *upd.Category
	}
	if upd.Discount != nil {
		p.Discount = *upd.Discount
	}
	if upd.DiscountType != nil {
		p.DiscountType = *upd.DiscountType
	}
	if upd.IsActive != nil {
		p.IsActive = *upd.IsActive
	}
	p.UpdatedAt = time.Now().Unix()
	p.FinalPrice = FinalPrice(p.Price, p.Discount, p.DiscountType)
	_, err = s.db.ExecContext(ctx,
		`UPDATE products SET name = $1, description = $2, price = $3, category = $4,
		        discount = $5, discount_type = $6, is_active = $7, updated_at = $8
		  WHERE id = $9`,
		p.Name, p.Description, p.Price, p.Category,
		p.Discount, p.DiscountType, p.IsActive, p.UpdatedAt, id)
	if err != nil {
		return nil, httperr.Wrap("update product", err)
	}
	return p, nil
}

func (s *SQLStore) DeleteProduct(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return httperr.Wrap("delete product", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return httperr.NotFound("product %s not found", id)
	}
	return nil
}

func (s *SQLStore) CreateAnnouncement(ctx context.Context, a *Announcement) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	a.CreatedAt = time.Now().Unix()
	if a.StartAt == 0 {
		a.StartAt = a.CreatedAt
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO announcements (id, title, content, image, target_role, is_active, start_at, end_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		a.ID, a.Title, a.Content, a.Image, a.TargetRole, a.IsActive, a.StartAt, a.EndAt, a.CreatedAt)
	if err != nil {
		return httperr.Wrap("create announcement", err)
	}
	return nil
}

// ListAnnouncements returns announcements active at the given instant
// that target the caller's role. An empty target_role means everyone;
// forRole "" (admin view) returns all rows regardless of window.
func (s *SQLStore) ListAnnouncements(ctx context.Context, forRole string, now int64) ([]Announcement, error) {
	q := `SELECT id, title, content, image, target_role, is_active, start_at, end_at, created_at
	        FROM announcements`
	var args []any
	if forRole != "" {
		q += ` WHERE is_active AND start_at <= $1 AND (end_at IS NULL OR end_at >= $1)
		         AND (target_role = '' OR target_role = $2)`
		args = append(args, now, forRole)
	}
	q += ` ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, httperr.Wrap("list announcements", err)
	}
	defer rows.Close()
	var out []Announcement
	for rows.Next() {
		var a Announcement
		if err := rows.Scan(&a.ID, &a.Title, &a.Content, &a.Image, &a.TargetRole,
			&a.IsActive, &a.StartAt, &a.EndAt, &a.CreatedAt); err != nil {
			return nil, httperr.Wrap("scan announcement", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *SQLStore) UpdateAnnouncement(ctx context.Context, id string, upd AnnouncementUpdate) (*Announcement, error) {
	var a Announcement
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, content, image, target_role, is_active, start_at, end_at, created_at
		   FROM announcements WHERE id = $1`, id).
		Scan(&a.ID, &a.Title, &a.Content, &a.Image, &a.TargetRole,
			&a.IsActive, &a.StartAt, &a.EndAt, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, httperr.NotFound("announcement %s not found", id)
	}
	if err != nil {
		return nil, httperr.Wrap("get announcement", err)
	}
	if upd.Title != nil {
		a.Title = *upd.Title
	}
	if upd.Content != nil {
		a.Content = *upd.Content
	}
	if upd.Image != nil {
		a.Image = *upd.Image
	}
	if upd.TargetRole != nil {
		a.TargetRole = *upd.TargetRole
	}
	if upd.IsActive != nil {
		a.IsActive = *upd.IsActive
	}
	if upd.StartAt != nil {
		a.StartAt = *upd.StartAt
	}
	if upd.EndAt != nil {
		a.EndAt = upd.EndAt
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE announcements SET title = $1, content = $2, image = $3, target_role = $4,
		        is_active = $5, start_at = $6, end_at = $7
		  WHERE id = $8`,
		a.Title, a.Content, a.Image, a.TargetRole, a.IsActive, a.StartAt, a.EndAt, id)
	if err != nil {
		return nil, httperr.Wrap("update announcement", err)
	}
	return &a, nil
}

func (s *SQLStore) DeleteAnnouncement(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM announcements WHERE id = $1`, id)
	if err != nil {
		return httperr.Wrap("delete announcement", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return httperr.NotFound("announcement %s not found", id)
	}
	return nil
}

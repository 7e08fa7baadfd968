package payments

import "context"

type Store interface {
	Create(ctx context.Context, p *Payment) error
	Get(ctx context.Context, id string) (*Payment, error)
	SetStatus(ctx context.Context, id, status string) error
	List(ctx context.Context, userID string) ([]Payment, error)
}

package catalog

import "context"

// Store persists the storefront catalog: products for sale and
// announcements shown on the dashboards.
type Store interface {
	CreateProduct(ctx context.Context, p *Product) error
	GetProduct(ctx context.Context, id string) (*Product, error)
	ListProducts(ctx context.Context, activeOnly bool) ([]Product, error)
	UpdateProduct(ctx context.Context, id string, upd ProductUpdate) (*Product, error)
	DeleteProduct(ctx context.Context, id string) error

	CreateAnnouncement(ctx context.Context, a *Announcement) error
	ListAnnouncements(ctx context.Context, forRole string, now int64) ([]Announcement, error)
	UpdateAnnouncement(ctx context.Context, id string, upd AnnouncementUpdate) (*Announcement, error)
	DeleteAnnouncement(ctx context.Context, id string) error
}

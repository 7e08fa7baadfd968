package catalog

const (
	DiscountPercentage = "percentage"
	DiscountFixed      = "fixed"
)

type Product struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Description  string  `json:"description,omitempty"`
	Price        float64 `json:"price"`
	Category     string  `json:"category,omitempty"`
	Discount     float64 `json:"discount"`
	DiscountType string  `json:"discountType,omitempty"`
	FinalPrice   float64 `json:"finalPrice"`
	IsActive     bool    `json:"isActive"`
	CreatedAt    int64   `json:"created_at"`
	UpdatedAt    int64   `json:"updated_at"`
}

type ProductUpdate struct {
	Name         *string  `json:"name"`
	Description  *string  `json:"description"`
	Price        *float64 `json:"price"`
	Category     *string  `json:"category"`
	Discount     *float64 `json:"discount"`
	DiscountType *string  `json:"discountType"`
	IsActive     *bool    `json:"isActive"`
}

type AnnouncementUpdate struct {
	Title      *string `json:"title"`
	Content    *string `json:"content"`
	Image      *string `json:"image"`
	TargetRole *string `json:"targetRole"`
	IsActive   *bool   `json:"isActive"`
	StartAt    *int64  `json:"startAt"`
	EndAt      *int64  `json:"endAt"`
}

type Announcement struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	Image      string `json:"image,omitempty"`
	TargetRole string `json:"targetRole,omitempty"`
	IsActive   bool   `json:"isActive"`
	StartAt    int64  `json:"startAt"`
	EndAt      *int64 `json:"endAt,omitempty"`
	CreatedAt  int64  `json:"created_at"`
}

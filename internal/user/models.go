package user

type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
	IsActive  bool   `json:"isActive"`
	Avatar    string `json:"avatar,omitempty"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
}

// Update carries admin-editable fields; nil pointers mean "unchanged".
type Update struct {
	FirstName *string
	LastName  *string
	Avatar    *string
	Role      *string
	IsActive  *bool
}

type ListOpts struct {
	Role   string // filter, empty for all
	Active *bool
	Search string // matches name or email
	Limit  int
	Offset int
}

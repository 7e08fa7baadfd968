package payments

const (
	StatusPending   = "pending"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

type Payment struct {
	ID          string  `json:"id"`
	UserID      string  `json:"user_id"`
	CourseID    string  `json:"course_id"`
	CourseTitle string  `json:"course,omitempty"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	Status      string  `json:"status"`
	Provider    string  `json:"provider"`
	ProviderRef string  `json:"provider_ref,omitempty"`
	CreatedAt   int64   `json:"created_at"`
}

// Intent is what the client needs to complete a checkout with the
// configured provider.
type Intent struct {
	PaymentID    string  `json:"payment_id"`
	ClientSecret string  `json:"client_secret"`
	Amount       float64 `json:"amount"`
	Currency     string  `json:"currency"`
}

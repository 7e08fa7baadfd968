package payments

import (
	"context"

	"github.com/google/uuid"

	"github.com/lingua-school/lingua-lms/internal/httperr"
)

// Provider abstracts the external payment gateway. CreateIntent opens a
// charge with the gateway, Confirm settles it. Implementations must be
// safe for concurrent use.
type Provider interface {
	Name() string
	CreateIntent(ctx context.Context, amount float64, currency string) (ref, clientSecret string, err error)
	Confirm(ctx context.Context, ref string) error
}

// LocalProvider settles every intent immediately. It backs development
// and test deployments where no gateway is reachable.
type LocalProvider struct{}

func (LocalProvider) Name() string { return "local" }

func (LocalProvider) CreateIntent(_ context.Context, amount float64, _ string) (string, string, error) {
	if amount < 0 {
		return "", "", httperr.Validation("amount must not be negative")
	}
	ref := "local_" + uuid.NewString()
	return ref, "secret_" + ref, nil
}

func (LocalProvider) Confirm(context.Context, string) error { return nil }

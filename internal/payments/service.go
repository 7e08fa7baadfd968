package payments

import (
	"context"

	"github.com/lingua-school/lingua-lms/internal/enroll"
	"github.com/lingua-school/lingua-lms/internal/httperr"
)

// Service drives the checkout flow: open an intent with the provider,
// settle it on confirmation and enroll the buyer into the course.
type Service struct {
	store       Store
	enrollments enroll.Store
	provider    Provider
}

func NewService(store Store, enrollments enroll.Store, provider Provider) *Service {
	return &Service{store: store, enrollments: enrollments, provider: provider}
}

func (s *Service) Checkout(ctx context.Context, userID, courseID string, amount float64, currency string) (*Intent, error) {
	enrolled, err := s.enrollments.Exists(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	if enrolled {
		return nil, httperr.Conflict("already enrolled in this course")
	}
	ref, secret, err := s.provider.CreateIntent(ctx, amount, currency)
	if err != nil {
		return nil, err
	}
	p := &Payment{
		UserID:      userID,
		CourseID:    courseID,
		Amount:      amount,
		Currency:    currency,
		Status:      StatusPending,
		Provider:    s.provider.Name(),
		ProviderRef: ref,
	}
	if err := s.store.Create(ctx, p); err != nil {
		return nil, err
	}
	return &Intent{PaymentID: p.ID, ClientSecret: secret, Amount: amount, Currency: currency}, nil
}

// Confirm settles a pending payment. Only the buyer may confirm, and a
// payment settles at most once. Enrollment failure after settlement is
// reported but the payment stays succeeded.
func (s *Service) Confirm(ctx context.Context, userID, paymentID string) (*Payment, error) {
	p, err := s.store.Get(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if p.UserID != userID {
		return nil, httperr.Forbidden("payment belongs to another user")
	}
	if p.Status != StatusPending {
		return nil, httperr.Conflict("payment already %s", p.Status)
	}
	if err := s.provider.Confirm(ctx, p.ProviderRef); err != nil {
		_ = s.store.SetStatus(ctx, p.ID, StatusFailed)
		p.Status = StatusFailed
		return nil, httperr.Wrap("provider confirm", err)
	}
	if err := s.store.SetStatus(ctx, p.ID, StatusSucceeded); err != nil {
		return nil, err
	}
	p.Status = StatusSucceeded
	if _, err := s.enrollments.Enroll(ctx, userID, p.CourseID); err != nil {
		if httperr.KindOf(err) != httperr.KindConflict {
			return nil, err
		}
	}
	return p, nil
}

// History lists a user's payments newest first. An empty userID lists
// every payment; handlers reserve that for admins.
func (s *Service) History(ctx context.Context, userID string) ([]Payment, error) {
	return s.store.List(ctx, userID)
}

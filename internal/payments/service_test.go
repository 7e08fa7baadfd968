package payments_test

import (
	"context"
	"errors"
	"testing"

	"github.com/lingua-school/lingua-lms/internal/enroll"
	"github.com/lingua-school/lingua-lms/internal/httperr"
	"github.com/lingua-school/lingua-lms/internal/payments"
)

type fakePayStore struct {
	rows map[string]*payments.Payment
}

func newFakePayStore() *fakePayStore {
	return &fakePayStore{rows: map[string]*payments.Payment{}}
}

func (s *fakePayStore) Create(_ context.Context, p *payments.Payment) error {
	if p.ID == "" {
		p.ID = "pay-1"
	}
	cp := *p
	s.rows[p.ID] = &cp
	return nil
}

func (s *fakePayStore) Get(_ context.Context, id string) (*payments.Payment, error) {
	p, ok := s.rows[id]
	if !ok {
		return nil, httperr.NotFound("payment %s not found", id)
	}
	cp := *p
	return &cp, nil
}

func (s *fakePayStore) SetStatus(_ context.Context, id, status string) error {
	p, ok := s.rows[id]
	if !ok {
		return httperr.NotFound("payment %s not found", id)
	}
	p.Status = status
	return nil
}

func (s *fakePayStore) List(_ context.Context, userID string) ([]payments.Payment, error) {
	var out []payments.Payment
	for _, p := range s.rows {
		if userID == "" || p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

type fakeEnrollments struct {
	enrolled map[string]bool // userID|courseID
}

func newFakeEnrollments() *fakeEnrollments {
	return &fakeEnrollments{enrolled: map[string]bool{}}
}

func (f *fakeEnrollments) Enroll(_ context.Context, userID, courseID string) (*enroll.Enrollment, error) {
	k := userID + "|" + courseID
	if f.enrolled[k] {
		return nil, httperr.Conflict("already enrolled in this course")
	}
	f.enrolled[k] = true
	return &enroll.Enrollment{ID: "e1", UserID: userID, CourseID: courseID}, nil
}

func (f *fakeEnrollments) Exists(_ context.Context, userID, courseID string) (bool, error) {
	return f.enrolled[userID+"|"+courseID], nil
}

func (f *fakeEnrollments) ListByUser(context.Context, string) ([]enroll.Enrollment, error) {
	return nil, nil
}
func (f *fakeEnrollments) ListByCourse(context.Context, string) ([]enroll.Enrollment, error) {
	return nil, nil
}
func (f *fakeEnrollments) UpsertProgress(context.Context, *enroll.Progress) (*enroll.Progress, error) {
	return nil, nil
}
func (f *fakeEnrollments) GetProgress(context.Context, string, string) (*enroll.Progress, error) {
	return nil, nil
}
func (f *fakeEnrollments) ListProgress(context.Context, string, string) ([]enroll.Progress, error) {
	return nil, nil
}

type failingProvider struct{}

func (failingProvider) Name() string { return "failing" }
func (failingProvider) CreateIntent(context.Context, float64, string) (string, string, error) {
	return "ref", "secret", nil
}
func (failingProvider) Confirm(context.Context, string) error {
	return errors.New("card declined")
}

func TestCheckoutAndConfirm(t *testing.T) {
	store := newFakePayStore()
	enr := newFakeEnrollments()
	svc := payments.NewService(store, enr, payments.LocalProvider{})
	ctx := context.Background()

	intent, err := svc.Checkout(ctx, "u1", "c1", 49.90, "EUR")
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if intent.PaymentID == "" || intent.ClientSecret == "" || intent.Amount != 49.90 {
		t.Errorf("intent = %+v", intent)
	}
	if store.rows[intent.PaymentID].Status != payments.StatusPending {
		t.Errorf("status = %s, want pending", store.rows[intent.PaymentID].Status)
	}

	p, err := svc.Confirm(ctx, "u1", intent.PaymentID)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if p.Status != payments.StatusSucceeded {
		t.Errorf("status = %s, want succeeded", p.Status)
	}
	if ok, _ := enr.Exists(ctx, "u1", "c1"); !ok {
		t.Error("confirmation should enroll the buyer")
	}
}

func TestConfirmIsIdempotentGuarded(t *testing.T) {
	store := newFakePayStore()
	enr := newFakeEnrollments()
	svc := payments.NewService(store, enr, payments.LocalProvider{})
	ctx := context.Background()

	intent, _ := svc.Checkout(ctx, "u1", "c1", 10, "EUR")
	if _, err := svc.Confirm(ctx, "u1", intent.PaymentID); err != nil {
		t.Fatal(err)
	}
	_, err := svc.Confirm(ctx, "u1", intent.PaymentID)
	if httperr.KindOf(err) != httperr.KindConflict {
		t.Errorf("second confirm: got %v, want conflict", err)
	}
}

func TestConfirmWrongUser(t *testing.T) {
	store := newFakePayStore()
	svc := payments.NewService(store, newFakeEnrollments(), payments.LocalProvider{})
	ctx := context.Background()

	intent, _ := svc.Checkout(ctx, "u1", "c1", 10, "EUR")
	_, err := svc.Confirm(ctx, "u2", intent.PaymentID)
	if httperr.KindOf(err) != httperr.KindForbidden {
		t.Errorf("got %v, want forbidden", err)
	}
}

func TestCheckoutAlreadyEnrolled(t *testing.T) {
	enr := newFakeEnrollments()
	enr.enrolled["u1|c1"] = true
	svc := payments.NewService(newFakePayStore(), enr, payments.LocalProvider{})

	_, err := svc.Checkout(context.Background(), "u1", "c1", 10, "EUR")
	if httperr.KindOf(err) != httperr.KindConflict {
		t.Errorf("got %v, want conflict", err)
	}
}

func TestProviderFailureMarksPaymentFailed(t *testing.T) {
	store := newFakePayStore()
	enr := newFakeEnrollments()
	svc := payments.NewService(store, enr, failingProvider{})
	ctx := context.Background()

	intent, err := svc.Checkout(ctx, "u1", "c1", 10, "EUR")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Confirm(ctx, "u1", intent.PaymentID); err == nil {
		t.Fatal("expected confirm to fail")
	}
	if store.rows[intent.PaymentID].Status != payments.StatusFailed {
		t.Errorf("status = %s, want failed", store.rows[intent.PaymentID].Status)
	}
	if ok, _ := enr.Exists(ctx, "u1", "c1"); ok {
		t.Error("failed payment must not enroll")
	}
}

package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lingua-school/lingua-lms/internal/course"
	"github.com/lingua-school/lingua-lms/internal/httperr"
	"github.com/lingua-school/lingua-lms/internal/payments"
	"github.com/lingua-school/lingua-lms/internal/policy"
	"github.com/lingua-school/lingua-lms/internal/syncx"
)

type checkoutReq struct {
	CourseID string `json:"course_id" validate:"required"`
}

// POST /payments/checkout. Opens a payment intent for a paid course at
// the course's current price.
func CheckoutHandler(svc *payments.Service, courses course.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a := actorFrom(r)
		var req checkoutReq
		if err := decodeJSON(r, &req); err != nil {
			httperr.Write(w, err)
			return
		}
		c, err := courses.Get(r.Context(), req.CourseID)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		if !policy.CanViewCourse(a, c.TeacherID, c.Status) {
			httperr.Write(w, httperr.NotFound("course %s not found", req.CourseID))
			return
		}
		if c.Price <= 0 {
			httperr.Write(w, httperr.Validation("course is free, enroll directly"))
			return
		}
		intent, err := svc.Checkout(r.Context(), a.ID, c.ID, c.Price, "EUR")
		if err != nil {
			httperr.Write(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, intent)
	}
}

// POST /payments/{id}/confirm. Settles the intent and enrolls the
// buyer.
func ConfirmPaymentHandler(svc *payments.Service, events *syncx.EventRepo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a := actorFrom(r)
		p, err := svc.Confirm(r.Context(), a.ID, chi.URLParam(r, "id"))
		if err != nil {
			httperr.Write(w, err)
			return
		}
		if err := events.Append(r.Context(), syncx.EventPaymentSucceeded, p.ID, map[string]any{
			"user_id": p.UserID, "course_id": p.CourseID, "amount": p.Amount, "currency": p.Currency,
		}); err != nil {
			httperr.Write(w, httperr.Wrap("record event", err))
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

// GET /payments. Callers see their own history; admins see everyone's
// and can narrow it with ?user_id=.
func PaymentHistoryHandler(svc *payments.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a := actorFrom(r)
		userID := a.ID
		if a.Role == policy.RoleAdmin {
			userID = r.URL.Query().Get("user_id")
		}
		list, err := svc.History(r.Context(), userID)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

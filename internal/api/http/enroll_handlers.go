package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lingua-school/lingua-lms/internal/course"
	"github.com/lingua-school/lingua-lms/internal/enroll"
	"github.com/lingua-school/lingua-lms/internal/httperr"
	"github.com/lingua-school/lingua-lms/internal/policy"
	"github.com/lingua-school/lingua-lms/internal/syncx"
)

// POST /courses/{id}/enroll. Direct enrollment covers free courses
// only; paid courses enroll through the payment confirmation flow. A
// second enrollment in the same course is a 409.
func EnrollHandler(courses course.Store, enrollments enroll.Store, events *syncx.EventRepo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a := actorFrom(r)
		courseID := chi.URLParam(r, "id")
		c, err := courses.Get(r.Context(), courseID)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		if !policy.CanViewCourse(a, c.TeacherID, c.Status) {
			httperr.Write(w, httperr.NotFound("course %s not found", courseID))
			return
		}
		if c.Price > 0 {
			httperr.Write(w, httperr.Validation("course requires payment, use checkout"))
			return
		}
		e, err := enrollments.Enroll(r.Context(), a.ID, courseID)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		if err := events.Append(r.Context(), syncx.EventEnrollmentCreated, e.ID, map[string]any{
			"user_id": a.ID, "course_id": courseID,
		}); err != nil {
			httperr.Write(w, httperr.Wrap("record event", err))
			return
		}
		writeJSON(w, http.StatusCreated, e)
	}
}

// GET /enrollments (the caller's own)
func ListMyEnrollmentsHandler(enrollments enroll.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a := actorFrom(r)
		list, err := enrollments.ListByUser(r.Context(), a.ID)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// GET /courses/{id}/enrollments. Course owner and admins only.
func ListCourseEnrollmentsHandler(courses course.Store, enrollments enroll.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a := actorFrom(r)
		courseID := chi.URLParam(r, "id")
		c, err := courses.Get(r.Context(), courseID)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		if !policy.CanMutate(a, c.TeacherID) {
			httperr.Write(w, httperr.Forbidden("not your course"))
			return
		}
		list, err := enrollments.ListByCourse(r.Context(), courseID)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

type progressReq struct {
	Completed    bool `json:"completed"`
	TimeSpentSec int  `json:"timeSpent" validate:"gte=0"`
}

// PUT /lessons/{id}/progress. Requires enrollment in the owning
// course; time spent accumulates across calls and completion is
// sticky.
func UpdateProgressHandler(courses course.Store, enrollments enroll.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a := actorFrom(r)
		lessonID := chi.URLParam(r, "id")
		var req progressReq
		if err := decodeJSON(r, &req); err != nil {
			httperr.Write(w, err)
			return
		}
		l, err := courses.GetLesson(r.Context(), lessonID)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		enrolled, err := enrollments.Exists(r.Context(), a.ID, l.CourseID)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		if !enrolled {
			httperr.Write(w, httperr.Forbidden("enroll in the course first"))
			return
		}
		p, err := enrollments.UpsertProgress(r.Context(), &enroll.Progress{
			UserID:       a.ID,
			LessonID:     lessonID,
			Completed:    req.Completed,
			TimeSpentSec: req.TimeSpentSec,
		})
		if err != nil {
			httperr.Write(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

// GET /courses/{id}/progress (the caller's own rows, lesson order)
func ListProgressHandler(enrollments enroll.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a := actorFrom(r)
		list, err := enrollments.ListProgress(r.Context(), a.ID, chi.URLParam(r, "id"))
		if err != nil {
			httperr.Write(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

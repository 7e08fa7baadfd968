package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/lingua-school/lingua-lms/internal/course"
	"github.com/lingua-school/lingua-lms/internal/httperr"
	"github.com/lingua-school/lingua-lms/internal/policy"
)

// GET /courses?level=&status=&featured=&search=&limit=&offset=
// Visibility depends on who asks: admins see everything, teachers
// their own courses plus the public catalog, everyone else only
// published and featured courses. The store applies the scoping.
func ListCoursesHandler(courses course.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a := actorFrom(r)
		q := r.URL.Query()
		list, total, err := courses.List(r.Context(), course.ListOpts{
			Level:      q.Get("level"),
			Status:     q.Get("status"),
			Featured:   q.Get("featured") == "true",
			Search:     strings.TrimSpace(q.Get("search")),
			Limit:      parseIntDefault(q.Get("limit"), 10),
			Offset:     parseIntDefault(q.Get("offset"), 0),
			ViewerID:   a.ID,
			ViewerRole: string(a.Role),
		})
		if err != nil {
			httperr.Write(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"courses": list, "total": total})
	}
}

// GET /courses/{id}
func GetCourseHandler(courses course.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := courses.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			httperr.Write(w, err)
			return
		}
		if !policy.CanViewCourse(actorFrom(r), c.TeacherID, c.Status) {
			httperr.Write(w, httperr.NotFound("course %s not found", c.ID))
			return
		}
		writeJSON(w, http.StatusOK, c)
	}
}

type createCourseReq struct {
	Title       string  `json:"title" validate:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" validate:"gte=0"`
	Level       string  `json:"level" validate:"required,oneof=a1 a2 b1 b2 c1 c2"`
	DurationMin int     `json:"duration" validate:"gte=0"`
	Thumbnail   string  `json:"thumbnail"`
}

// POST /courses. New courses always start as drafts; publication goes
// through the admin status endpoint.
func CreateCourseHandler(courses course.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a := actorFrom(r)
		var req createCourseReq
		if err := decodeJSON(r, &req); err != nil {
			httperr.Write(w, err)
			return
		}
		c, err := courses.Create(r.Context(), course.Course{
			Title:       req.Title,
			Description: req.Description,
			Price:       req.Price,
			Level:       req.Level,
			DurationMin: req.DurationMin,
			Thumbnail:   req.Thumbnail,
			Status:      course.StatusDraft,
			TeacherID:   a.ID,
		})
		if err != nil {
			httperr.Write(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, c)
	}
}

type updateCourseReq struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	Level       *string  `json:"level" validate:"omitempty,oneof=a1 a2 b1 b2 c1 c2"`
	DurationMin *int     `json:"duration" validate:"omitempty,gte=0"`
	Thumbnail   *string  `json:"thumbnail"`
	Status      *string  `json:"status" validate:"omitempty,oneof=draft pending published featured archived"`
	Featured    *bool    `json:"featured"`
}

// PUT /courses/{id}. Teachers edit their own courses; status and
// featured changes are silently restricted to admins.
func UpdateCourseHandler(courses course.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a := actorFrom(r)
		id := chi.URLParam(r, "id")
		var req updateCourseReq
		if err := decodeJSON(r, &req); err != nil {
			httperr.Write(w, err)
			return
		}
		cur, err := courses.Get(r.Context(), id)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		if !policy.CanMutate(a, cur.TeacherID) {
			httperr.Write(w, httperr.Forbidden("not your course"))
			return
		}
		upd := course.CourseUpdate{
			Title:       req.Title,
			Description: req.Description,
			Price:       req.Price,
			Level:       req.Level,
			DurationMin: req.DurationMin,
			Thumbnail:   req.Thumbnail,
		}
		if policy.CanSetCourseStatus(a) {
			upd.Status = req.Status
			upd.Featured = req.Featured
		}
		c, err := courses.Update(r.Context(), id, upd)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		writeJSON(w, http.StatusOK, c)
	}
}

type setStatusReq struct {
	Status string `json:"status" validate:"required,oneof=draft pending published featured archived"`
}

// PUT /courses/{id}/status. Admin only, enforced by the router.
func SetCourseStatusHandler(courses course.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var req setStatusReq
		if err := decodeJSON(r, &req); err != nil {
			httperr.Write(w, err)
			return
		}
		featured := req.Status == course.StatusFeatured
		c, err := courses.Update(r.Context(), id, course.CourseUpdate{
			Status:   &req.Status,
			Featured: &featured,
		})
		if err != nil {
			httperr.Write(w, err)
			return
		}
		writeJSON(w, http.StatusOK, c)
	}
}

// DELETE /courses/{id}
func DeleteCourseHandler(courses course.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a := actorFrom(r)
		id := chi.URLParam(r, "id")
		cur, err := courses.Get(r.Context(), id)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		if !policy.CanMutate(a, cur.TeacherID) {
			httperr.Write(w, httperr.Forbidden("not your course"))
			return
		}
		if err := courses.Delete(r.Context(), id); err != nil {
			httperr.Write(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "course deleted"})
	}
}

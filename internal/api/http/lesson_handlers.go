package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lingua-school/lingua-lms/internal/course"
	"github.com/lingua-school/lingua-lms/internal/enroll"
	"github.com/lingua-school/lingua-lms/internal/httperr"
	"github.com/lingua-school/lingua-lms/internal/policy"
)

type lessonWithProgress struct {
	course.Lesson
	Progress *enroll.Progress `json:"progress,omitempty"`
}

// GET /courses/{id}/lessons. The owning teacher and admins get every
// lesson; students must be enrolled and get the published lessons with
// their own progress attached.
func ListLessonsHandler(courses course.Store, enrollments enroll.Store) http.HandlerFunc {
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
		mutator := policy.CanMutate(a, c.TeacherID)
		if !mutator {
			enrolled := false
			if a.Role == policy.RoleStudent {
				enrolled, err = enrollments.Exists(r.Context(), a.ID, courseID)
				if err != nil {
					httperr.Write(w, err)
					return
				}
			}
			if !enrolled {
				httperr.Write(w, httperr.Forbidden("enroll in the course to access its lessons"))
				return
			}
		}
		list, err := courses.ListLessons(r.Context(), courseID, !mutator)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		out := make([]lessonWithProgress, len(list))
		for i := range list {
			out[i] = lessonWithProgress{Lesson: list[i]}
		}
		if !mutator {
			progress, err := enrollments.ListProgress(r.Context(), a.ID, courseID)
			if err != nil {
				httperr.Write(w, err)
				return
			}
			byLesson := make(map[string]enroll.Progress, len(progress))
			for _, p := range progress {
				byLesson[p.LessonID] = p
			}
			for i := range out {
				if p, ok := byLesson[out[i].ID]; ok {
					p := p
					out[i].Progress = &p
				}
			}
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// GET /lessons/{id}. Full lesson content requires enrollment for
// students; the owning teacher and admins always pass.
func GetLessonHandler(courses course.Store, enrollments enroll.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a := actorFrom(r)
		l, err := courses.GetLesson(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			httperr.Write(w, err)
			return
		}
		c, err := courses.Get(r.Context(), l.CourseID)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		enrolled := false
		if a.Role == policy.RoleStudent {
			enrolled, err = enrollments.Exists(r.Context(), a.ID, c.ID)
			if err != nil {
				httperr.Write(w, err)
				return
			}
		}
		if !policy.CanViewLesson(a, c.TeacherID, l.IsPublished, enrolled) {
			httperr.Write(w, httperr.Forbidden("enroll in the course to access this lesson"))
			return
		}
		writeJSON(w, http.StatusOK, l)
	}
}

type createLessonReq struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Content     string `json:"content"`
	VideoURL    string `json:"video_url"`
	DurationMin int    `json:"duration" validate:"gte=0"`
	Order       int    `json:"order" validate:"gte=1"`
	IsPublished bool   `json:"isPublished"`
}

// POST /courses/{id}/lessons
func CreateLessonHandler(courses course.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a := actorFrom(r)
		courseID := chi.URLParam(r, "id")
		var req createLessonReq
		if err := decodeJSON(r, &req); err != nil {
			httperr.Write(w, err)
			return
		}
		c, err := courses.Get(r.Context(), courseID)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		if !policy.CanMutate(a, c.TeacherID) {
			httperr.Write(w, httperr.Forbidden("not your course"))
			return
		}
		l, err := courses.CreateLesson(r.Context(), course.Lesson{
			CourseID:    courseID,
			Title:       req.Title,
			Description: req.Description,
			Content:     req.Content,
			VideoURL:    req.VideoURL,
			DurationMin: req.DurationMin,
			Order:       req.Order,
			IsPublished: req.IsPublished,
		})
		if err != nil {
			httperr.Write(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, l)
	}
}

type updateLessonReq struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Content     *string `json:"content"`
	VideoURL    *string `json:"video_url"`
	DurationMin *int    `json:"duration" validate:"omitempty,gte=0"`
	Order       *int    `json:"order" validate:"omitempty,gte=1"`
	IsPublished *bool   `json:"isPublished"`
}

// PUT /lessons/{id}
func UpdateLessonHandler(courses course.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a := actorFrom(r)
		id := chi.URLParam(r, "id")
		var req updateLessonReq
		if err := decodeJSON(r, &req); err != nil {
			httperr.Write(w, err)
			return
		}
		l, err := courses.GetLesson(r.Context(), id)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		c, err := courses.Get(r.Context(), l.CourseID)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		if !policy.CanMutate(a, c.TeacherID) {
			httperr.Write(w, httperr.Forbidden("not your course"))
			return
		}
		out, err := courses.UpdateLesson(r.Context(), id, course.LessonUpdate{
			Title:       req.Title,
			Description: req.Description,
			Content:     req.Content,
			VideoURL:    req.VideoURL,
			DurationMin: req.DurationMin,
			Order:       req.Order,
			IsPublished: req.IsPublished,
		})
		if err != nil {
			httperr.Write(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// DELETE /lessons/{id}
func DeleteLessonHandler(courses course.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a := actorFrom(r)
		id := chi.URLParam(r, "id")
		l, err := courses.GetLesson(r.Context(), id)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		c, err := courses.Get(r.Context(), l.CourseID)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		if !policy.CanMutate(a, c.TeacherID) {
			httperr.Write(w, httperr.Forbidden("not your course"))
			return
		}
		if err := courses.DeleteLesson(r.Context(), id); err != nil {
			httperr.Write(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "lesson deleted"})
	}
}

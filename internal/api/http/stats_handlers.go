package http

import (
	"net/http"

	"github.com/lingua-school/lingua-lms/internal/httperr"
	"github.com/lingua-school/lingua-lms/internal/stats"
)

// GET /stats/admin
func AdminStatsHandler(src *stats.Source) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := src.Admin(r.Context())
		if err != nil {
			httperr.Write(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// GET /stats/teacher (scoped to the caller)
func TeacherStatsHandler(src *stats.Source) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := src.Teacher(r.Context(), actorFrom(r).ID)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// GET /stats/student (scoped to the caller)
func StudentStatsHandler(src *stats.Source) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := src.Student(r.Context(), actorFrom(r).ID)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

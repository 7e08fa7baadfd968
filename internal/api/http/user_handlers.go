package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/lingua-school/lingua-lms/internal/httperr"
	"github.com/lingua-school/lingua-lms/internal/policy"
	"github.com/lingua-school/lingua-lms/internal/rbac"
	"github.com/lingua-school/lingua-lms/internal/user"
)

// GET /users?role=&active=&search=&limit=&offset=
func ListUsersHandler(users user.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		opts := user.ListOpts{
			Role:   q.Get("role"),
			Search: strings.TrimSpace(q.Get("search")),
			Limit:  parseIntDefault(q.Get("limit"), 10),
			Offset: parseIntDefault(q.Get("offset"), 0),
		}
		switch q.Get("active") {
		case "true":
			t := true
			opts.Active = &t
		case "false":
			f := false
			opts.Active = &f
		}
		list, total, err := users.List(r.Context(), opts)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"users": list, "total": total})
	}
}

// GET /users/{id}
func GetUserHandler(users user.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := users.GetByID(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			httperr.Write(w, err)
			return
		}
		writeJSON(w, http.StatusOK, u)
	}
}

type createUserReq struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Role      string `json:"role" validate:"required,oneof=admin teacher student"`
}

// POST /users. Admin provisioning for teacher and admin accounts.
func CreateUserHandler(users user.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createUserReq
		if err := decodeJSON(r, &req); err != nil {
			httperr.Write(w, err)
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
		if err != nil {
			httperr.Write(w, httperr.Wrap("hash password", err))
			return
		}
		u, err := users.Create(r.Context(), user.User{
			Email:     strings.ToLower(strings.TrimSpace(req.Email)),
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Role:      req.Role,
			IsActive:  true,
		}, string(hash))
		if err != nil {
			httperr.Write(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, u)
	}
}

type updateUserReq struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Avatar    *string `json:"avatar"`
	Role      *string `json:"role" validate:"omitempty,oneof=admin teacher student"`
	IsActive  *bool   `json:"isActive"`
}

// PUT /users/{id}. Demoting or deactivating the last admin is refused
// so the instance cannot lock itself out.
func UpdateUserHandler(users user.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var req updateUserReq
		if err := decodeJSON(r, &req); err != nil {
			httperr.Write(w, err)
			return
		}
		cur, err := users.GetByID(r.Context(), id)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		demotes := req.Role != nil && *req.Role != string(policy.RoleAdmin)
		deactivates := req.IsActive != nil && !*req.IsActive
		if cur.Role == string(policy.RoleAdmin) && (demotes || deactivates) {
			n, err := users.CountByRole(r.Context(), string(policy.RoleAdmin))
			if err != nil {
				httperr.Write(w, err)
				return
			}
			if n <= 1 {
				httperr.Write(w, httperr.Conflict("cannot remove the last admin"))
				return
			}
		}
		u, err := users.Update(r.Context(), id, user.Update{
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Avatar:    req.Avatar,
			Role:      req.Role,
			IsActive:  req.IsActive,
		})
		if err != nil {
			httperr.Write(w, err)
			return
		}
		writeJSON(w, http.StatusOK, u)
	}
}

// DELETE /users/{id}
func DeleteUserHandler(users user.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == rbac.SubjectFromContext(r.Context()) {
			httperr.Write(w, httperr.Conflict("cannot delete your own account"))
			return
		}
		cur, err := users.GetByID(r.Context(), id)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		if cur.Role == string(policy.RoleAdmin) {
			n, err := users.CountByRole(r.Context(), string(policy.RoleAdmin))
			if err != nil {
				httperr.Write(w, err)
				return
			}
			if n <= 1 {
				httperr.Write(w, httperr.Conflict("cannot remove the last admin"))
				return
			}
		}
		if err := users.Delete(r.Context(), id); err != nil {
			httperr.Write(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "user deleted"})
	}
}

package http

import (
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/lingua-school/lingua-lms/internal/auth"
	"github.com/lingua-school/lingua-lms/internal/httperr"
	"github.com/lingua-school/lingua-lms/internal/policy"
	"github.com/lingua-school/lingua-lms/internal/rbac"
	"github.com/lingua-school/lingua-lms/internal/user"
)

const bcryptCost = 12

type registerReq struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
}

type authResp struct {
	Token string    `json:"token"`
	User  user.User `json:"user"`
}

// POST /auth/register. Self-registration always creates a student;
// teachers and admins are provisioned through the admin user API.
func RegisterHandler(users user.Store, svc *auth.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerReq
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
			Role:      string(policy.RoleStudent),
			IsActive:  true,
		}, string(hash))
		if err != nil {
			httperr.Write(w, err)
			return
		}
		token, err := svc.IssueJWT(u.ID, u.Role)
		if err != nil {
			httperr.Write(w, httperr.Wrap("issue token", err))
			return
		}
		writeJSON(w, http.StatusCreated, authResp{Token: token, User: u})
	}
}

type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// POST /auth/login. Wrong email and wrong password produce the same
// message so the endpoint does not confirm which accounts exist.
func LoginHandler(users user.Store, svc *auth.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginReq
		if err := decodeJSON(r, &req); err != nil {
			httperr.Write(w, err)
			return
		}
		u, hash, err := users.GetByEmail(r.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
		if err != nil {
			if httperr.KindOf(err) == httperr.KindNotFound {
				httperr.Write(w, httperr.Validation("invalid credentials"))
				return
			}
			httperr.Write(w, err)
			return
		}
		if bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)) != nil {
			httperr.Write(w, httperr.Validation("invalid credentials"))
			return
		}
		if !u.IsActive {
			httperr.Write(w, httperr.Forbidden("account is deactivated"))
			return
		}
		token, err := svc.IssueJWT(u.ID, u.Role)
		if err != nil {
			httperr.Write(w, httperr.Wrap("issue token", err))
			return
		}
		writeJSON(w, http.StatusOK, authResp{Token: token, User: u})
	}
}

// GET /auth/profile
func ProfileHandler(users user.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := users.GetByID(r.Context(), rbac.SubjectFromContext(r.Context()))
		if err != nil {
			httperr.Write(w, err)
			return
		}
		writeJSON(w, http.StatusOK, u)
	}
}

type updateProfileReq struct {
	FirstName *string `json:"firstName" validate:"omitempty,min=1"`
	LastName  *string `json:"lastName" validate:"omitempty,min=1"`
	Avatar    *string `json:"avatar"`
}

// PUT /auth/profile. Name and avatar only; role and account state stay
// with the admin user API.
func UpdateProfileHandler(users user.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateProfileReq
		if err := decodeJSON(r, &req); err != nil {
			httperr.Write(w, err)
			return
		}
		u, err := users.Update(r.Context(), rbac.SubjectFromContext(r.Context()), user.Update{
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Avatar:    req.Avatar,
		})
		if err != nil {
			httperr.Write(w, err)
			return
		}
		writeJSON(w, http.StatusOK, u)
	}
}

type changePasswordReq struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8"`
}

// POST /auth/change-password
func ChangePasswordHandler(users user.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req changePasswordReq
		if err := decodeJSON(r, &req); err != nil {
			httperr.Write(w, err)
			return
		}
		sub := rbac.SubjectFromContext(r.Context())
		hash, err := users.GetPasswordHash(r.Context(), sub)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		if bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.CurrentPassword)) != nil {
			httperr.Write(w, httperr.Validation("current password is incorrect"))
			return
		}
		newHash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcryptCost)
		if err != nil {
			httperr.Write(w, httperr.Wrap("hash password", err))
			return
		}
		if err := users.SetPasswordHash(r.Context(), sub, string(newHash)); err != nil {
			httperr.Write(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "password updated"})
	}
}

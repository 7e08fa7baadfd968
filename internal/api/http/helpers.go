package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/lingua-school/lingua-lms/internal/httperr"
	"github.com/lingua-school/lingua-lms/internal/policy"
	"github.com/lingua-school/lingua-lms/internal/rbac"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON parses the request body into dst and runs its validate
// tags. Callers get back a Validation error ready for httperr.Write.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return httperr.Validation("invalid request body: %v", err)
	}
	if err := validate.Struct(dst); err != nil {
		if verr, ok := err.(validator.ValidationErrors); ok && len(verr) > 0 {
			f := verr[0]
			return httperr.Validation("field %q failed on %q", f.Field(), f.Tag())
		}
		return httperr.Validation("invalid request body")
	}
	return nil
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// actorFrom rebuilds the policy actor from the JWT identity the auth
// middleware stashed in the request context. Unauthenticated requests
// come back as the visitor actor.
func actorFrom(r *http.Request) policy.Actor {
	sub := rbac.SubjectFromContext(r.Context())
	if sub == "" {
		return policy.Visitor()
	}
	return policy.Actor{ID: sub, Role: policy.Role(rbac.RoleFromContext(r.Context()))}
}

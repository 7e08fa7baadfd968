package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lingua-school/lingua-lms/internal/catalog"
	"github.com/lingua-school/lingua-lms/internal/httperr"
	"github.com/lingua-school/lingua-lms/internal/policy"
)

// GET /products. Admins see the whole catalog including inactive
// products, everyone else only active ones.
func ListProductsHandler(store catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		activeOnly := actorFrom(r).Role != policy.RoleAdmin
		list, err := store.ListProducts(r.Context(), activeOnly)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// GET /products/{id}
func GetProductHandler(store catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := store.GetProduct(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			httperr.Write(w, err)
			return
		}
		if !p.IsActive && actorFrom(r).Role != policy.RoleAdmin {
			httperr.Write(w, httperr.NotFound("product %s not found", p.ID))
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

type productReq struct {
	Name         string  `json:"name" validate:"required"`
	Description  string  `json:"description"`
	Price        float64 `json:"price" validate:"gte=0"`
	Category     string  `json:"category"`
	Discount     float64 `json:"discount" validate:"gte=0"`
	DiscountType string  `json:"discountType" validate:"omitempty,oneof=percentage fixed"`
	IsActive     bool    `json:"isActive"`
}

// POST /products
func CreateProductHandler(store catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req productReq
		if err := decodeJSON(r, &req); err != nil {
			httperr.Write(w, err)
			return
		}
		if req.DiscountType == catalog.DiscountPercentage && req.Discount > 100 {
			httperr.Write(w, httperr.Validation("percentage discount cannot exceed 100"))
			return
		}
		p := &catalog.Product{
			Name:         req.Name,
			Description:  req.Description,
			Price:        req.Price,
			Category:     req.Category,
			Discount:     req.Discount,
			DiscountType: req.DiscountType,
			IsActive:     req.IsActive,
		}
		if err := store.CreateProduct(r.Context(), p); err != nil {
			httperr.Write(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, p)
	}
}

// PUT /products/{id}
func UpdateProductHandler(store catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var upd catalog.ProductUpdate
		if err := decodeJSON(r, &upd); err != nil {
			httperr.Write(w, err)
			return
		}
		if upd.DiscountType != nil && *upd.DiscountType != catalog.DiscountPercentage &&
			*upd.DiscountType != catalog.DiscountFixed && *upd.DiscountType != "" {
			httperr.Write(w, httperr.Validation("unknown discount type %q", *upd.DiscountType))
			return
		}
		p, err := store.UpdateProduct(r.Context(), chi.URLParam(r, "id"), upd)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

// DELETE /products/{id}
func DeleteProductHandler(store catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
			httperr.Write(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "product deleted"})
	}
}

type announcementReq struct {
	Title      string `json:"title" validate:"required"`
	Content    string `json:"content" validate:"required"`
	Image      string `json:"image"`
	TargetRole string `json:"targetRole" validate:"omitempty,oneof=student teacher"`
	IsActive   bool   `json:"isActive"`
	StartAt    int64  `json:"startAt"`
	EndAt      *int64 `json:"endAt"`
}

// POST /announcements
func CreateAnnouncementHandler(store catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req announcementReq
		if err := decodeJSON(r, &req); err != nil {
			httperr.Write(w, err)
			return
		}
		if req.EndAt != nil && req.StartAt > 0 && *req.EndAt < req.StartAt {
			httperr.Write(w, httperr.Validation("announcement ends before it starts"))
			return
		}
		a := &catalog.Announcement{
			Title:      req.Title,
			Content:    req.Content,
			Image:      req.Image,
			TargetRole: req.TargetRole,
			IsActive:   req.IsActive,
			StartAt:    req.StartAt,
			EndAt:      req.EndAt,
		}
		if err := store.CreateAnnouncement(r.Context(), a); err != nil {
			httperr.Write(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, a)
	}
}

// GET /announcements. Admins get the full list; other callers get
// announcements currently in their active window that target their
// role (visitors count as untargeted readers).
func ListAnnouncementsHandler(store catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a := actorFrom(r)
		forRole := string(a.Role)
		if a.Role == policy.RoleAdmin {
			forRole = ""
		}
		list, err := store.ListAnnouncements(r.Context(), forRole, time.Now().Unix())
		if err != nil {
			httperr.Write(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// PUT /announcements/{id}
func UpdateAnnouncementHandler(store catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var upd catalog.AnnouncementUpdate
		if err := decodeJSON(r, &upd); err != nil {
			httperr.Write(w, err)
			return
		}
		if upd.TargetRole != nil && *upd.TargetRole != "" &&
			*upd.TargetRole != "student" && *upd.TargetRole != "teacher" {
			httperr.Write(w, httperr.Validation("unknown target role %q", *upd.TargetRole))
			return
		}
		if upd.StartAt != nil && upd.EndAt != nil && *upd.EndAt < *upd.StartAt {
			httperr.Write(w, httperr.Validation("announcement ends before it starts"))
			return
		}
		a, err := store.UpdateAnnouncement(r.Context(), chi.URLParam(r, "id"), upd)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		writeJSON(w, http.StatusOK, a)
	}
}

// DELETE /announcements/{id}
func DeleteAnnouncementHandler(store catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.DeleteAnnouncement(r.Context(), chi.URLParam(r, "id")); err != nil {
			httperr.Write(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "announcement deleted"})
	}
}

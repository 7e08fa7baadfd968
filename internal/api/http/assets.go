package http

import (
	"io"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/lingua-school/lingua-lms/internal/httperr"
	"github.com/lingua-school/lingua-lms/internal/storage"
)

// MountAssets wires the upload and download endpoints for course
// media. Uploads keep the original extension so downloads get a usable
// Content-Type; the stored name is a fresh uuid.
func MountAssets(r chi.Router, bs storage.BlobStore, upload ...func(http.Handler) http.Handler) {
	r.With(upload...).Post("/", func(w http.ResponseWriter, r *http.Request) {
		f, hdr, err := r.FormFile("file")
		if err != nil {
			httperr.Write(w, httperr.Validation("file field required"))
			return
		}
		defer f.Close()
		ext := strings.ToLower(path.Ext(hdr.Filename))
		key := "uploads/" + uuid.NewString() + ext
		if _, err := bs.Put(key, f); err != nil {
			httperr.Write(w, httperr.Wrap("store asset", err))
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{
			"key": key,
			"url": bs.PublicURL(key),
		})
	})

	r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
		rc, err := bs.Get(key)
		if err != nil {
			httperr.Write(w, httperr.NotFound("asset %s not found", key))
			return
		}
		defer rc.Close()
		ct := mime.TypeByExtension(path.Ext(key))
		if ct == "" {
			ct = "application/octet-stream"
		}
		w.Header().Set("Content-Type", ct)
		_, _ = io.Copy(w, rc)
	})
}

// internal/app/features/products/images.go
package products

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/dalemusser/slothstore/internal/app/store/audit"
	productstore "github.com/dalemusser/slothstore/internal/app/store/products"
	"github.com/dalemusser/slothstore/internal/app/system/authz"
	"github.com/dalemusser/slothstore/internal/app/system/httpx"
	"github.com/dalemusser/slothstore/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxImagesPerUpload = 10

// allowedImageTypes maps a sniffed content type to the stored extension.
var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// uploadImage stores one image as images/YYYY/MM/<uuid8><ext> and returns
// the object path.
func uploadImage(ctx context.Context, store storage.Store, data []byte, contentType string, now time.Time) (string, error) {
	p := path.Join(
		fmt.Sprintf("images/%04d/%02d", now.Year(), now.Month()),
		uuid.New().String()[:8]+allowedImageTypes[contentType],
	)
	opts := &storage.PutOptions{
		ContentType:  contentType,
		CacheControl: "public, max-age=31536000, immutable",
	}
	if err := store.Put(ctx, p, bytes.NewReader(data), opts); err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}
	return p, nil
}

// ServeUploadImages handles POST /products/images (multipart). Files come in
// the "images" field. With an optional "productId" field the URLs are also
// appended to that product's image list.
func (h *Handler) ServeUploadImages(w http.ResponseWriter, r *http.Request) {
	if h.Storage == nil {
		httpx.Fail(w, http.StatusServiceUnavailable, "Image storage is not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.MaxImageBytes*maxImagesPerUpload+(1<<20))
	if err := r.ParseMultipartForm(h.MaxImageBytes); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid form data")
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["images"]
	if len(files) == 0 {
		httpx.Fail(w, http.StatusBadRequest, "No files uploaded")
		return
	}
	if len(files) > maxImagesPerUpload {
		httpx.Fail(w, http.StatusBadRequest, "Too many files")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	pidRaw := strings.TrimSpace(r.FormValue("productId"))
	var imagesBefore []string
	if pidRaw != "" {
		pid, ok := parseID(pidRaw)
		if !ok {
			httpx.Fail(w, http.StatusBadRequest, "Invalid product id")
			return
		}
		p, err := h.Catalog.GetByID(ctx, pid)
		if isNotFound(err) {
			httpx.Fail(w, http.StatusNotFound, msgProductNotFound)
			return
		}
		if err != nil {
			httpx.ServerError(w, r, h.Log, "products: load for image upload failed", err)
			return
		}
		imagesBefore = p.Images
	}

	urls := make([]string, 0, len(files))
	now := time.Now().UTC()
	for _, fh := range files {
		if fh.Size > h.MaxImageBytes {
			httpx.Fail(w, http.StatusBadRequest, "File too large: "+path.Base(fh.Filename))
			return
		}
		f, err := fh.Open()
		if err != nil {
			httpx.ServerError(w, r, h.Log, "products: open upload failed", err)
			return
		}
		data, err := io.ReadAll(io.LimitReader(f, h.MaxImageBytes+1))
		f.Close()
		if err != nil {
			httpx.ServerError(w, r, h.Log, "products: read upload failed", err)
			return
		}
		ctype := http.DetectContentType(data)
		if _, ok := allowedImageTypes[ctype]; !ok {
			httpx.Fail(w, http.StatusBadRequest, "Only JPEG, PNG, GIF or WebP images are allowed")
			return
		}

		p, err := uploadImage(ctx, h.Storage, data, ctype, now)
		if err != nil {
			httpx.ServerError(w, r, h.Log, "products: store image failed", err, zap.String("file", fh.Filename))
			return
		}
		urls = append(urls, h.Storage.URL(p))
	}

	if pidRaw != "" {
		pid, _ := parseID(pidRaw)
		images := append(append([]string{}, imagesBefore...), urls...)
		if _, err := h.Catalog.Update(ctx, pid, productstore.Update{Images: &images}); err != nil {
			if errors.Is(err, productstore.ErrNotFound) {
				httpx.Fail(w, http.StatusNotFound, msgProductNotFound)
				return
			}
			httpx.ServerError(w, r, h.Log, "products: attach images failed", err)
			return
		}
		if actor, ok := authz.ActorFrom(r); ok {
			h.AuditLog.ProductChanged(ctx, r, actor.UserID, pid, audit.EventProductUpdated)
		}
	}

	httpx.Success(w, http.StatusCreated, map[string]any{"url": urls[0], "urls": urls})
}

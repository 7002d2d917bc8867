// components/uploads/uploads.go
//
// Image uploads for blog covers and event banners.
//
//	POST /api/uploads   multipart/form-data, field "file"   (rate limited, admin)
//
// The content type is sniffed from the first 512 bytes, never taken from
// the client, and must be one of the raster formats below.  SVG is
// refused because it can carry script.  Objects are stored under
// <storage.prefix><uuid><ext>.
//
// Status codes: 201 stored, 400 no file or not an image, 413 too large,
// 503 storage not configured, 500 storage failure.
package uploads

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ispora/ispora-api/internal/api"
	"github.com/ispora/ispora-api/internal/component"
	"github.com/ispora/ispora-api/internal/metrics"
)

var _ component.Component = (*Comp)(nil)

func init() { component.Register(&Comp{}) }

// extensions maps accepted sniffed types to object suffixes.
var extensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// multipartSlack covers boundaries and part headers around the file.
const multipartSlack = 64 << 10

// Comp implements component.Component.
type Comp struct {
	d *component.Deps
}

func (c *Comp) Name() string { return "uploads" }

func (c *Comp) Init(d *component.Deps) error {
	c.d = d
	return nil
}

func (c *Comp) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(c.d.CORS(http.MethodPost))
	r.With(c.d.Limit, c.d.Admin).Post("/", c.upload)
	return r
}

func (c *Comp) upload(w http.ResponseWriter, r *http.Request) {
	if c.d.Objects == nil {
		metrics.UploadsTotal.WithLabelValues("disabled").Inc()
		api.WriteError(w, http.StatusServiceUnavailable, api.Error{
			Error: "Uploads are not configured",
			Hint:  "set storage.bucket and credentials",
		})
		return
	}
	limit := c.d.Config.Storage.MaxUploadBytes

	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartSlack)
	file, hdr, err := r.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			c.tooLarge(w, limit)
			return
		}
		c.reject(w, "Missing file field", err.Error())
		return
	}
	defer file.Close()

	if hdr.Size > limit {
		c.tooLarge(w, limit)
		return
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		c.reject(w, "Unreadable file", err.Error())
		return
	}
	head = head[:n]
	if n == 0 {
		c.reject(w, "Empty file", nil)
		return
	}

	ct := http.DetectContentType(head)
	ext, ok := extensions[ct]
	if !ok {
		c.reject(w, "Unsupported file type", map[string]any{"detected": ct})
		return
	}

	key := c.d.Config.Storage.Prefix + uuid.NewString() + ext
	body := io.MultiReader(bytes.NewReader(head), file)

	obj, err := c.d.Objects.Put(r.Context(), key, ct, body, hdr.Size)
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("error").Inc()
		c.d.Log.Errorw("upload failed", "resource", "uploads", "key", key, "err", err)
		api.WriteError(w, http.StatusInternalServerError, api.Error{
			Error: "Failed to store file",
			Hint:  "check server logs for [uploads]",
		})
		return
	}

	metrics.UploadsTotal.WithLabelValues("ok").Inc()
	c.d.Log.Infow("upload stored", "key", obj.Key, "size", obj.Size, "content_type", obj.ContentType)
	api.One(w, http.StatusCreated, "upload", obj)
}

func (c *Comp) reject(w http.ResponseWriter, msg string, details any) {
	metrics.UploadsTotal.WithLabelValues("rejected").Inc()
	api.BadRequest(w, msg, details)
}

func (c *Comp) tooLarge(w http.ResponseWriter, limit int64) {
	metrics.UploadsTotal.WithLabelValues("rejected").Inc()
	api.WriteError(w, http.StatusRequestEntityTooLarge, api.Error{
		Error:   "File too large",
		Details: map[string]any{"max_bytes": limit},
	})
}

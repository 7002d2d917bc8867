package uploads

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ispora/ispora-api/internal/component/componenttest"
	"github.com/ispora/ispora-api/internal/objectstore"
)

type fakeStore struct {
	key, contentType string
	data             []byte
	err              error
}

func (f *fakeStore) Put(_ context.Context, key, contentType string, body io.Reader, size int64) (objectstore.Object, error) {
	if f.err != nil {
		return objectstore.Object{}, f.err
	}
	f.key, f.contentType = key, contentType
	f.data, _ = io.ReadAll(body)
	return objectstore.Object{Key: key, URL: "https://cdn.example/" + key, ContentType: contentType, Size: size}, nil
}

// png is the smallest prefix DetectContentType recognises as image/png.
var png = append([]byte("\x89PNG\x0D\x0A\x1A\x0A"), bytes.Repeat([]byte{0}, 600)...)

func multipartBody(t *testing.T, field string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, "cover.bin")
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func post(h http.Handler, body io.Reader, ct string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestUpload(t *testing.T) {
	d, _ := componenttest.Deps(t)
	fs := &fakeStore{}
	d.Objects = fs
	h := componenttest.Mount(t, &Comp{}, d)

	body, ct := multipartBody(t, "file", png)
	rec := post(h, body, ct)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.True(t, strings.HasPrefix(fs.key, "images/"))
	assert.True(t, strings.HasSuffix(fs.key, ".png"))
	assert.Equal(t, "image/png", fs.contentType)
	assert.Equal(t, png, fs.data)

	up := componenttest.JSON(t, rec)["upload"].(map[string]any)
	assert.EqualValues(t, len(png), up["size"])
}

func TestUploadRejectsNonImage(t *testing.T) {
	d, _ := componenttest.Deps(t)
	d.Objects = &fakeStore{}
	h := componenttest.Mount(t, &Comp{}, d)

	body, ct := multipartBody(t, "file", []byte(`<svg xmlns="http://www.w3.org/2000/svg"><script>alert(1)</script></svg>`))
	rec := post(h, body, ct)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body, ct = multipartBody(t, "image", png)
	rec = post(h, body, ct)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadTooLarge(t *testing.T) {
	d, _ := componenttest.Deps(t)
	d.Objects = &fakeStore{}
	d.Config.Storage.MaxUploadBytes = 256
	h := componenttest.Mount(t, &Comp{}, d)

	body, ct := multipartBody(t, "file", png)
	rec := post(h, body, ct)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestUploadNotConfigured(t *testing.T) {
	d, _ := componenttest.Deps(t)
	h := componenttest.Mount(t, &Comp{}, d)

	body, ct := multipartBody(t, "file", png)
	rec := post(h, body, ct)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestUploadStoreError(t *testing.T) {
	d, _ := componenttest.Deps(t)
	d.Objects = &fakeStore{err: errors.New("access denied")}
	h := componenttest.Mount(t, &Comp{}, d)

	body, ct := multipartBody(t, "file", png)
	rec := post(h, body, ct)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "check server logs for [uploads]", componenttest.JSON(t, rec)["hint"])
}

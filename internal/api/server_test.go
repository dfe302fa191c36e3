package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/docmd/internal/config"
	"github.com/dgallion1/docmd/internal/convert"
	"github.com/dgallion1/docmd/internal/fixture"
)

func newTestServer(cfg config.Config) *Server {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	if cfg.MaxUploadBytes == 0 {
		cfg.MaxUploadBytes = 1 << 20
	}
	return NewServer(convert.New(log, io.Discard), log, cfg)
}

func uploadRequest(t *testing.T, filename string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/convert", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var payload map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&payload))
	return payload["error"]
}

func TestHealth(t *testing.T) {
	srv := newTestServer(config.Config{})
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestConvert_ReturnsMarkdown(t *testing.T) {
	data := fixture.New().
		Paragraph("Summary").
		Table([]string{"Name", "Age"}, []string{"Ann", "30"}).
		Bytes(t)

	srv := newTestServer(config.Config{})
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, uploadRequest(t, "report.docx", data))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "text/markdown; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "Summary\n\n| Name | Age |\n| --- | --- |\n| Ann | 30 |\n\n", rec.Body.String())
	assert.Equal(t, "1", rec.Header().Get("X-Docmd-Tables"))
	assert.Equal(t, "1", rec.Header().Get("X-Docmd-Paragraphs"))
	assert.Equal(t, "0", rec.Header().Get("X-Docmd-Ragged-Rows"))
	assert.Len(t, rec.Header().Get("ETag"), 66)
}

func TestConvert_SameInputSameETag(t *testing.T) {
	data := fixture.New().Paragraph("stable").Bytes(t)
	srv := newTestServer(config.Config{})

	first := httptest.NewRecorder()
	srv.ServeHTTP(first, uploadRequest(t, "a.docx", data))
	second := httptest.NewRecorder()
	srv.ServeHTTP(second, uploadRequest(t, "b.docx", data))

	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, first.Header().Get("ETag"), second.Header().Get("ETag"))
	assert.Equal(t, first.Body.String(), second.Body.String())
}

func TestConvert_UnsupportedExtension(t *testing.T) {
	srv := newTestServer(config.Config{})
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, uploadRequest(t, "notes.pdf", []byte("%PDF-1.4")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeError(t, rec), "unsupported file type")
}

func TestConvert_InvalidDocument(t *testing.T) {
	srv := newTestServer(config.Config{})
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, uploadRequest(t, "broken.docx", []byte("not a zip")))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decodeError(t, rec), "parse docx")
}

func TestConvert_TooLarge(t *testing.T) {
	srv := newTestServer(config.Config{MaxUploadBytes: 16})
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, uploadRequest(t, "big.docx", bytes.Repeat([]byte("x"), 64)))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestConvert_BodyOverFormLimit(t *testing.T) {
	srv := newTestServer(config.Config{MaxUploadBytes: 16})
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, uploadRequest(t, "huge.docx", bytes.Repeat([]byte("x"), 2<<20)))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Contains(t, decodeError(t, rec), "request exceeds max size")
}

func TestConvert_MissingFile(t *testing.T) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("title", "nothing attached"))
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/api/convert", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	srv := newTestServer(config.Config{})
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeError(t, rec), "file is required")
}

func TestConvert_Auth(t *testing.T) {
	data := fixture.New().Paragraph("secret").Bytes(t)
	srv := newTestServer(config.Config{APIKey: "k3y"})

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"wrong key", "Bearer nope", http.StatusUnauthorized},
		{"wrong scheme", "Basic k3y", http.StatusUnauthorized},
		{"valid", "Bearer k3y", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := uploadRequest(t, "s.docx", data)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}

	// Health stays public.
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"report.docx", "report.docx"},
		{"../../etc/passwd.docx", "passwd.docx"},
		{`C:\docs\a.docx`, "C:_docs_a.docx"},
		{"", "unnamed"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeFilename(tt.in), "input %q", tt.in)
	}
}

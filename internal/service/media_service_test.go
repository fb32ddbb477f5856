package service

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stemsi/onlinexam-backend/internal/config"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

// formFile builds a real multipart upload so SaveUpload sees what gin hands it.
func formFile(t *testing.T, content []byte) (multipart.File, *multipart.FileHeader) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", "upload.bin")
	if err != nil {
		t.Fatal(err)
	}
	part.Write(content)
	w.Close()

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	f, h, err := req.FormFile("file")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { f.Close() })
	return f, h
}

func TestSaveUpload(t *testing.T) {
	dir := t.TempDir()
	svc := NewMediaService(&config.Config{UploadDir: dir, MaxUploadBytes: 1 << 10})

	f, h := formFile(t, pngHeader)
	url, err := svc.SaveUpload("course", f, h)
	if err != nil {
		t.Fatalf("SaveUpload: %v", err)
	}
	if !strings.HasPrefix(url, "/uploads/courses/") || !strings.HasSuffix(url, ".png") {
		t.Fatalf("url = %q", url)
	}
	stored, err := os.ReadFile(filepath.Join(dir, "courses", filepath.Base(url)))
	if err != nil {
		t.Fatalf("stored file: %v", err)
	}
	if !bytes.Equal(stored, pngHeader) {
		t.Fatalf("stored %d bytes, want %d", len(stored), len(pngHeader))
	}
}

func TestSaveUploadRejects(t *testing.T) {
	svc := NewMediaService(&config.Config{UploadDir: t.TempDir(), MaxUploadBytes: 64})

	tests := []struct {
		name    string
		kind    string
		content []byte
		want    error
	}{
		{name: "unknown kind", kind: "banner", content: pngHeader, want: ErrUnknownMediaKind},
		{name: "not an image", kind: "profile", content: []byte("plain text body"), want: ErrUnsupportedFileType},
		{name: "too large", kind: "subject", content: append(append([]byte{}, pngHeader...), make([]byte, 128)...), want: ErrFileTooLarge},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f, h := formFile(t, tc.content)
			if _, err := svc.SaveUpload(tc.kind, f, h); !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

package storage_test

import (
	"io"
	"strings"
	"testing"

	"github.com/lingua-school/lingua-lms/internal/storage"
)

func TestPutGetDelete(t *testing.T) {
	fs, err := storage.NewFSStore(t.TempDir(), "http://localhost:8080")
	if err != nil {
		t.Fatal(err)
	}

	key, err := fs.Put("uploads/a.txt", strings.NewReader("hola"))
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	rc, err := fs.Get(key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer rc.Close()
	b, _ := io.ReadAll(rc)
	if string(b) != "hola" {
		t.Errorf("content = %q", b)
	}

	if err := fs.Delete(key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := fs.Get(key); err == nil {
		t.Error("get after delete should fail")
	}
}

func TestKeyCannotEscapeBase(t *testing.T) {
	base := t.TempDir()
	fs, err := storage.NewFSStore(base, "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fs.Put("../../etc/passwd", strings.NewReader("x")); err != nil {
		// an error is fine too
		return
	}
	// if the write succeeded it must have landed under base
	if _, err := fs.Get("etc/passwd"); err != nil {
		t.Error("cleaned key should resolve inside the base directory")
	}
}

func TestPublicURL(t *testing.T) {
	fs, err := storage.NewFSStore(t.TempDir(), "http://localhost:8080/")
	if err != nil {
		t.Fatal(err)
	}
	if got := fs.PublicURL("uploads/a.png"); got != "http://localhost:8080/assets/uploads/a.png" {
		t.Errorf("url = %q", got)
	}
}

func TestEmptyKeyRejected(t *testing.T) {
	fs, err := storage.NewFSStore(t.TempDir(), "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fs.Put("", strings.NewReader("x")); err == nil {
		t.Error("empty key must be rejected")
	}
}

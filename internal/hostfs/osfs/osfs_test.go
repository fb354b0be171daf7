package osfs

import (
	"os"
	"path/filepath"
	"testing"

	"craftraw/internal/hostfs"
)

func TestExistsAndReadWrite(t *testing.T) {
	root := t.TempDir()
	fs := New(root)

	if fs.Exists("/foo.txt") {
		t.Fatal("expected missing file to not exist")
	}

	if err := os.WriteFile(filepath.Join(root, "foo.txt"), []byte("hi"), 0644); err != nil {
		t.Fatalf("seed file: %v", err)
	}
	if !fs.Exists("/foo.txt") {
		t.Fatal("expected file to exist")
	}
	if fs.IsDir("/foo.txt") {
		t.Fatal("file should not be a dir")
	}

	b, err := fs.ReadFile("/foo.txt", false)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(b) != "hi" {
		t.Fatalf("got %q", b)
	}
}

func TestOpenWriteTruncateVsAppend(t *testing.T) {
	root := t.TempDir()
	fs := New(root)

	wh, err := fs.OpenWrite("/bar.txt", "w")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	wh.Write([]byte("one"))
	wh.Close()

	wh, err = fs.OpenWrite("/bar.txt", "a")
	if err != nil {
		t.Fatalf("reopen append: %v", err)
	}
	wh.Write([]byte("two"))
	wh.Close()

	b, _ := fs.ReadFile("/bar.txt", false)
	if string(b) != "onetwo" {
		t.Fatalf("got %q", b)
	}
}

func TestMakeDirListDelete(t *testing.T) {
	root := t.TempDir()
	fs := New(root)

	if err := fs.MakeDir("/sub"); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if !fs.IsDir("/sub") {
		t.Fatal("expected dir")
	}
	os.WriteFile(filepath.Join(root, "sub", "a.txt"), []byte("x"), 0644)

	names, err := fs.List("/sub")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(names) != 1 || names[0] != "a.txt" {
		t.Fatalf("got %v", names)
	}

	if err := fs.Delete("/sub"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if fs.Exists("/sub") {
		t.Fatal("expected dir removed")
	}
}

func TestPathEscapeRejected(t *testing.T) {
	root := t.TempDir()
	fs := New(root)
	if fs.Exists("/../../etc/passwd") {
		t.Fatal("escape should not resolve to an existing file")
	}
}

func TestReadFileMissingIsNotFoundError(t *testing.T) {
	root := t.TempDir()
	fs := New(root)
	_, err := fs.ReadFile("/nope.txt", false)
	if err == nil {
		t.Fatal("expected error")
	}
	if _, ok := err.(*hostfs.NotFoundError); !ok {
		t.Fatalf("expected *hostfs.NotFoundError, got %T", err)
	}
}

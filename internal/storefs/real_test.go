package storefs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func Test_Real_Create_Fails_When_File_Already_Exists(t *testing.T) {
	fs := NewReal()
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.json")

	if err := fs.Create(path, []byte("a")); err != nil {
		t.Fatalf("setup: %v", err)
	}

	err := fs.Create(path, []byte("b"))
	if !errors.Is(err, os.ErrExist) {
		t.Fatalf("err=%v, want os.ErrExist", err)
	}
}

func Test_Real_Update_Fails_When_File_Does_Not_Exist(t *testing.T) {
	fs := NewReal()
	dir := t.TempDir()
	path := filepath.Join(dir, "missing.json")

	err := fs.Update(path, []byte("a"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err=%v, want os.ErrNotExist", err)
	}
}

func Test_Real_Update_Replaces_Contents_Atomically(t *testing.T) {
	fs := NewReal()
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.json")

	if err := fs.Create(path, []byte("old")); err != nil {
		t.Fatalf("setup: %v", err)
	}

	if err := fs.Update(path, []byte("new")); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := fs.Read(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	if string(got) != "new" {
		t.Fatalf("got=%q, want=%q", got, "new")
	}
}

func Test_Real_Delete_Removes_File(t *testing.T) {
	fs := NewReal()
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.json")

	if err := fs.Create(path, []byte("a")); err != nil {
		t.Fatalf("setup: %v", err)
	}

	if err := fs.Delete(path); err != nil {
		t.Fatalf("delete: %v", err)
	}

	exists, err := fs.Exists(path)
	if err != nil {
		t.Fatalf("exists: %v", err)
	}

	if exists {
		t.Fatalf("exists=true after delete")
	}
}

func Test_Real_Delete_Fails_When_File_Does_Not_Exist(t *testing.T) {
	fs := NewReal()
	dir := t.TempDir()
	path := filepath.Join(dir, "missing.json")

	err := fs.Delete(path)
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err=%v, want os.ErrNotExist", err)
	}
}

func Test_Real_Exists_Returns_False_When_Missing(t *testing.T) {
	fs := NewReal()
	dir := t.TempDir()

	exists, err := fs.Exists(filepath.Join(dir, "missing.json"))
	if err != nil {
		t.Fatalf("exists: %v", err)
	}

	if exists {
		t.Fatalf("exists=true, want false")
	}
}

package fsync

import (
	"os"
	"path/filepath"
	"testing"
)

func TestData(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "x"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if _, err := f.Write([]byte("hello")); err != nil {
		t.Fatal(err)
	}
	if err := Data(f); err != nil {
		t.Fatalf("Data() = %v, wanted nil", err)
	}
}

func TestDir(t *testing.T) {
	if err := Dir(t.TempDir()); err != nil {
		t.Fatalf("Dir() = %v, wanted nil", err)
	}
	if err := Dir(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatalf("Dir(missing) = nil, wanted error")
	}
}

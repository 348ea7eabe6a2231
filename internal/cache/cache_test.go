package cache

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const testDigest = "9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08"

// writeFile создаёт файл с содержимым и возвращает путь.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCache_StoreFetchRoundTrip(t *testing.T) {
	dir := t.TempDir()
	c := New(filepath.Join(dir, "cache"), nil)

	src := writeFile(t, dir, "artifact.txt", "payload")
	if err := c.Store(testDigest, src); err != nil {
		t.Fatalf("store: %v", err)
	}

	dest := filepath.Join(dir, "out", "restored.txt")
	if err := c.Fetch(testDigest, dest); err != nil {
		t.Fatalf("fetch: %v", err)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "payload" {
		t.Errorf("fetched content = %q, want %q", got, "payload")
	}
}

func TestCache_Has(t *testing.T) {
	dir := t.TempDir()
	c := New(filepath.Join(dir, "cache"), nil)

	ok, err := c.Has(testDigest)
	if err != nil {
		t.Fatalf("has: %v", err)
	}
	if ok {
		t.Error("empty cache must not contain the entry")
	}

	src := writeFile(t, dir, "artifact.txt", "payload")
	if err := c.Store(testDigest, src); err != nil {
		t.Fatalf("store: %v", err)
	}

	ok, err = c.Has(testDigest)
	if err != nil {
		t.Fatalf("has: %v", err)
	}
	if !ok {
		t.Error("stored entry must be reported as present")
	}
}

func TestCache_FetchMissing(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "cache"), nil)

	err := c.Fetch(testDigest, filepath.Join(t.TempDir(), "out.txt"))
	if !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("expected ErrEntryNotFound, got %v", err)
	}
}

func TestCache_StoreDoesNotOverwrite(t *testing.T) {
	dir := t.TempDir()
	c := New(filepath.Join(dir, "cache"), nil)

	first := writeFile(t, dir, "first.txt", "original")
	if err := c.Store(testDigest, first); err != nil {
		t.Fatalf("store: %v", err)
	}

	// Повторный Store под тем же digest — no-op: запись контентно-адресуема
	second := writeFile(t, dir, "second.txt", "different")
	if err := c.Store(testDigest, second); err != nil {
		t.Fatalf("second store: %v", err)
	}

	dest := filepath.Join(dir, "out.txt")
	if err := c.Fetch(testDigest, dest); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "original" {
		t.Errorf("fetched content = %q, want the original entry", got)
	}
}

func TestCache_InvalidDigest(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "cache"), nil)

	if _, err := c.Has("ab"); !errors.Is(err, ErrInvalidDigest) {
		t.Errorf("expected ErrInvalidDigest, got %v", err)
	}
}

func TestCache_Size(t *testing.T) {
	dir := t.TempDir()
	c := New(filepath.Join(dir, "cache"), nil)

	n, err := c.Size()
	if err != nil {
		t.Fatalf("size: %v", err)
	}
	if n != 0 {
		t.Errorf("empty cache size = %d, want 0", n)
	}

	src := writeFile(t, dir, "artifact.txt", "payload")
	digests := []string{
		testDigest,
		"2c26b46b68ffc68ff99b453c1d30413413422d706483bfa0f98a5e886266e7ae",
	}
	for _, d := range digests {
		if err := c.Store(d, src); err != nil {
			t.Fatalf("store %s: %v", d, err)
		}
	}

	n, err = c.Size()
	if err != nil {
		t.Fatalf("size: %v", err)
	}
	if n != 2 {
		t.Errorf("cache size = %d, want 2", n)
	}
}

func TestDefaultRoot_EnvOverride(t *testing.T) {
	t.Setenv("LINEAGE_CACHE", "/tmp/custom-cache")
	if got := DefaultRoot(); got != "/tmp/custom-cache" {
		t.Errorf("DefaultRoot() = %q, want env override", got)
	}
}

package analyze

import (
	"context"
	"crypto/sha256"
	"os"
	"path/filepath"
	"testing"

	"cpdlint/internal/include"
)

func openTestCache(t *testing.T) *DiskCache {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	cache, err := OpenDiskCache("cpdlint-test")
	if err != nil {
		t.Fatalf("OpenDiskCache: %v", err)
	}
	return cache
}

func TestDiskCache_RoundTrip(t *testing.T) {
	cache := openTestCache(t)
	content := []byte("x = ghost + 1")
	res := analyzeText(t, string(content), include.NopProvider{})

	key := sha256.Sum256(content)
	if err := cache.Put(key, res); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, hit, err := cache.Get(key)
	if err != nil || !hit {
		t.Fatalf("Get: hit=%v err=%v", hit, err)
	}
	if got.Path != res.Path || got.Hash != res.Hash {
		t.Errorf("identity lost: %+v", got)
	}
	if got.Diagnostics.Len() != res.Diagnostics.Len() {
		t.Fatalf("diagnostics %d, want %d", got.Diagnostics.Len(), res.Diagnostics.Len())
	}
	for i, d := range got.Diagnostics.Items() {
		orig := res.Diagnostics.Items()[i]
		if d.Code != orig.Code || d.Primary != orig.Primary || d.Message != orig.Message {
			t.Errorf("diagnostic %d differs: %+v vs %+v", i, d, orig)
		}
	}
	if len(got.Catalogue.Variables) != len(res.Catalogue.Variables) {
		t.Errorf("catalogue lost: %+v", got.Catalogue)
	}
}

func TestDiskCache_Miss(t *testing.T) {
	cache := openTestCache(t)
	_, hit, err := cache.Get(sha256.Sum256([]byte("never stored")))
	if err != nil {
		t.Fatalf("miss returned error: %v", err)
	}
	if hit {
		t.Error("miss reported as hit")
	}
}

func TestDiskCache_SchemaMismatchIsMiss(t *testing.T) {
	cache := openTestCache(t)
	content := []byte("x = 1")
	res := analyzeText(t, string(content), include.NopProvider{})
	key := sha256.Sum256(content)
	if err := cache.Put(key, res); err != nil {
		t.Fatal(err)
	}

	// портим запись: другой формат трактуется как промах или ошибка чтения,
	// но никогда как валидный результат
	p := cache.pathFor(key)
	if err := os.WriteFile(p, []byte{0xc0}, 0o644); err != nil {
		t.Fatal(err)
	}
	got, hit, _ := cache.Get(key)
	if hit && got != nil && got.Hash == res.Hash {
		t.Error("corrupted entry served as valid")
	}
}

func TestDiskCache_DropAll(t *testing.T) {
	cache := openTestCache(t)
	content := []byte("x = 1")
	res := analyzeText(t, string(content), include.NopProvider{})
	key := sha256.Sum256(content)
	if err := cache.Put(key, res); err != nil {
		t.Fatal(err)
	}
	if err := cache.DropAll(); err != nil {
		t.Fatalf("DropAll: %v", err)
	}
	if _, err := os.Stat(filepath.Dir(cache.pathFor(key))); !os.IsNotExist(err) {
		t.Errorf("cache directory survived DropAll: %v", err)
	}
}

func TestDiskCache_NilSafe(t *testing.T) {
	var cache *DiskCache
	key := sha256.Sum256([]byte("x"))
	if err := cache.Put(key, nil); err != nil {
		t.Errorf("nil Put: %v", err)
	}
	if _, hit, err := cache.Get(key); hit || err != nil {
		t.Errorf("nil Get: hit=%v err=%v", hit, err)
	}
}

func TestAnalyze_CachedEquivalence(t *testing.T) {
	// результат из кэша неотличим от свежего прохода для lint-поверхности
	cache := openTestCache(t)
	content := []byte("#def m$(a$) = a$ * 2\nx = m$(3)\ny = ghost")
	res := analyzeText(t, string(content), include.NopProvider{})
	key := sha256.Sum256(content)
	if err := cache.Put(key, res); err != nil {
		t.Fatal(err)
	}

	a := New(include.NopProvider{}, Options{})
	fresh, err := a.Analyze(context.Background(), "doc.cpd", content)
	if err != nil {
		t.Fatal(err)
	}
	cached, hit, err := cache.Get(key)
	if err != nil || !hit {
		t.Fatalf("Get: hit=%v err=%v", hit, err)
	}
	if cached.Diagnostics.Len() != fresh.Diagnostics.Len() {
		t.Errorf("cached %d vs fresh %d diagnostics",
			cached.Diagnostics.Len(), fresh.Diagnostics.Len())
	}
	if len(cached.Catalogue.Macros) != len(fresh.Catalogue.Macros) {
		t.Errorf("cached catalogue differs")
	}
}

package registry

import (
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
)

func TestDefaults(t *testing.T) {
	r := New()
	base, ok := r.Lookup("IRIS")
	if !ok {
		t.Fatal("IRIS should be seeded")
	}
	if base != "https://service.iris.edu" {
		t.Fatalf("base = %q", base)
	}
}

func TestLookup_CaseInsensitive(t *testing.T) {
	r := New()
	for _, label := range []string{"iris", "Iris", " IRIS "} {
		if _, ok := r.Lookup(label); !ok {
			t.Fatalf("lookup %q failed", label)
		}
	}
}

func TestAdd(t *testing.T) {
	r := New()
	if err := r.Add("local", "http://localhost:8080/"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	base, ok := r.Lookup("LOCAL")
	if !ok {
		t.Fatal("added label not found")
	}
	if base != "http://localhost:8080" {
		t.Fatalf("trailing slash should be trimmed: %q", base)
	}
}

func TestAdd_DuplicateRejected(t *testing.T) {
	r := New()
	if err := r.Add("local", "http://localhost:8080"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if err := r.Add("LOCAL", "http://other:9999"); err == nil {
		t.Fatal("duplicate label must be rejected")
	}
	// the original mapping is untouched
	base, _ := r.Lookup("local")
	if base != "http://localhost:8080" {
		t.Fatalf("base = %q", base)
	}

	if err := r.Add("iris", "http://imposter"); err == nil {
		t.Fatal("seeded labels must also be protected")
	}
}

func TestAdd_RejectsRelativeURL(t *testing.T) {
	r := New()
	for _, bad := range []string{"", "not a url", "/just/a/path", "localhost:8080"} {
		if err := r.Add("X", bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
	if err := r.Add("", "http://localhost"); err == nil {
		t.Fatal("expected error for empty label")
	}
}

func TestLabels_Sorted(t *testing.T) {
	r := New()
	labels := r.Labels()
	if !sort.StringsAreSorted(labels) {
		t.Fatalf("labels not sorted: %v", labels)
	}
	if len(labels) != len(defaults) {
		t.Fatalf("got %d labels, want %d", len(labels), len(defaults))
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "servers.toml")
	seed := `[servers]
LOCAL = "http://localhost:8080"
MIRROR = "https://mirror.example.org/"
`
	if err := os.WriteFile(path, []byte(seed), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}

	r := New()
	if err := r.LoadFile(path); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if base, ok := r.Lookup("LOCAL"); !ok || base != "http://localhost:8080" {
		t.Fatalf("LOCAL = %q, %v", base, ok)
	}
	if base, ok := r.Lookup("MIRROR"); !ok || base != "https://mirror.example.org" {
		t.Fatalf("MIRROR = %q, %v", base, ok)
	}
}

func TestLoadFile_DuplicateFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "servers.toml")
	seed := `[servers]
IRIS = "http://imposter.example.org"
`
	if err := os.WriteFile(path, []byte(seed), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	if err := New().LoadFile(path); err == nil {
		t.Fatal("redefining a seeded label must fail")
	}
}

func TestConcurrentAddAndLookup(t *testing.T) {
	r := New()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_ = r.Add(string(rune('A'+i))+"X", "http://localhost:8080")
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				r.Lookup("IRIS")
				r.Labels()
			}
		}()
	}
	wg.Wait()
	if len(r.Labels()) != len(defaults)+16 {
		t.Fatalf("got %d labels", len(r.Labels()))
	}
}

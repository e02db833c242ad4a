package cache

import (
	"testing"

	"github.com/polybench/polybench/internal/dsl"
)

func TestHashSourceIsDeterministic(t *testing.T) {
	source := "package main\nfunc main() {}\n"
	if HashSource(source) != HashSource(source) {
		t.Fatal("expected identical source to hash identically")
	}
	if HashSource(source) == HashSource(source+" ") {
		t.Fatal("expected differing source to hash differently")
	}
}

func TestCacheMissThenHit(t *testing.T) {
	c := New(t.TempDir())

	key := Key{Lang: dsl.LangGo, SourceHash: HashSource("package main"), ToolchainID: "1.25"}

	if _, ok := c.Get(key); ok {
		t.Fatal("expected miss on empty cache")
	}

	if err := c.Put(key, &Result{OK: true}, nil); err != nil {
		t.Fatalf("Put: %v", err)
	}

	result, ok := c.Get(key)
	if !ok {
		t.Fatal("expected hit after Put")
	}
	if !result.OK {
		t.Fatal("expected OK result")
	}

	stats, err := c.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Entries != 1 {
		t.Fatalf("expected 1 entry, got %d", stats.Entries)
	}
	if stats.HitsSinceStart != 1 || stats.MissesSinceStart != 1 {
		t.Fatalf("expected 1 hit and 1 miss, got %+v", stats)
	}
}

func TestCachePersistsCompileErrors(t *testing.T) {
	c := New(t.TempDir())
	key := Key{Lang: dsl.LangRust, SourceHash: HashSource("fn main() {"), ToolchainID: "1.80"}

	if err := c.Put(key, &Result{OK: false, Errors: "unexpected EOF"}, []byte("error[E0001]")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	result, ok := c.Get(key)
	if !ok {
		t.Fatal("expected hit")
	}
	if result.OK {
		t.Fatal("expected failing result")
	}
	if result.Errors != "unexpected EOF" {
		t.Fatalf("got %q", result.Errors)
	}
}

func TestCacheClear(t *testing.T) {
	c := New(t.TempDir())
	key := Key{Lang: dsl.LangGo, SourceHash: HashSource("x"), ToolchainID: "1.25"}

	if err := c.Put(key, &Result{OK: true}, nil); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := c.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	if _, ok := c.Get(key); ok {
		t.Fatal("expected miss after Clear")
	}
}

func TestCacheCleanPrunesStaleToolchains(t *testing.T) {
	c := New(t.TempDir())
	oldKey := Key{Lang: dsl.LangGo, SourceHash: HashSource("x"), ToolchainID: "1.24"}
	newKey := Key{Lang: dsl.LangGo, SourceHash: HashSource("x"), ToolchainID: "1.25"}

	if err := c.Put(oldKey, &Result{OK: true}, nil); err != nil {
		t.Fatalf("Put old: %v", err)
	}
	if err := c.Put(newKey, &Result{OK: true}, nil); err != nil {
		t.Fatalf("Put new: %v", err)
	}

	if err := c.Clean(map[dsl.Lang]string{dsl.LangGo: "1.25"}); err != nil {
		t.Fatalf("Clean: %v", err)
	}

	if _, ok := c.Get(oldKey); ok {
		t.Fatal("expected stale entry pruned")
	}
	if _, ok := c.Get(newKey); !ok {
		t.Fatal("expected current entry kept")
	}
}

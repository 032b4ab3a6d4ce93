package bindings

import (
	"sync"
	"testing"
)

func TestRegisterAndGetLinearAddress(t *testing.T) {
	r := New()
	r.RegisterForLinearAddress(10, []int{3, 1})
	got, ok := r.GetForLinearAddress(10)
	if !ok {
		t.Fatal("expected binding")
	}
	if len(got) != 2 || got[0] != 3 || got[1] != 1 {
		t.Fatalf("got %v", got)
	}
	if _, ok := r.GetForLinearAddress(11); ok {
		t.Fatal("expected no binding for unregistered address")
	}
}

func TestRegisterAndGetAbsoluteCoord(t *testing.T) {
	r := New()
	r.RegisterForAbsoluteCoord([]int32{10, 5}, []int{3})
	got, ok := r.GetForAbsoluteCoord([]int32{10, 5})
	if !ok || len(got) != 1 || got[0] != 3 {
		t.Fatalf("got %v, %v", got, ok)
	}
}

func TestDefensiveCopyOnInsert(t *testing.T) {
	r := New()
	src := []int{1, 2, 3}
	r.RegisterForLinearAddress(0, src)
	src[0] = 999
	got, _ := r.GetForLinearAddress(0)
	if got[0] != 1 {
		t.Fatalf("registry aliased caller's slice: got %v", got)
	}
}

func TestDefensiveCopyOnRead(t *testing.T) {
	r := New()
	r.RegisterForLinearAddress(0, []int{1, 2})
	got, _ := r.GetForLinearAddress(0)
	got[0] = 999
	got2, _ := r.GetForLinearAddress(0)
	if got2[0] != 1 {
		t.Fatalf("mutating returned slice corrupted registry: %v", got2)
	}
}

func TestClearAll(t *testing.T) {
	r := New()
	r.RegisterForLinearAddress(0, []int{1})
	r.RegisterForAbsoluteCoord([]int32{0, 0}, []int{1})
	r.ClearAll()
	if _, ok := r.GetForLinearAddress(0); ok {
		t.Fatal("expected empty registry after ClearAll")
	}
	if _, ok := r.GetForAbsoluteCoord([]int32{0, 0}); ok {
		t.Fatal("expected empty registry after ClearAll")
	}
}

func TestConcurrentInsertAndRead(t *testing.T) {
	r := New()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			r.RegisterForLinearAddress(i, []int{i, i + 1})
		}(i)
		go func(i int) {
			defer wg.Done()
			r.GetForLinearAddress(i) // may race with its own writer, must not panic/corrupt
		}(i)
	}
	wg.Wait()
	for i := 0; i < 100; i++ {
		got, ok := r.GetForLinearAddress(i)
		if !ok {
			t.Fatalf("missing binding for %d after concurrent writes", i)
		}
		if len(got) != 2 || got[0] != i {
			t.Fatalf("corrupted binding for %d: %v", i, got)
		}
	}
}

func TestSingletonFacadeTeardown(t *testing.T) {
	orig := Default()
	defer SetDefault(orig)

	fresh := New()
	SetDefault(fresh)
	if Default() != fresh {
		t.Fatal("SetDefault did not take effect")
	}
	Default().RegisterForLinearAddress(1, []int{1})
	ResetDefault()
	if _, ok := Default().GetForLinearAddress(1); ok {
		t.Fatal("ResetDefault should clear bindings")
	}
}

func TestResolverDelegatesToAbsoluteCoord(t *testing.T) {
	r := New()
	r.RegisterForAbsoluteCoord([]int32{1, 2}, []int{7})
	resolver := NewResolver(r)
	got, ok := resolver.Resolve([]int32{1, 2})
	if !ok || len(got) != 1 || got[0] != 7 {
		t.Fatalf("got %v, %v", got, ok)
	}
	if _, ok := resolver.Resolve([]int32{9, 9}); ok {
		t.Fatal("expected no binding for unregistered coord")
	}
}

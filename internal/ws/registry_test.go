package ws

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func newBareSession(user string) *Session {
	return &Session{ID: user + "-session", User: user, ConnectedAt: time.Now().UTC()}
}

func TestRegistryRegisterLookupUnregister(t *testing.T) {
	r := NewRegistry()
	s := newBareSession("alice")

	if displaced := r.Register("alice", s); displaced != nil {
		t.Fatalf("unexpected displaced session: %+v", displaced)
	}

	got, ok := r.Lookup("alice")
	if !ok || got != s {
		t.Fatalf("Lookup returned %v, %v", got, ok)
	}

	r.Unregister("alice", s)
	if _, ok := r.Lookup("alice"); ok {
		t.Fatal("expected no session after Unregister")
	}

	// Second unregister is a no-op.
	r.Unregister("alice", s)
}

func TestRegistryReplacementReturnsDisplaced(t *testing.T) {
	r := NewRegistry()
	first := newBareSession("alice")
	second := newBareSession("alice")

	r.Register("alice", first)
	displaced := r.Register("alice", second)
	if displaced != first {
		t.Fatalf("expected first session displaced, got %v", displaced)
	}
	if r.Count() != 1 {
		t.Fatalf("expected count 1 after replacement, got %d", r.Count())
	}

	// The displaced session must not evict its replacement on teardown.
	r.Unregister("alice", first)
	if got, ok := r.Lookup("alice"); !ok || got != second {
		t.Fatalf("replacement evicted by stale unregister: %v, %v", got, ok)
	}
}

func TestRegistrySnapshotIsCopy(t *testing.T) {
	r := NewRegistry()
	r.Register("alice", newBareSession("alice"))

	snapshot := r.Snapshot()
	if len(snapshot) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(snapshot))
	}
	if snapshot["alice"].User != "alice" {
		t.Fatalf("unexpected snapshot entry: %+v", snapshot["alice"])
	}

	delete(snapshot, "alice")
	if r.Count() != 1 {
		t.Fatal("mutating the snapshot must not touch the registry")
	}
}

func TestRegistryConcurrentDistinctIdentities(t *testing.T) {
	const n = 64
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			identity := fmt.Sprintf("user-%d", i)
			s := newBareSession(identity)
			r.Register(identity, s)
			if _, ok := r.Lookup(identity); !ok {
				t.Errorf("lookup failed for %s", identity)
			}
			if i%2 == 0 {
				r.Unregister(identity, s)
			}
		}(i)
	}
	wg.Wait()

	if r.Count() != n/2 {
		t.Fatalf("expected %d sessions, got %d", n/2, r.Count())
	}
}

package workspace

import (
	"sync"
	"testing"
	"time"

	"marketplace-portal/model"
)

func TestRegistry_CreatesOncePerUser(t *testing.T) {
	created := 0
	r := NewRegistry("test", func(s model.Session) *int {
		created++
		v := 0
		return &v
	})
	alice := model.Session{Role: model.RoleAdmin, UserInfo: model.UserInfo{ID: "1"}}
	bob := model.Session{Role: model.RoleSupplier, UserInfo: model.UserInfo{ID: "2"}}

	*r.Get(alice) = 5
	if got := *r.Get(alice); got != 5 {
		t.Fatalf("expected the same value back, got %d", got)
	}
	r.Get(bob)
	if created != 2 || r.Len() != 2 {
		t.Fatalf("expected two values, created=%d len=%d", created, r.Len())
	}
}

func TestRegistry_RoleIsPartOfKey(t *testing.T) {
	r := NewRegistry("test", func(s model.Session) string { return s.Role })
	if r.Get(model.Session{Role: model.RoleStaff, UserInfo: model.UserInfo{ID: "1"}}) != model.RoleStaff {
		t.Fatalf("unexpected value")
	}
	if r.Get(model.Session{Role: model.RoleAdmin, UserInfo: model.UserInfo{ID: "1"}}) != model.RoleAdmin {
		t.Fatalf("same id with another role must get its own value")
	}
}

func TestRegistry_SweepDropsIdle(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	r := NewRegistry("test", func(model.Session) int { return 0 })
	r.now = func() time.Time { return now }

	old := model.Session{UserInfo: model.UserInfo{ID: "1"}}
	fresh := model.Session{UserInfo: model.UserInfo{ID: "2"}}
	r.Get(old)
	now = now.Add(20 * time.Minute)
	r.Get(fresh)
	now = now.Add(5 * time.Minute)

	if n := r.Sweep(15 * time.Minute); n != 1 {
		t.Fatalf("expected one swept entry, got %d", n)
	}
	if r.Len() != 1 {
		t.Fatalf("expected fresh entry to survive, len=%d", r.Len())
	}

	r.Drop(fresh)
	if r.Len() != 0 {
		t.Fatalf("drop should remove the entry")
	}
}

func TestRegistry_ConcurrentGet(t *testing.T) {
	r := NewRegistry("test", func(model.Session) *sync.Mutex { return &sync.Mutex{} })
	s := model.Session{UserInfo: model.UserInfo{ID: "1"}}
	first := r.Get(s)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if r.Get(s) != first {
				t.Errorf("concurrent get returned a different value")
			}
		}()
	}
	wg.Wait()
}

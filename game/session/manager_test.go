package session

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestManager_Register(t *testing.T) {
	manager := NewManager()

	id, count, err := manager.Register(Player{Transport: TransportTCP, Remote: "127.0.0.1:5000"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if id == "" {
		t.Error("Expected generated ID")
	}
	if count != 1 {
		t.Errorf("Expected count 1, got %d", count)
	}

	_, count, err = manager.Register(Player{ID: "custom", Transport: TransportWebSocket})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if count != 2 {
		t.Errorf("Expected count 2, got %d", count)
	}

	if _, _, err := manager.Register(Player{ID: "custom"}); !errors.Is(err, ErrSessionAlreadyExists) {
		t.Errorf("Expected ErrSessionAlreadyExists, got %v", err)
	}

	p, err := manager.Get(id)
	if err != nil {
		t.Fatalf("Expected player, got %v", err)
	}
	if p.Transport != TransportTCP || p.Remote != "127.0.0.1:5000" {
		t.Errorf("Unexpected player %+v", p)
	}
	if p.ConnectedAt.IsZero() {
		t.Error("Expected connection time to be set")
	}
}

func TestManager_Unregister(t *testing.T) {
	manager := NewManager()
	id, _, _ := manager.Register(Player{})

	if err := manager.Unregister(id); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if manager.Count() != 0 {
		t.Errorf("Expected count 0, got %d", manager.Count())
	}
	if err := manager.Unregister(id); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
	if _, err := manager.Get(id); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestManager_Touch(t *testing.T) {
	manager := NewManager()
	id, _, _ := manager.Register(Player{})

	for i := 0; i < 3; i++ {
		if err := manager.Touch(id); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
	}
	p, _ := manager.Get(id)
	if p.Commands != 3 {
		t.Errorf("Expected 3 commands, got %d", p.Commands)
	}
	if err := manager.Touch("missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestManager_ListOrder(t *testing.T) {
	manager := NewManager()
	base := time.Now()
	manager.Register(Player{ID: "c", ConnectedAt: base.Add(2 * time.Second)})
	manager.Register(Player{ID: "a", ConnectedAt: base})
	manager.Register(Player{ID: "b", ConnectedAt: base.Add(time.Second)})

	list := manager.List()
	if len(list) != 3 {
		t.Fatalf("Expected 3 players, got %d", len(list))
	}
	for i, want := range []string{"a", "b", "c"} {
		if list[i].ID != want {
			t.Errorf("Position %d: expected %s, got %s", i, want, list[i].ID)
		}
	}

	list[0].Commands = 99
	if p, _ := manager.Get("a"); p.Commands != 0 {
		t.Error("Expected List to return copies")
	}
}

func TestManager_Idle(t *testing.T) {
	manager := NewManager()
	manager.Register(Player{ID: "old", ConnectedAt: time.Now().Add(-time.Hour)})
	manager.Register(Player{ID: "new"})

	idle := manager.Idle(time.Minute)
	if len(idle) != 1 || idle[0].ID != "old" {
		t.Errorf("Expected only old to be idle, got %+v", idle)
	}

	manager.Touch("old")
	if idle := manager.Idle(time.Minute); len(idle) != 0 {
		t.Errorf("Expected no idle players after touch, got %+v", idle)
	}
}

func TestManager_IdleOrder(t *testing.T) {
	manager := NewManager()
	base := time.Now().Add(-time.Hour)
	for i, id := range []string{"e", "b", "d", "a", "c"} {
		manager.Register(Player{ID: id, ConnectedAt: base.Add(time.Duration(i) * time.Second)})
	}

	idle := manager.Idle(time.Minute)
	list := manager.List()
	if len(idle) != len(list) {
		t.Fatalf("Expected all %d players idle, got %d", len(list), len(idle))
	}
	for i := range list {
		if idle[i].ID != list[i].ID {
			t.Errorf("Position %d: expected %s, got %s", i, list[i].ID, idle[i].ID)
		}
	}
	if idle[0].ID != "e" || idle[4].ID != "c" {
		t.Errorf("Expected oldest first, got %+v", idle)
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	manager := NewManager()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id, _, err := manager.Register(Player{ID: fmt.Sprintf("p%d", n)})
			if err != nil {
				t.Errorf("Register %d: %v", n, err)
				return
			}
			manager.Touch(id)
			manager.List()
			if n%2 == 0 {
				manager.Unregister(id)
			}
		}(i)
	}
	wg.Wait()

	if manager.Count() != 25 {
		t.Errorf("Expected 25 players left, got %d", manager.Count())
	}
}

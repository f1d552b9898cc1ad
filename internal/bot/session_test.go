package bot

import (
	"sync"
	"testing"
)

func TestSessionStore_DefaultsToIdle(t *testing.T) {
	s := NewSessionStore()
	if got := s.Get(42); got.State != StateIdle {
		t.Fatalf("fresh session state = %v; want idle", got.State)
	}
}

func TestSessionStore_Transitions(t *testing.T) {
	s := NewSessionStore()

	s.AwaitIssue(1)
	if got := s.Get(1); got.State != StateAwaitingIssue {
		t.Fatalf("after AwaitIssue state = %v", got.State)
	}

	s.AwaitSolution(1, 99)
	got := s.Get(1)
	if got.State != StateAwaitingSolution || got.RequestID != 99 {
		t.Fatalf("after AwaitSolution session = %+v", got)
	}

	s.Clear(1)
	if got := s.Get(1); got.State != StateIdle || got.RequestID != 0 {
		t.Fatalf("after Clear session = %+v", got)
	}
}

func TestSessionStore_IsolatesUsers(t *testing.T) {
	s := NewSessionStore()
	s.AwaitIssue(1)
	s.AwaitSolution(2, 7)

	if got := s.Get(1); got.State != StateAwaitingIssue {
		t.Fatalf("user 1 session = %+v", got)
	}
	if got := s.Get(2); got.RequestID != 7 {
		t.Fatalf("user 2 session = %+v", got)
	}
	if got := s.Get(3); got.State != StateIdle {
		t.Fatalf("user 3 session = %+v", got)
	}
}

func TestSessionStore_ConcurrentAccess(t *testing.T) {
	s := NewSessionStore()
	var wg sync.WaitGroup
	for i := int64(0); i < 50; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			s.AwaitIssue(id)
			s.Get(id)
			s.AwaitSolution(id, id)
			s.Clear(id)
		}(i)
	}
	wg.Wait()

	for i := int64(0); i < 50; i++ {
		if got := s.Get(i); got.State != StateIdle {
			t.Fatalf("user %d not idle after clear: %+v", i, got)
		}
	}
}

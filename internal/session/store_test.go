package session

import (
	"context"
	"testing"
	"time"

	"github.com/Fuwaaaaaa/Goodmorning-Tweet-AIScore/internal/model"
)

func newTestStore(ttl time.Duration) *Store {
	return NewStore(ttl, func() *Machine { return NewMachine(model.ModeMedium) })
}

func TestStore_GetOrCreate(t *testing.T) {
	now := time.Now().UTC()
	s := newTestStore(5 * time.Minute)

	id, m, created := s.GetOrCreate("", now)
	if !created || id == "" || m == nil {
		t.Fatalf("expected a new session, got id=%q created=%v", id, created)
	}

	id2, m2, created := s.GetOrCreate(id, now.Add(time.Second))
	if created || id2 != id || m2 != m {
		t.Error("known id should return the same machine")
	}
}

func TestStore_UnknownIDGetsFreshSession(t *testing.T) {
	now := time.Now().UTC()
	s := newTestStore(5 * time.Minute)

	id, _, created := s.GetOrCreate("forged-id", now)
	if !created || id == "forged-id" {
		t.Errorf("unknown id should not be adopted, got %q", id)
	}
}

func TestStore_ExpiresIdleSessions(t *testing.T) {
	now := time.Now().UTC()
	s := newTestStore(2 * time.Minute)
	id, _, _ := s.GetOrCreate("", now)

	if _, ok := s.Get(id, now.Add(3*time.Minute)); ok {
		t.Fatal("expected session to expire after ttl")
	}
	if s.Len(now.Add(3*time.Minute)) != 0 {
		t.Error("expired session still counted")
	}
}

func TestStore_AccessRefreshesTTL(t *testing.T) {
	now := time.Now().UTC()
	s := newTestStore(2 * time.Minute)
	id, _, _ := s.GetOrCreate("", now)

	s.Get(id, now.Add(90*time.Second))
	if _, ok := s.Get(id, now.Add(180*time.Second)); !ok {
		t.Error("session seen 90s ago should still be live")
	}
}

func TestStore_KeepsAnalyzingSessions(t *testing.T) {
	now := time.Now().UTC()
	s := newTestStore(time.Minute)
	id, m, _ := s.GetOrCreate("", now)
	m.Dispatch(context.Background(), Submit{Image: jpeg()})

	if _, ok := s.Get(id, now.Add(time.Hour)); !ok {
		t.Error("analyzing session must not expire")
	}
}

func TestStore_ZeroTTLNeverExpires(t *testing.T) {
	now := time.Now().UTC()
	s := newTestStore(0)
	id, _, _ := s.GetOrCreate("", now)

	if _, ok := s.Get(id, now.Add(24*time.Hour)); !ok {
		t.Error("zero ttl should disable expiry")
	}
}

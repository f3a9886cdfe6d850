package disambig

import (
	"errors"
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

func candidates(n int) []Candidate {
	out := make([]Candidate, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, Candidate{
			GuildID:   snowflake.ID(i + 1),
			ChannelID: snowflake.ID(100 + i),
			Name:      "guild",
		})
	}
	return out
}

func TestManager_CreateCapsCandidates(t *testing.T) {
	m := NewManager(time.Minute, 5)

	tests := []struct {
		name string
		in   int
		want int
	}{
		{name: "three stay three", in: 3, want: 3},
		{name: "five stay five", in: 5, want: 5},
		{name: "eight capped to five", in: 8, want: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := m.Create(snowflake.ID(1), KindConfession, "secret", 0, candidates(tt.in))
			if got := len(session.Candidates); got != tt.want {
				t.Errorf("len(Candidates) = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestManager_Take(t *testing.T) {
	m := NewManager(time.Minute, 5)
	owner := snowflake.ID(1)

	session := m.Create(owner, KindReply, "body", 7, candidates(2))

	// A different identity is rejected and does not consume the session.
	if _, err := m.Take(session.ID, snowflake.ID(2)); !errors.Is(err, ErrWrongUser) {
		t.Fatalf("Take() by stranger error = %v, want ErrWrongUser", err)
	}

	got, err := m.Take(session.ID, owner)
	if err != nil {
		t.Fatalf("Take() by owner error = %v", err)
	}
	if got.Kind != KindReply || got.Code != 7 || got.Content != "body" {
		t.Errorf("Take() = %+v, want kind=reply code=7 content=body", got)
	}

	// A session resolves at most once.
	if _, err := m.Take(session.ID, owner); !errors.Is(err, ErrExpired) {
		t.Errorf("Take() after consume error = %v, want ErrExpired", err)
	}
}

func TestManager_TakeExpired(t *testing.T) {
	m := NewManager(10*time.Millisecond, 5)
	owner := snowflake.ID(1)

	session := m.Create(owner, KindConfession, "secret", 0, candidates(1))
	session.CreatedAt = time.Now().Add(-time.Second)

	if _, err := m.Take(session.ID, owner); !errors.Is(err, ErrExpired) {
		t.Errorf("Take() expired error = %v, want ErrExpired", err)
	}
}

func TestManager_CleanupExpired(t *testing.T) {
	m := NewManager(10*time.Millisecond, 5)

	stale := m.Create(snowflake.ID(1), KindConfession, "old", 0, candidates(1))
	stale.CreatedAt = time.Now().Add(-time.Second)
	fresh := m.Create(snowflake.ID(2), KindConfession, "new", 0, candidates(1))

	m.cleanupExpired()

	if _, ok := m.sessions.Load(stale.ID); ok {
		t.Errorf("expired session survived cleanup")
	}
	if _, ok := m.sessions.Load(fresh.ID); !ok {
		t.Errorf("fresh session removed by cleanup")
	}
}

func TestSession_Candidate(t *testing.T) {
	m := NewManager(time.Minute, 5)
	session := m.Create(snowflake.ID(1), KindConfession, "secret", 0, candidates(2))

	if _, ok := session.Candidate(snowflake.ID(1)); !ok {
		t.Errorf("Candidate(1) ok = false, want true")
	}
	if _, ok := session.Candidate(snowflake.ID(99)); ok {
		t.Errorf("Candidate(99) ok = true, want false")
	}
}

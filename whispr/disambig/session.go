package disambig

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

var (
	// ErrExpired means the selection window closed (or never existed); the
	// request must be restarted from scratch.
	ErrExpired = errors.New("selection expired")

	// ErrWrongUser means someone other than the requester tried to select.
	ErrWrongUser = errors.New("selection belongs to another user")
)

type Kind int

const (
	KindConfession Kind = iota
	KindReply
)

// Candidate is one guild a pending DM could target.
type Candidate struct {
	GuildID   snowflake.ID
	ChannelID snowflake.ID
	Name      string
}

// Session is a suspended confession or reply waiting for the requester to
// pick a target guild. No state survives expiry or consumption.
type Session struct {
	ID         string
	UserID     snowflake.ID
	Kind       Kind
	Content    string
	Code       int
	Candidates []Candidate
	CreatedAt  time.Time
}

// Manager tracks pending guild selections. Sessions are bound to the
// requesting user and expire after a fixed window.
type Manager struct {
	ttl        time.Duration
	maxChoices int
	sessions   sync.Map // session ID -> *Session
	seq        atomic.Uint64
}

func NewManager(ttl time.Duration, maxChoices int) *Manager {
	return &Manager{
		ttl:        ttl,
		maxChoices: maxChoices,
	}
}

// Create registers a new selection session, capping candidates at the
// configured maximum.
func (m *Manager) Create(userID snowflake.ID, kind Kind, content string, code int, candidates []Candidate) *Session {
	if len(candidates) > m.maxChoices {
		candidates = candidates[:m.maxChoices]
	}
	session := &Session{
		ID:         strconv.FormatUint(m.seq.Add(1), 10) + "-" + strconv.FormatInt(time.Now().UnixNano(), 36),
		UserID:     userID,
		Kind:       kind,
		Content:    content,
		Code:       code,
		Candidates: candidates,
		CreatedAt:  time.Now(),
	}
	m.sessions.Store(session.ID, session)
	return session
}

// Take resolves and consumes a session. A selection by any identity other
// than the requester is rejected without consuming the session; an unknown
// or timed-out session reports ErrExpired.
func (m *Manager) Take(sessionID string, userID snowflake.ID) (*Session, error) {
	value, ok := m.sessions.Load(sessionID)
	if !ok {
		return nil, ErrExpired
	}
	session := value.(*Session)
	if time.Since(session.CreatedAt) > m.ttl {
		m.sessions.Delete(sessionID)
		return nil, ErrExpired
	}
	if session.UserID != userID {
		return nil, ErrWrongUser
	}
	m.sessions.Delete(sessionID)
	return session, nil
}

// Candidate returns the session candidate matching a guild, if the guild was
// actually offered.
func (s *Session) Candidate(guildID snowflake.ID) (Candidate, bool) {
	for _, candidate := range s.Candidates {
		if candidate.GuildID == guildID {
			return candidate, true
		}
	}
	return Candidate{}, false
}

func (m *Manager) cleanupExpired() {
	now := time.Now()
	m.sessions.Range(func(key, value any) bool {
		session := value.(*Session)
		if now.Sub(session.CreatedAt) > m.ttl {
			m.sessions.Delete(key)
		}
		return true
	})
}

// StartCleanupRoutine periodically drops expired sessions until ctx is done.
func (m *Manager) StartCleanupRoutine(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.cleanupExpired()
			}
		}
	}()
}

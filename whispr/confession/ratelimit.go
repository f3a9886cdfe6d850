package confession

import (
	"fmt"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// Limiter gates confessions per (author, guild) pair. The table lives only
// in memory and resets on restart; entries are overwritten on each accepted
// post and never expire.
type Limiter struct {
	window  time.Duration
	entries sync.Map // "<userID>:<guildID>" -> time.Time of last accepted post
}

func NewLimiter(window time.Duration) *Limiter {
	return &Limiter{window: window}
}

func limiterKey(userID snowflake.ID, guildID snowflake.ID) string {
	return fmt.Sprintf("%s:%s", userID, guildID)
}

// Allow reports whether an author may post to a guild at the given time and,
// if so, records the post immediately. The record is optimistic: a send
// failure after the gate does not roll the timestamp back.
func (l *Limiter) Allow(userID snowflake.ID, guildID snowflake.ID, now time.Time) bool {
	key := limiterKey(userID, guildID)
	if last, ok := l.entries.Load(key); ok {
		if now.Sub(last.(time.Time)) < l.window {
			return false
		}
	}
	l.entries.Store(key, now)
	return true
}

// Remaining returns how long an author still has to wait before the guild
// accepts another confession, zero if they may post now.
func (l *Limiter) Remaining(userID snowflake.ID, guildID snowflake.ID, now time.Time) time.Duration {
	last, ok := l.entries.Load(limiterKey(userID, guildID))
	if !ok {
		return 0
	}
	remaining := l.window - now.Sub(last.(time.Time))
	if remaining < 0 {
		return 0
	}
	return remaining
}

package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/disgoorg/snowflake/v2"
	"github.com/whisprbot/whispr/whispr/logger"
)

const (
	guildChannelsFile = "guild_channels.json"
	countersFile      = "counters.json"
	authorsFile       = "authors.json"
)

// Store owns the three persisted maps backing the confession flow:
// guild -> confession channel, guild -> next code, code -> author.
// Every map is read and written as a whole-file JSON snapshot; a single
// mutex serializes all read-modify-write cycles so concurrent handlers
// cannot lose updates.
type Store struct {
	mu  sync.Mutex
	dir string

	guildChannels map[string]snowflake.ID
	counters      map[string]int
	authors       map[string]snowflake.ID
}

func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir: %w", err)
	}

	s := &Store{
		dir:           dir,
		guildChannels: map[string]snowflake.ID{},
		counters:      map[string]int{},
		authors:       map[string]snowflake.ID{},
	}

	if err := loadSnapshot(s.path(guildChannelsFile), &s.guildChannels); err != nil {
		return nil, err
	}
	if err := loadSnapshot(s.path(countersFile), &s.counters); err != nil {
		return nil, err
	}
	if err := loadSnapshot(s.path(authorsFile), &s.authors); err != nil {
		return nil, err
	}

	logger.LogSystem("Storage opened",
		"dir", dir,
		"bindings", len(s.guildChannels),
		"authors", len(s.authors))
	return s, nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name)
}

// GuildChannel returns the confession channel bound to a guild.
func (s *Store) GuildChannel(guildID snowflake.ID) (snowflake.ID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	channelID, ok := s.guildChannels[guildID.String()]
	return channelID, ok
}

// SetGuildChannel binds a confession channel to a guild, replacing any
// previous binding.
func (s *Store) SetGuildChannel(guildID snowflake.ID, channelID snowflake.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.guildChannels[guildID.String()] = channelID
	return saveSnapshot(s.path(guildChannelsFile), s.guildChannels)
}

// Bindings returns a copy of all guild -> channel bindings.
func (s *Store) Bindings() map[snowflake.ID]snowflake.ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	bindings := make(map[snowflake.ID]snowflake.ID, len(s.guildChannels))
	for gid, channelID := range s.guildChannels {
		guildID, err := snowflake.Parse(gid)
		if err != nil {
			continue
		}
		bindings[guildID] = channelID
	}
	return bindings
}

// NextCode allocates the next confession code for a guild. The incremented
// counter is persisted before the code is handed out, so a crash between
// allocation and posting leaves a gap in the numbering; codes are never
// reused.
func (s *Store) NextCode(guildID snowflake.ID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	gid := guildID.String()
	code := s.counters[gid]
	if code < 1 {
		code = 1
	}
	s.counters[gid] = code + 1
	if err := saveSnapshot(s.path(countersFile), s.counters); err != nil {
		return 0, err
	}
	logger.LogStore("Allocated confession code", "guild_id", gid, "code", code)
	return code, nil
}

// IssuedCount reports how many codes a guild's counter has handed out so far.
func (s *Store) IssuedCount(guildID snowflake.ID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.counters[guildID.String()]
	if next < 1 {
		return 0
	}
	return next - 1
}

// RecordAuthor stores the author behind a confession code. The mapping is
// written once per code and never deleted; it exists solely so replies can
// notify the original author.
func (s *Store) RecordAuthor(code int, authorID snowflake.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authors[strconv.Itoa(code)] = authorID
	return saveSnapshot(s.path(authorsFile), s.authors)
}

// Author resolves a confession code back to its recorded author.
func (s *Store) Author(code int) (snowflake.ID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	authorID, ok := s.authors[strconv.Itoa(code)]
	return authorID, ok
}

// HasAuthor reports whether an author is on file for a code without
// exposing the identity.
func (s *Store) HasAuthor(code int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.authors[strconv.Itoa(code)]
	return ok
}

func loadSnapshot[V any](path string, dst *map[string]V) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

func saveSnapshot[V any](path string, src map[string]V) error {
	data, err := json.Marshal(src)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

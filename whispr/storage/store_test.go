package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/disgoorg/snowflake/v2"
)

func TestStore_GuildChannel(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	guildID := snowflake.ID(100)

	if _, ok := store.GuildChannel(guildID); ok {
		t.Fatalf("GuildChannel() ok = true before any binding")
	}

	if err := store.SetGuildChannel(guildID, snowflake.ID(200)); err != nil {
		t.Fatalf("SetGuildChannel() error = %v", err)
	}
	if channelID, ok := store.GuildChannel(guildID); !ok || channelID != 200 {
		t.Errorf("GuildChannel() = %v, %v, want 200, true", channelID, ok)
	}

	// A later setup action overwrites the binding.
	if err := store.SetGuildChannel(guildID, snowflake.ID(300)); err != nil {
		t.Fatalf("SetGuildChannel() error = %v", err)
	}
	if channelID, _ := store.GuildChannel(guildID); channelID != 300 {
		t.Errorf("GuildChannel() after overwrite = %v, want 300", channelID)
	}
}

func TestStore_NextCode(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	guildA := snowflake.ID(1)
	guildB := snowflake.ID(2)

	for want := 1; want <= 3; want++ {
		got, err := store.NextCode(guildA)
		if err != nil {
			t.Fatalf("NextCode() error = %v", err)
		}
		if got != want {
			t.Errorf("NextCode() = %d, want %d", got, want)
		}
	}

	// Counters are independent per guild.
	if got, _ := store.NextCode(guildB); got != 1 {
		t.Errorf("NextCode(guildB) = %d, want 1", got)
	}

	if got := store.IssuedCount(guildA); got != 3 {
		t.Errorf("IssuedCount(guildA) = %d, want 3", got)
	}

	// The counter survives a restart: a fresh Store over the same directory
	// continues the sequence instead of reusing codes.
	reopened, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() reopen error = %v", err)
	}
	if got, _ := reopened.NextCode(guildA); got != 4 {
		t.Errorf("NextCode() after reopen = %d, want 4", got)
	}
}

func TestStore_Authors(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	if _, ok := store.Author(7); ok {
		t.Fatalf("Author() ok = true for unrecorded code")
	}

	if err := store.RecordAuthor(7, snowflake.ID(42)); err != nil {
		t.Fatalf("RecordAuthor() error = %v", err)
	}
	if authorID, ok := store.Author(7); !ok || authorID != 42 {
		t.Errorf("Author() = %v, %v, want 42, true", authorID, ok)
	}
	if !store.HasAuthor(7) {
		t.Errorf("HasAuthor(7) = false, want true")
	}

	reopened, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() reopen error = %v", err)
	}
	if authorID, ok := reopened.Author(7); !ok || authorID != 42 {
		t.Errorf("Author() after reopen = %v, %v, want 42, true", authorID, ok)
	}
}

func TestStore_OpenEmptyDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	store, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if got := len(store.Bindings()); got != 0 {
		t.Errorf("Bindings() len = %d, want 0", got)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("storage dir not created: %v", err)
	}
}

func TestStore_CorruptSnapshot(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, countersFile), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if _, err := Open(dir); err == nil {
		t.Errorf("Open() error = nil, want decode error")
	}
}

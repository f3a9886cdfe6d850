package confession

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"

	"github.com/whisprbot/whispr/whispr/storage"
)

type sentMessage struct {
	ChannelID   snowflake.ID
	Content     string
	ReferenceID snowflake.ID
}

type fakePlatform struct {
	botID    snowflake.ID
	channels map[snowflake.ID]bool
	history  map[snowflake.ID][]Message

	sent      []sentMessage
	reactions []string
	dms       []sentMessage

	sendErr error
	dmErr   error

	nextID snowflake.ID
}

func newFakePlatform(channelIDs ...snowflake.ID) *fakePlatform {
	channels := map[snowflake.ID]bool{}
	for _, id := range channelIDs {
		channels[id] = true
	}
	return &fakePlatform{
		botID:    snowflake.ID(999),
		channels: channels,
		history:  map[snowflake.ID][]Message{},
		nextID:   1000,
	}
}

func (f *fakePlatform) ChannelExists(channelID snowflake.ID) bool {
	return f.channels[channelID]
}

func (f *fakePlatform) SendMessage(_ context.Context, channelID snowflake.ID, content string) (snowflake.ID, error) {
	if f.sendErr != nil {
		return 0, f.sendErr
	}
	f.nextID++
	f.sent = append(f.sent, sentMessage{ChannelID: channelID, Content: content})
	return f.nextID, nil
}

func (f *fakePlatform) SendReply(_ context.Context, channelID snowflake.ID, content string, referenceID snowflake.ID) (snowflake.ID, error) {
	if f.sendErr != nil {
		return 0, f.sendErr
	}
	f.nextID++
	f.sent = append(f.sent, sentMessage{ChannelID: channelID, Content: content, ReferenceID: referenceID})
	return f.nextID, nil
}

func (f *fakePlatform) React(_ context.Context, _ snowflake.ID, _ snowflake.ID, emoji string) error {
	f.reactions = append(f.reactions, emoji)
	return nil
}

func (f *fakePlatform) RecentMessages(_ context.Context, channelID snowflake.ID, limit int) ([]Message, error) {
	msgs := f.history[channelID]
	if len(msgs) > limit {
		msgs = msgs[:limit]
	}
	return msgs, nil
}

func (f *fakePlatform) SendDM(_ context.Context, userID snowflake.ID, content string) error {
	if f.dmErr != nil {
		return f.dmErr
	}
	f.dms = append(f.dms, sentMessage{ChannelID: userID, Content: content})
	return nil
}

func (f *fakePlatform) BotUserID() snowflake.ID {
	return f.botID
}

func newTestService(t *testing.T, platform *fakePlatform, window time.Duration) (*Service, *storage.Store) {
	t.Helper()
	store, err := storage.Open(t.TempDir())
	if err != nil {
		t.Fatalf("storage.Open() error = %v", err)
	}
	return NewService(store, NewLimiter(window), platform), store
}

func TestService_PostConfession(t *testing.T) {
	guildID := snowflake.ID(1)
	channelID := snowflake.ID(50)
	authorID := snowflake.ID(7)

	platform := newFakePlatform(channelID)
	svc, store := newTestService(t, platform, 0)
	if err := store.SetGuildChannel(guildID, channelID); err != nil {
		t.Fatalf("SetGuildChannel() error = %v", err)
	}

	code, err := svc.PostConfession(context.Background(), authorID, guildID, "  my secret  ")
	if err != nil {
		t.Fatalf("PostConfession() error = %v", err)
	}
	if code != 1 {
		t.Errorf("PostConfession() code = %d, want 1", code)
	}

	if len(platform.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(platform.sent))
	}
	want := "💬 **Anonymous Confession #001:**\nmy secret"
	if platform.sent[0].Content != want {
		t.Errorf("posted content = %q, want %q", platform.sent[0].Content, want)
	}
	if platform.sent[0].ChannelID != channelID {
		t.Errorf("posted to channel %v, want %v", platform.sent[0].ChannelID, channelID)
	}

	if len(platform.reactions) != 2 {
		t.Errorf("attached %d reactions, want 2", len(platform.reactions))
	}

	if recorded, ok := store.Author(1); !ok || recorded != authorID {
		t.Errorf("Author(1) = %v, %v, want %v, true", recorded, ok, authorID)
	}

	// Codes keep increasing by one per accepted post.
	code, err = svc.PostConfession(context.Background(), authorID, guildID, "another")
	if err != nil {
		t.Fatalf("PostConfession() error = %v", err)
	}
	if code != 2 {
		t.Errorf("PostConfession() second code = %d, want 2", code)
	}
}

func TestService_PostConfession_EmptyContent(t *testing.T) {
	guildID := snowflake.ID(1)
	channelID := snowflake.ID(50)

	platform := newFakePlatform(channelID)
	svc, store := newTestService(t, platform, 0)
	store.SetGuildChannel(guildID, channelID)

	tests := []string{"", "   ", "\n\t "}
	for _, content := range tests {
		if _, err := svc.PostConfession(context.Background(), snowflake.ID(7), guildID, content); !errors.Is(err, ErrEmptyContent) {
			t.Errorf("PostConfession(%q) error = %v, want ErrEmptyContent", content, err)
		}
	}

	// An empty confession must not consume a sequence code.
	code, err := svc.PostConfession(context.Background(), snowflake.ID(7), guildID, "real one")
	if err != nil {
		t.Fatalf("PostConfession() error = %v", err)
	}
	if code != 1 {
		t.Errorf("code after empty rejections = %d, want 1", code)
	}
}

func TestService_PostConfession_RateLimited(t *testing.T) {
	guildID := snowflake.ID(1)
	channelID := snowflake.ID(50)
	authorID := snowflake.ID(7)

	platform := newFakePlatform(channelID)
	svc, store := newTestService(t, platform, 30*time.Second)
	store.SetGuildChannel(guildID, channelID)

	if _, err := svc.PostConfession(context.Background(), authorID, guildID, "first"); err != nil {
		t.Fatalf("PostConfession() error = %v", err)
	}
	if _, err := svc.PostConfession(context.Background(), authorID, guildID, "second"); !errors.Is(err, ErrRateLimited) {
		t.Errorf("PostConfession() error = %v, want ErrRateLimited", err)
	}

	// A different author is not gated by the first author's post.
	if _, err := svc.PostConfession(context.Background(), snowflake.ID(8), guildID, "other author"); err != nil {
		t.Errorf("PostConfession() other author error = %v", err)
	}
}

func TestService_PostConfession_NoChannel(t *testing.T) {
	platform := newFakePlatform()
	svc, store := newTestService(t, platform, 0)

	// No binding at all.
	if _, err := svc.PostConfession(context.Background(), snowflake.ID(7), snowflake.ID(1), "hello"); !errors.Is(err, ErrNoChannel) {
		t.Errorf("PostConfession() error = %v, want ErrNoChannel", err)
	}

	// Bound channel no longer resolves.
	store.SetGuildChannel(snowflake.ID(1), snowflake.ID(404))
	if _, err := svc.PostConfession(context.Background(), snowflake.ID(7), snowflake.ID(1), "hello"); !errors.Is(err, ErrNoChannel) {
		t.Errorf("PostConfession() error = %v, want ErrNoChannel", err)
	}
}

func TestService_PostConfession_SendFailureConsumesCode(t *testing.T) {
	guildID := snowflake.ID(1)
	channelID := snowflake.ID(50)

	platform := newFakePlatform(channelID)
	svc, store := newTestService(t, platform, 0)
	store.SetGuildChannel(guildID, channelID)

	platform.sendErr = fmt.Errorf("boom")
	if _, err := svc.PostConfession(context.Background(), snowflake.ID(7), guildID, "doomed"); err == nil {
		t.Fatalf("PostConfession() error = nil, want send failure")
	}

	// The failed send leaves a gap; the code is never reused.
	platform.sendErr = nil
	code, err := svc.PostConfession(context.Background(), snowflake.ID(7), guildID, "works now")
	if err != nil {
		t.Fatalf("PostConfession() error = %v", err)
	}
	if code != 2 {
		t.Errorf("code after failed send = %d, want 2", code)
	}
	if !strings.Contains(platform.sent[0].Content, "#002") {
		t.Errorf("posted content = %q, want code #002", platform.sent[0].Content)
	}
}

package confession

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/disgoorg/snowflake/v2"
	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/sync/errgroup"

	"github.com/whisprbot/whispr/whispr/config"
	"github.com/whisprbot/whispr/whispr/storage"
)

const (
	confessionHeader = "💬 **Anonymous Confession #%03d:**"
	replyHeader      = "💬 **Anonymous Reply to Confession #%03d:**"
	notificationText = "📩 Your confession #%03d received a new anonymous reply:\n%s"

	upvoteEmoji   = "👍"
	downvoteEmoji = "👎"
)

// Service runs the confession lifecycle: gating, code allocation, anonymized
// posting and author bookkeeping.
type Service struct {
	store    *storage.Store
	limiter  *Limiter
	platform Platform
	recent   *lru.Cache // "<guildID>:<code>" -> message ID of the posted confession
}

func NewService(store *storage.Store, limiter *Limiter, platform Platform) *Service {
	cache, _ := lru.New(config.MessageCacheSize)
	return &Service{
		store:    store,
		limiter:  limiter,
		platform: platform,
		recent:   cache,
	}
}

// ConfessionHeader renders the fixed header replies search for.
func ConfessionHeader(code int) string {
	return fmt.Sprintf(confessionHeader, code)
}

// PostConfession gates, allocates a code, posts the anonymized message to the
// guild's confession channel and records the author. The counter increment is
// durable before the send, so a failed send still consumes the code.
func (s *Service) PostConfession(ctx context.Context, authorID snowflake.ID, guildID snowflake.ID, content string) (int, error) {
	if !s.limiter.Allow(authorID, guildID, time.Now()) {
		return 0, ErrRateLimited
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return 0, ErrEmptyContent
	}

	channelID, err := s.channelFor(guildID)
	if err != nil {
		return 0, err
	}

	code, err := s.store.NextCode(guildID)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate confession code: %w", err)
	}

	messageID, err := s.platform.SendMessage(ctx, channelID,
		fmt.Sprintf("%s\n%s", ConfessionHeader(code), content))
	if err != nil {
		// Code stays consumed; gaps in numbering are tolerated.
		return 0, fmt.Errorf("failed to post confession #%03d: %w", code, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, emoji := range []string{upvoteEmoji, downvoteEmoji} {
		g.Go(func() error {
			return s.platform.React(gctx, channelID, messageID, emoji)
		})
	}
	if err := g.Wait(); err != nil {
		slog.Warn("Failed to attach vote reactions",
			slog.String("guild_id", guildID.String()),
			slog.Int("code", code),
			slog.Any("error", err))
	}

	if err := s.store.RecordAuthor(code, authorID); err != nil {
		slog.Error("Failed to record confession author",
			slog.String("type", "store"),
			slog.Int("code", code),
			slog.Any("error", err))
	}

	s.recent.Add(cacheKey(guildID, code), messageID)

	slog.Info("Confession posted",
		slog.String("guild_id", guildID.String()),
		slog.Int("code", code))
	return code, nil
}

// channelFor resolves the bound confession channel for a guild.
func (s *Service) channelFor(guildID snowflake.ID) (snowflake.ID, error) {
	channelID, ok := s.store.GuildChannel(guildID)
	if !ok {
		return 0, ErrNoChannel
	}
	if !s.platform.ChannelExists(channelID) {
		return 0, ErrNoChannel
	}
	return channelID, nil
}

func cacheKey(guildID snowflake.ID, code int) string {
	return fmt.Sprintf("%s:%d", guildID, code)
}

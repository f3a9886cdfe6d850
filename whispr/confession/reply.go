package confession

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"unicode"

	"github.com/disgoorg/snowflake/v2"

	"github.com/whisprbot/whispr/whispr/config"
)

// ReplyResult reports how a reply was delivered. An unlinked reply is not an
// error: the message still lands in the channel, the acknowledgment just
// differs.
type ReplyResult struct {
	Code     int
	Linked   bool
	Notified bool
}

// ParseReply parses "reply <code> <text>". The leading keyword is
// case-insensitive, the code may carry a "#" prefix and must be all digits,
// and the body must be non-empty after trimming.
func ParseReply(content string) (int, string, error) {
	trimmed := strings.TrimSpace(content)

	keyword, rest := splitToken(trimmed)
	if !strings.EqualFold(keyword, "reply") {
		return 0, "", ErrMalformedReply
	}

	codeToken, body := splitToken(rest)
	if codeToken == "" {
		return 0, "", ErrMalformedReply
	}
	codeToken = strings.TrimPrefix(codeToken, "#")
	if codeToken == "" || !isDigits(codeToken) {
		return 0, "", ErrMalformedReply
	}

	body = strings.TrimSpace(body)
	if body == "" {
		return 0, "", ErrMalformedReply
	}

	code, err := strconv.Atoi(codeToken)
	if err != nil {
		return 0, "", ErrMalformedReply
	}
	return code, body, nil
}

// splitToken cuts the first whitespace-delimited token off s.
func splitToken(s string) (string, string) {
	s = strings.TrimSpace(s)
	idx := strings.IndexFunc(s, unicode.IsSpace)
	if idx < 0 {
		return s, ""
	}
	return s[:idx], s[idx:]
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// PostReply posts an anonymous reply for a confession code. When the original
// post is still inside the search window the reply references it and the
// recorded author gets a best-effort DM; otherwise the reply is delivered
// unlinked.
func (s *Service) PostReply(ctx context.Context, guildID snowflake.ID, code int, body string) (ReplyResult, error) {
	result := ReplyResult{Code: code}

	channelID, err := s.channelFor(guildID)
	if err != nil {
		return result, err
	}

	content := fmt.Sprintf("%s\n%s", fmt.Sprintf(replyHeader, code), body)

	originalID, found := s.findOriginal(ctx, guildID, channelID, code)
	if !found {
		if _, err := s.platform.SendMessage(ctx, channelID, content); err != nil {
			return result, fmt.Errorf("failed to post reply to confession #%03d: %w", code, err)
		}
		slog.Info("Reply posted unlinked",
			slog.String("guild_id", guildID.String()),
			slog.Int("code", code))
		return result, nil
	}

	if _, err := s.platform.SendReply(ctx, channelID, content, originalID); err != nil {
		return result, fmt.Errorf("failed to post reply to confession #%03d: %w", code, err)
	}
	result.Linked = true

	if authorID, ok := s.store.Author(code); ok {
		notification := fmt.Sprintf(notificationText, code, body)
		if err := s.platform.SendDM(ctx, authorID, notification); err != nil {
			// Notification failure never surfaces to the replier.
			slog.Warn("Failed to notify confession author",
				slog.Int("code", code),
				slog.Any("error", err))
		} else {
			result.Notified = true
		}
	}

	slog.Info("Reply posted",
		slog.String("guild_id", guildID.String()),
		slog.Int("code", code))
	return result, nil
}

// findOriginal locates the confession message carrying a code, consulting the
// recent-message cache before falling back to a bounded history scan.
func (s *Service) findOriginal(ctx context.Context, guildID snowflake.ID, channelID snowflake.ID, code int) (snowflake.ID, bool) {
	if cached, ok := s.recent.Get(cacheKey(guildID, code)); ok {
		return cached.(snowflake.ID), true
	}

	messages, err := s.platform.RecentMessages(ctx, channelID, config.HistoryScanDepth)
	if err != nil {
		slog.Warn("History scan failed",
			slog.String("channel_id", channelID.String()),
			slog.Any("error", err))
		return 0, false
	}

	header := ConfessionHeader(code)
	botID := s.platform.BotUserID()
	for _, msg := range messages {
		if msg.AuthorID != botID {
			continue
		}
		if strings.HasPrefix(msg.Content, header) {
			s.recent.Add(cacheKey(guildID, code), msg.ID)
			return msg.ID, true
		}
	}
	return 0, false
}

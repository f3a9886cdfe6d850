package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"

	"github.com/whisprbot/whispr/whispr"
	"github.com/whisprbot/whispr/whispr/config"
	"github.com/whisprbot/whispr/whispr/confession"
	"github.com/whisprbot/whispr/whispr/disambig"
)

const (
	msgNoChannelAnywhere = "❌ Confession channel not set up. Ask an admin to use `/setup` in their server.\n" +
		"For more info, use `/help` in the server."
	msgInvalidReply = "❌ Invalid reply format. Use: reply #001 your message or reply 001 your message"
	msgChooseGuild  = "📨 You're in more than one server with a confession channel. Choose where to post:"
)

// MessageHandler routes inbound DMs: plain text becomes a confession,
// "reply <code> <text>" becomes an anonymous reply. Guild messages and bot
// messages are ignored.
func MessageHandler(b *whispr.Bot) bot.EventListener {
	return bot.NewListenerFunc(func(e *events.MessageCreate) {
		if e.Message.Author.Bot || e.GuildID != nil {
			return
		}
		go handleDM(b, e)
	})
}

func handleDM(b *whispr.Bot, e *events.MessageCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), config.DMHandlerTimeout)
	defer cancel()

	userID := e.Message.Author.ID
	content := strings.TrimSpace(e.Message.Content)

	respond := func(text string) {
		_, err := e.Client().Rest().CreateMessage(e.ChannelID,
			discord.NewMessageCreateBuilder().SetContent(text).Build(),
			rest.WithCtx(ctx))
		if err != nil {
			slog.Warn("Failed to answer DM",
				slog.String("user_id", userID.String()),
				slog.Any("error", err))
		}
	}

	isReply := strings.HasPrefix(strings.ToLower(content), "reply")
	var code int
	var body string
	if isReply {
		var err error
		code, body, err = confession.ParseReply(content)
		if err != nil {
			respond(msgInvalidReply)
			return
		}
	}

	candidates := candidateGuilds(ctx, b, userID)
	switch len(candidates) {
	case 0:
		respond(msgNoChannelAnywhere)
	case 1:
		if isReply {
			respond(RunReply(ctx, b, candidates[0].GuildID, code, body))
		} else {
			respond(RunConfession(ctx, b, userID, candidates[0].GuildID, content))
		}
	default:
		offerSelection(ctx, b, e, userID, isReply, content, body, code, candidates)
	}
}

// candidateGuilds computes the guilds a DM could target: every guild with a
// resolvable bound channel that the user is a member of. A failed membership
// lookup excludes the guild instead of failing the request.
func candidateGuilds(ctx context.Context, b *whispr.Bot, userID snowflake.ID) []disambig.Candidate {
	var candidates []disambig.Candidate
	for guildID, channelID := range b.Store.Bindings() {
		guild, ok := b.Client.Caches().Guild(guildID)
		if !ok {
			continue
		}
		if _, ok := b.Client.Caches().Channel(channelID); !ok {
			continue
		}
		if _, err := b.Client.Rest().GetMember(guildID, userID, rest.WithCtx(ctx)); err != nil {
			continue
		}
		candidates = append(candidates, disambig.Candidate{
			GuildID:   guildID,
			ChannelID: channelID,
			Name:      guild.Name,
		})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Name != candidates[j].Name {
			return candidates[i].Name < candidates[j].Name
		}
		return candidates[i].GuildID < candidates[j].GuildID
	})
	return candidates
}

// offerSelection suspends the request behind a select menu bound to the
// requesting user. The menu goes inert once the session times out.
func offerSelection(ctx context.Context, b *whispr.Bot, e *events.MessageCreate, userID snowflake.ID, isReply bool, content string, body string, code int, candidates []disambig.Candidate) {
	kind := disambig.KindConfession
	sessionContent := content
	if isReply {
		kind = disambig.KindReply
		sessionContent = body
	}
	session := b.Disambig.Create(userID, kind, sessionContent, code, candidates)

	options := make([]discord.StringSelectMenuOption, 0, len(session.Candidates))
	for _, candidate := range session.Candidates {
		options = append(options, discord.StringSelectMenuOption{
			Label: candidate.Name,
			Value: candidate.GuildID.String(),
		})
	}

	_, err := e.Client().Rest().CreateMessage(e.ChannelID,
		discord.NewMessageCreateBuilder().
			SetContent(msgChooseGuild).
			AddActionRow(discord.NewStringSelectMenu(
				"/confess-target/"+session.ID,
				"Select a server...",
				options...,
			)).
			Build(),
		rest.WithCtx(ctx))
	if err != nil {
		slog.Warn("Failed to send guild selection prompt",
			slog.String("user_id", userID.String()),
			slog.Any("error", err))
	}
}

// RunConfession executes a confession against a resolved guild and returns
// the acknowledgment text for the author's DM.
func RunConfession(ctx context.Context, b *whispr.Bot, userID snowflake.ID, guildID snowflake.ID, content string) string {
	_, err := b.Confessions.PostConfession(ctx, userID, guildID, content)
	switch {
	case errors.Is(err, confession.ErrRateLimited):
		return "⏳ Please wait before sending another confession."
	case errors.Is(err, confession.ErrEmptyContent):
		return "❌ Your confession cannot be empty."
	case errors.Is(err, confession.ErrNoChannel):
		return "❌ Confession channel not found. Please contact the admin."
	case err != nil:
		slog.Error("Failed to post confession",
			slog.String("guild_id", guildID.String()),
			slog.Any("error", err))
		return "❌ Something went wrong posting your confession. Please try again later."
	}
	return "✅ Your confession has been posted anonymously!"
}

// RunReply executes a reply against a resolved guild and returns the
// acknowledgment text. An unlinked delivery gets a distinct soft warning.
func RunReply(ctx context.Context, b *whispr.Bot, guildID snowflake.ID, code int, body string) string {
	result, err := b.Confessions.PostReply(ctx, guildID, code, body)
	switch {
	case errors.Is(err, confession.ErrNoChannel):
		return "❌ Confession channel not found. Please contact the admin."
	case err != nil:
		slog.Error("Failed to post reply",
			slog.String("guild_id", guildID.String()),
			slog.Int("code", code),
			slog.Any("error", err))
		return "❌ Something went wrong posting your reply. Please try again later."
	}
	if !result.Linked {
		return fmt.Sprintf("⚠️ Confession #%03d not found. Your reply was posted as a normal message.", code)
	}
	return fmt.Sprintf("✅ Your anonymous reply to confession #%03d has been posted as a reply!", code)
}

package whispr

import (
	"context"
	"log/slog"
	"time"

	"github.com/disgoorg/disgo"
	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/cache"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/gateway"
	"github.com/disgoorg/paginator"
	"github.com/disgoorg/snowflake/v2"

	"github.com/whisprbot/whispr/whispr/confession"
	"github.com/whisprbot/whispr/whispr/disambig"
	"github.com/whisprbot/whispr/whispr/storage"
)

func New(cfg Config, version string, commit string) *Bot {
	return &Bot{
		Cfg:       cfg,
		Paginator: paginator.New(),
		Version:   version,
		Commit:    commit,
	}
}

type Bot struct {
	Cfg         Config
	Client      bot.Client
	Paginator   *paginator.Manager
	Version     string
	Commit      string
	Store       *storage.Store
	Confessions *confession.Service
	Disambig    *disambig.Manager
}

func (b *Bot) SetupBot(listeners ...bot.EventListener) error {
	client, err := disgo.New(b.Cfg.Bot.Token,
		bot.WithGatewayConfigOpts(gateway.WithIntents(
			gateway.IntentGuilds,
			gateway.IntentGuildMessages,
			gateway.IntentDirectMessages,
			gateway.IntentMessageContent,
		)),
		bot.WithCacheConfigOpts(cache.WithCaches(cache.FlagGuilds, cache.FlagChannels)),
		bot.WithEventListeners(b.Paginator),
		bot.WithEventListeners(listeners...),
	)
	if err != nil {
		return err
	}

	b.Client = client
	return nil
}

func (b *Bot) OnReady(_ *events.Ready) {
	slog.Info("Whispr is now ready",
		slog.String("version", b.Version),
		slog.String("commit", b.Commit))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := b.Client.SetPresence(ctx,
		gateway.WithListeningActivity("your secrets"),
		gateway.WithOnlineStatus(discord.OnlineStatusOnline)); err != nil {
		slog.Error("Failed to set presence", slog.Any("error", err))
	}
}

// OnGuildJoin posts a best-effort welcome to the guild's system channel, or
// the first text channel that accepts the message. Failure is logged only.
func (b *Bot) OnGuildJoin(e *events.GuildJoin) {
	welcome := "**Hi! I'm Whispr, your anonymous confession bot!**\n" +
		"• To get started, an admin should run `/setup` to set the confession channel.\n" +
		"• For help and usage instructions, use `/help`.\n" +
		"• Users can DM me to send confessions or anonymous replies!"

	guild := e.Guild
	slog.Info("Joined guild",
		slog.String("guild_id", e.GuildID.String()),
		slog.String("guild_name", guild.Name))

	var channelIDs []snowflake.ID
	if guild.SystemChannelID != nil {
		channelIDs = append(channelIDs, *guild.SystemChannelID)
	}
	channels, err := b.Client.Rest().GetGuildChannels(e.GuildID)
	if err != nil {
		slog.Warn("Failed to list channels for welcome message",
			slog.String("guild_id", e.GuildID.String()),
			slog.Any("error", err))
	}
	for _, channel := range channels {
		if channel.Type() == discord.ChannelTypeGuildText {
			channelIDs = append(channelIDs, channel.ID())
		}
	}

	for _, channelID := range channelIDs {
		_, err := b.Client.Rest().CreateMessage(channelID,
			discord.NewMessageCreateBuilder().SetContent(welcome).Build())
		if err == nil {
			return
		}
	}
	if len(channelIDs) > 0 {
		slog.Warn("Could not deliver welcome message",
			slog.String("guild_id", e.GuildID.String()))
	}
}

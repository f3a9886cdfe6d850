package confession

import (
	"context"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
)

// discordPlatform adapts a disgo client to the Platform interface.
type discordPlatform struct {
	client bot.Client
}

func NewDiscordPlatform(client bot.Client) Platform {
	return &discordPlatform{client: client}
}

func (p *discordPlatform) ChannelExists(channelID snowflake.ID) bool {
	_, ok := p.client.Caches().Channel(channelID)
	return ok
}

func (p *discordPlatform) SendMessage(ctx context.Context, channelID snowflake.ID, content string) (snowflake.ID, error) {
	msg, err := p.client.Rest().CreateMessage(channelID,
		discord.NewMessageCreateBuilder().SetContent(content).Build(),
		rest.WithCtx(ctx))
	if err != nil {
		return 0, err
	}
	return msg.ID, nil
}

func (p *discordPlatform) SendReply(ctx context.Context, channelID snowflake.ID, content string, referenceID snowflake.ID) (snowflake.ID, error) {
	msg, err := p.client.Rest().CreateMessage(channelID,
		discord.NewMessageCreateBuilder().
			SetContent(content).
			SetMessageReferenceByID(referenceID).
			Build(),
		rest.WithCtx(ctx))
	if err != nil {
		return 0, err
	}
	return msg.ID, nil
}

func (p *discordPlatform) React(ctx context.Context, channelID snowflake.ID, messageID snowflake.ID, emoji string) error {
	return p.client.Rest().AddReaction(channelID, messageID, emoji, rest.WithCtx(ctx))
}

func (p *discordPlatform) RecentMessages(ctx context.Context, channelID snowflake.ID, limit int) ([]Message, error) {
	msgs, err := p.client.Rest().GetMessages(channelID, 0, 0, 0, limit, rest.WithCtx(ctx))
	if err != nil {
		return nil, err
	}
	messages := make([]Message, 0, len(msgs))
	for _, msg := range msgs {
		messages = append(messages, Message{
			ID:       msg.ID,
			AuthorID: msg.Author.ID,
			Content:  msg.Content,
		})
	}
	return messages, nil
}

func (p *discordPlatform) SendDM(ctx context.Context, userID snowflake.ID, content string) error {
	dmChannel, err := p.client.Rest().CreateDMChannel(userID, rest.WithCtx(ctx))
	if err != nil {
		return err
	}
	_, err = p.client.Rest().CreateMessage(dmChannel.ID(),
		discord.NewMessageCreateBuilder().SetContent(content).Build(),
		rest.WithCtx(ctx))
	return err
}

func (p *discordPlatform) BotUserID() snowflake.ID {
	if selfUser, ok := p.client.Caches().SelfUser(); ok {
		return selfUser.ID
	}
	return p.client.ApplicationID()
}

package confession

import (
	"context"

	"github.com/disgoorg/snowflake/v2"
)

// Message is the slice of a channel message the confession flow cares about.
type Message struct {
	ID       snowflake.ID
	AuthorID snowflake.ID
	Content  string
}

// Platform is the messaging surface the confession service posts through.
// The production implementation talks to Discord; tests supply a fake.
type Platform interface {
	// ChannelExists reports whether a channel still resolves.
	ChannelExists(channelID snowflake.ID) bool

	// SendMessage posts plain content to a channel and returns the new
	// message ID.
	SendMessage(ctx context.Context, channelID snowflake.ID, content string) (snowflake.ID, error)

	// SendReply posts content to a channel referencing an existing message.
	SendReply(ctx context.Context, channelID snowflake.ID, content string, referenceID snowflake.ID) (snowflake.ID, error)

	// React attaches a reaction emoji to a message.
	React(ctx context.Context, channelID snowflake.ID, messageID snowflake.ID, emoji string) error

	// RecentMessages returns up to limit channel messages, most recent first.
	RecentMessages(ctx context.Context, channelID snowflake.ID, limit int) ([]Message, error)

	// SendDM delivers a private message to a user.
	SendDM(ctx context.Context, userID snowflake.ID, content string) error

	// BotUserID is the identity the bot posts under.
	BotUserID() snowflake.ID
}

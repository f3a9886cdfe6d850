package commands

import (
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/json"

	"github.com/whisprbot/whispr/whispr"
	"github.com/whisprbot/whispr/whispr/utils"
)

var Setup = discord.SlashCommandCreate{
	Name:                     "setup",
	Description:              "Set the confession channel for this server",
	DefaultMemberPermissions: json.NewNullablePtr(discord.PermissionAdministrator),
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionChannel{
			Name:        "channel",
			Description: "The channel that will receive anonymous confessions",
			Required:    true,
			ChannelTypes: []discord.ChannelType{
				discord.ChannelTypeGuildText,
			},
		},
	},
}

func SetupHandler(b *whispr.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		guildID := e.GuildID()
		if guildID == nil {
			return utils.EH.CreateErrorEmbed(e, "This command can only be used in a server.")
		}

		member := e.Member()
		if member == nil || !member.Permissions.Has(discord.PermissionAdministrator) {
			return utils.EH.CreatePermissionError(e, "set the confession channel")
		}

		channel, ok := e.SlashCommandInteractionData().OptChannel("channel")
		if !ok {
			return utils.EH.CreateErrorEmbed(e, "Usage: /setup channel:#channel")
		}

		// Probe the channel before binding: the bot must be able to post
		// confessions there.
		if _, err := b.Client.Rest().CreateMessage(channel.ID,
			discord.NewMessageCreateBuilder().
				SetContent("✅ This channel now receives anonymous confessions.").
				Build()); err != nil {
			return utils.EH.CreateErrorEmbed(e,
				fmt.Sprintf("I can't send messages in <#%s>. Grant me send and reaction permissions there and try again.", channel.ID))
		}

		if err := b.Store.SetGuildChannel(*guildID, channel.ID); err != nil {
			return utils.EH.CreateErrorEmbed(e, "Failed to save the confession channel. Please try again.")
		}

		return utils.EH.CreateSuccessEmbed(e,
			fmt.Sprintf("Confession channel set to <#%s>", channel.ID))
	}
}

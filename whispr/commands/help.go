package commands

import (
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/whisprbot/whispr/whispr"
	"github.com/whisprbot/whispr/whispr/config"
)

var Help = discord.SlashCommandCreate{
	Name:        "help",
	Description: "📖 Show how to use Whispr",
}

func HelpHandler(b *whispr.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		embed := discord.NewEmbedBuilder().
			SetTitle("📖 Whispr Bot Help").
			SetDescription(
				"• `/setup channel:#channel` — Set the confession channel (admin only).\n"+
					"• DM me your message — Send an anonymous confession.\n"+
					"• DM me `reply #001 your message` — Reply anonymously to confession #001.\n"+
					"• Wait 30 seconds between confessions.\n"+
					"• Confessions and replies are anonymous.\n"+
					"• If you need more help, contact your server admin.").
			SetColor(config.EmbedDefaultColor).
			Build()

		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{embed},
		})
	}
}

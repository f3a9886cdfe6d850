package commands

import (
	"fmt"
	"math"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/json"
	"github.com/disgoorg/paginator"

	"github.com/whisprbot/whispr/whispr"
	"github.com/whisprbot/whispr/whispr/config"
	"github.com/whisprbot/whispr/whispr/utils"
)

var Confessions = discord.SlashCommandCreate{
	Name:                     "confessions",
	Description:              "📜 List confession codes issued in this server",
	DefaultMemberPermissions: json.NewNullablePtr(discord.PermissionAdministrator),
}

// ConfessionsHandler pages through the codes a guild's counter has handed
// out. Author identities stay hidden; only whether a reply can notify someone
// is shown.
func ConfessionsHandler(b *whispr.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		guildID := e.GuildID()
		if guildID == nil {
			return utils.EH.CreateErrorEmbed(e, "This command can only be used in a server.")
		}

		member := e.Member()
		if member == nil || !member.Permissions.Has(discord.PermissionAdministrator) {
			return utils.EH.CreatePermissionError(e, "list confessions")
		}

		issued := b.Store.IssuedCount(*guildID)
		if issued == 0 {
			return utils.EH.CreateInfoEmbed(e, "No confessions have been posted in this server yet.")
		}

		totalPages := int(math.Ceil(float64(issued) / float64(config.CodesPerPage)))

		return b.Paginator.Create(e.Respond, paginator.Pages{
			ID:      e.ID().String(),
			Creator: e.User().ID,
			PageFunc: func(page int, embed *discord.EmbedBuilder) {
				start := page*config.CodesPerPage + 1
				end := min(start+config.CodesPerPage-1, issued)

				var description strings.Builder
				for code := start; code <= end; code++ {
					status := "no author on file"
					if b.Store.HasAuthor(code) {
						status = "author on file"
					}
					description.WriteString(fmt.Sprintf("`#%03d` — %s\n", code, status))
				}

				embed.
					SetTitle("📜 Issued Confessions").
					SetDescription(description.String()).
					SetColor(config.EmbedDefaultColor).
					SetFooter(fmt.Sprintf("Page %d/%d • Total: %d", page+1, totalPages, issued), "")
			},
			Pages:      totalPages,
			ExpireMode: paginator.ExpireModeAfterLastUsage,
		}, false)
	}
}

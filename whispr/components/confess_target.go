package components

import (
	"context"
	"errors"
	"log/slog"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/snowflake/v2"

	"github.com/whisprbot/whispr/whispr"
	"github.com/whisprbot/whispr/whispr/config"
	"github.com/whisprbot/whispr/whispr/disambig"
	"github.com/whisprbot/whispr/whispr/handlers"
	"github.com/whisprbot/whispr/whispr/utils"
)

// ConfessTargetHandler resumes a suspended confession or reply once the
// requester picks a target guild from the selection menu.
func ConfessTargetHandler(b *whispr.Bot) handler.ComponentHandler {
	return func(e *handler.ComponentEvent) error {
		data, ok := e.Data.(discord.StringSelectMenuInteractionData)
		if !ok || len(data.Values) == 0 {
			return utils.EH.CreateEphemeralError(e, "Invalid selection.")
		}

		sessionID := e.Vars["session"]
		session, err := b.Disambig.Take(sessionID, e.User().ID)
		switch {
		case errors.Is(err, disambig.ErrWrongUser):
			return utils.EH.CreateEphemeralError(e, "This prompt belongs to another user.")
		case errors.Is(err, disambig.ErrExpired):
			return utils.EH.CreateEphemeralError(e, "This prompt has expired. Send your message again.")
		case err != nil:
			return err
		}

		guildID, err := snowflake.Parse(data.Values[0])
		if err != nil {
			return utils.EH.CreateEphemeralError(e, "Invalid selection.")
		}
		candidate, ok := session.Candidate(guildID)
		if !ok {
			return utils.EH.CreateEphemeralError(e, "That server is no longer available. Send your message again.")
		}

		ctx, cancel := context.WithTimeout(context.Background(), config.DMHandlerTimeout)
		defer cancel()

		var ack string
		switch session.Kind {
		case disambig.KindReply:
			ack = handlers.RunReply(ctx, b, candidate.GuildID, session.Code, session.Content)
		default:
			ack = handlers.RunConfession(ctx, b, session.UserID, candidate.GuildID, session.Content)
		}

		slog.Info("Resumed suspended request",
			slog.String("guild_id", candidate.GuildID.String()),
			slog.String("user_id", session.UserID.String()))

		// Replace the menu with the acknowledgment so it cannot be reused.
		return e.UpdateMessage(discord.MessageUpdate{
			Content:    utils.Ptr(ack),
			Components: utils.Ptr([]discord.ContainerComponent{}),
		})
	}
}

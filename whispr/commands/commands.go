package commands

import "github.com/disgoorg/disgo/discord"

var Commands = []discord.ApplicationCommandCreate{
	Setup,
	Help,
	Version,
	Confessions,
}
